package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindWebhook reads the site query parameter and the raw body.
// An empty site resolves to defaultSite.
func BindWebhook(c *gin.Context, defaultSite string) (site string, body []byte, err error) {
	var q WebhookQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	site = strings.ToLower(strings.TrimSpace(q.Site))
	if site == "" {
		site = defaultSite
	}

	body, err = c.GetRawData()
	if err != nil {
		return "", nil, fmt.Errorf("%w: read body: %v", ErrInvalidPayload, err)
	}
	return site, body, nil
}
