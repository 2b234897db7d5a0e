package validation

import "errors"

var (
	// ErrInvalidPayload covers malformed JSON and unknown sites.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrInvalidOrder is returned when the order lacks an id or meta_data.
	ErrInvalidOrder = errors.New("invalid order information")
)

// WebhookQuery is the query string of an inbound webhook call.
type WebhookQuery struct {
	Site string `form:"site"`
}

type siteParam struct {
	Site string `validate:"required,site"`
}
