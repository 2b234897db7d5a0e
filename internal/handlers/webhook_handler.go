package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/orders"
	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
	"github.com/imrishuroy/woo-reservation-bridge/internal/validation"
)

// WebhookProcessor runs one delivery through the pipeline.
type WebhookProcessor interface {
	Process(ctx context.Context, req orders.Request) orders.Result
}

// HandlerConfig groups dependencies for the webhook handler.
type HandlerConfig struct {
	Processor    WebhookProcessor
	DefaultSite  string
	ResponseMode string
}

// RegisterWebhookRoutes registers the order webhook on / and /webhook.
func RegisterWebhookRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := func(c *gin.Context) {
		ctx := c.Request.Context()

		site, body, err := validation.BindWebhook(c, cfg.DefaultSite)
		if err != nil {
			// unreadable request; the pipeline would answer the same
			logging.FromContext(ctx).Info("invalid webhook request", zap.Error(err))
			body = nil
		}

		res := cfg.Processor.Process(ctx, orders.Request{
			Site:          site,
			Body:          body,
			CorrelationID: requestctx.CorrelationID(ctx),
		})
		c.JSON(res.HTTPStatus(cfg.ResponseMode), res.Envelope())
	}

	r.POST("/", h)
	r.POST("/webhook", h)
}

// RegisterHealthRoute registers GET /health.
func RegisterHealthRoute(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(logger *zap.Logger, cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(CorrelationID(logger), Recovery(logger), RequestLogger())

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, cfg)
	return r
}
