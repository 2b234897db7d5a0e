package handlers

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
)

// HeaderRequestID is accepted as an alternative inbound correlation header.
const HeaderRequestID = "X-Request-Id"

// CorrelationID reuses the caller's correlation id or mints one, echoes it on
// the response and stores it with a request logger on the request context.
func CorrelationID(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *gin.Context) {
		cid := c.GetHeader(requestctx.HeaderCorrelationID)
		if cid == "" {
			cid = c.GetHeader(HeaderRequestID)
		}
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header(requestctx.HeaderCorrelationID, cid)

		ctx := requestctx.WithCorrelationID(c.Request.Context(), cid)
		ctx = logging.WithLogger(ctx, base.With(zap.String("correlation_id", cid)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs each completed request at a level matching its status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_ip", c.ClientIP()),
		}
		logger := logging.FromContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// Recovery logs panics and answers with a 500 envelope.
func Recovery(fallback *zap.Logger) gin.HandlerFunc {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger := logging.FromContext(c.Request.Context())
		if !logger.Core().Enabled(zap.ErrorLevel) {
			logger = fallback
		}
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.ByteString("stack", debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal error.",
			"status":  http.StatusInternalServerError,
			"data":    gin.H{},
		})
	})
}
