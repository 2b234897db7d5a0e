package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/aws"
	"github.com/imrishuroy/woo-reservation-bridge/internal/config"
	"github.com/imrishuroy/woo-reservation-bridge/internal/handlers"
	"github.com/imrishuroy/woo-reservation-bridge/internal/idempotency"
	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/metrics"
	"github.com/imrishuroy/woo-reservation-bridge/internal/orders"
	"github.com/imrishuroy/woo-reservation-bridge/internal/sites"
	"github.com/imrishuroy/woo-reservation-bridge/internal/validation"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

func setupRouter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	registry := sites.NewRegistry(cfg, &http.Client{Timeout: cfg.UpstreamTimeout})

	opts := orders.Options{
		Validator:           validation.New(cfg.SiteNames()),
		Guard:               idempotency.NewGuard(nil),
		Sites:               registry.Clients,
		Writer:              writeback.NewInline(registry.Store),
		Metrics:             metrics.Nop{},
		RequirePaymentEvent: cfg.RequirePaymentEvent,
	}

	// AWS is only needed for the ledger, the writeback queue and metrics
	if cfg.ReservationsTable != "" || cfg.WritebackMode == config.WritebackQueue || cfg.MetricsNamespace != "" {
		clients, err := aws.NewClients(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.ReservationsTable != "" {
			ledger := idempotency.NewLedger(clients.DynamoDB, cfg.ReservationsTable, cfg.ReservationsTTL)
			opts.Guard = idempotency.NewGuard(ledger)
			opts.Ledger = ledger
		}
		if cfg.WritebackMode == config.WritebackQueue {
			opts.Writer = writeback.NewQueue(aws.NewPublisher(clients.SQS, cfg.WritebackQueueURL))
		}
		opts.Metrics = metrics.New(clients.CloudWatch, cfg.MetricsNamespace)
	}

	return handlers.NewRouter(logger, handlers.HandlerConfig{
		Processor:    orders.NewProcessor(opts),
		DefaultSite:  cfg.DefaultSite,
		ResponseMode: cfg.ResponseMode,
	}), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	r, err := setupRouter(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	// RUN_LOCAL=true serves HTTP directly for development
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		logger.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
