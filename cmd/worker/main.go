package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/aws"
	"github.com/imrishuroy/woo-reservation-bridge/internal/config"
	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/metrics"
	"github.com/imrishuroy/woo-reservation-bridge/internal/sites"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

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

	ctx := context.Background()
	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.MetricsNamespace != "" {
		clients, err := aws.NewClients(ctx)
		if err != nil {
			logger.Fatal("failed to init aws clients", zap.Error(err))
		}
		recorder = metrics.New(clients.CloudWatch, cfg.MetricsNamespace)
	}

	registry := sites.NewRegistry(cfg, &http.Client{Timeout: cfg.UpstreamTimeout})
	p := NewProcessor(writeback.NewInline(registry.Store), recorder, logger)

	// RUN_LOCAL=true replays a single message from LOCAL_SQS_BODY
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			logger.Fatal("LOCAL_SQS_BODY is required with RUN_LOCAL=true")
		}
		resp, err := p.Handle(ctx, events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			logger.Fatal("local writeback failed", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
