// Command asaas_webhook runs the payment reconciliation engine as a
// standalone function behind an API Gateway HTTP API.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"mibe/internal/infra"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

func main() {
	cfg := infra.LoadConfig()

	logger, err := infra.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.SecretsParameter != "" {
		if err := loadSecrets(&cfg); err != nil {
			logger.Fatal("load secrets", zap.String("parameter", cfg.SecretsParameter), zap.Error(err))
		}
	}

	db, err := infra.InitPostgresql(cfg, logger)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer infra.ClosePostgresql(db, logger)

	// No scrape endpoint here; outcomes are in the logs.
	reconciler := services.NewReconcileService(repositories.NewBillingStore(db), logger, nil)

	h := NewHandler(reconciler, cfg.Asaas.WebhookToken, logger.Named("lambda"))
	lambda.Start(h.Handle)
}

func loadSecrets(cfg *infra.Config) error {
	ctx := context.Background()
	client, err := infra.NewSSMClient(ctx)
	if err != nil {
		return err
	}
	secrets, err := infra.LoadSecrets(ctx, client, cfg.SecretsParameter)
	if err != nil {
		return err
	}
	secrets.Apply(cfg)
	return nil
}
