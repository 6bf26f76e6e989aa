package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/config"
	"github.com/crestline-media/fulfillment-service/internal/delivery/httpapi"
	publisher "github.com/crestline-media/fulfillment-service/internal/infrastructure/kafka"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/migrate"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/notifier"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/repository"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/refund"
	"github.com/crestline-media/fulfillment-service/internal/providers"
	"github.com/crestline-media/fulfillment-service/internal/riskgate"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/joho/godotenv"
)

func setupLogger(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg.LogConfig)
	// Init database
	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Kafka lifecycle publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)

	// Metrics
	fulfillmentMetrics := metrics.NewFulfillmentMetrics()

	// Repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	ingestRepo := repository.NewDefaultIngestRepository(db)
	confirmationRepo := repository.NewDefaultConfirmationRepository(db)
	fulfillmentRepo := repository.NewDefaultFulfillmentRepository(db)
	auditRepo := repository.NewDefaultAuditEventRepository(db)

	recorder := usecase.NewRecorder(auditRepo, pub, cfg.KafkaService.Topic, fulfillmentMetrics)

	// External collaborators
	mailNotifier := notifier.NewMailNotifier(
		cfg.Notifier.MailAPIURL,
		cfg.Notifier.TokenURL,
		cfg.Notifier.ClientID,
		cfg.Notifier.ClientSecret,
		cfg.Notifier.FromAddress,
	)
	refundConnector := refund.NewProviderConnector(
		cfg.Refunds.CardRefundURL, cfg.Refunds.CardAPIKey,
		cfg.Refunds.WalletRefundURL, cfg.Refunds.WalletAPIKey,
		cfg.Refunds.CryptoRefundURL, cfg.Refunds.CryptoAPIKey,
	)

	// Risk gate: 5000 minor units asks for email confirmation, 50000
	// goes straight to an operator.
	riskScorer := riskgate.NewThresholdScorer(5000, 50000)

	// Usecases
	fulfillmentUC := usecase.NewDefaultFulfillmentUsecase(orderRepo, fulfillmentRepo, recorder, fulfillmentMetrics)
	confirmationUC := usecase.NewDefaultConfirmationUsecase(
		orderRepo, confirmationRepo, fulfillmentUC, recorder,
		cfg.Confirmation.TokenTTL, cfg.Confirmation.BaseURL,
	)
	ingestUC := usecase.NewDefaultIngestUsecase(
		orderRepo, ingestRepo, riskScorer, fulfillmentUC, confirmationUC,
		mailNotifier, recorder, fulfillmentMetrics,
	)
	orderUC := usecase.NewDefaultOrderUsecase(
		orderRepo, fulfillmentRepo, auditRepo, fulfillmentUC, refundConnector,
		recorder, fulfillmentMetrics,
	)
	reconciliationUC := usecase.NewDefaultReconciliationUsecase(
		orderRepo, refundConnector, recorder, fulfillmentMetrics,
		cfg.Reconciliation.HoldTimeout, cfg.Reconciliation.BatchSize,
	)

	// Webhook verification
	cardWebhook := providers.NewCardWebhook(cfg.Providers.CardSigningSecret)
	walletWebhook := providers.NewWalletWebhook(
		cfg.Providers.WalletVerifyURL,
		cfg.Providers.WalletSkipVerify && cfg.Env != "prod",
	)
	cryptoWebhook := providers.NewCryptoWebhook(cfg.Providers.CryptoWebhookSecret)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Webhooks:      httpapi.NewWebhookHandler(cardWebhook, walletWebhook, cryptoWebhook, ingestUC, fulfillmentMetrics),
		Orders:        httpapi.NewOrderHandler(orderUC),
		Confirmations: httpapi.NewConfirmationHandler(confirmationUC),
		Unlock:        httpapi.NewUnlockHandler(fulfillmentUC),
		Admin:         httpapi.NewAdminHandler(orderUC, ingestUC),
		Reconcile:     httpapi.NewReconcileHandler(reconciliationUC),
		OperatorToken: cfg.Admin.OperatorToken,
		CronSecret:    cfg.Reconciliation.CronSecret,
	})

	// Periodic reconciliation sweep
	go func() {
		ticker := time.NewTicker(cfg.Reconciliation.SweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if _, err := reconciliationUC.RunSweep(context.Background()); err != nil {
				log.Printf("Reconciliation sweep error: %v", err)
			}
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("fulfillment service started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
