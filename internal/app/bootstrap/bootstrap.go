package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accessguard "chama/contexts/identity-access/access-guard-service"
	accountadmin "chama/contexts/identity-access/account-admin-service"
	accountidentity "chama/contexts/identity-access/account-admin-service/adapters/identity"
	accountpostgres "chama/contexts/identity-access/account-admin-service/adapters/postgres"
	accountworkers "chama/contexts/identity-access/account-admin-service/application/workers"
	memberdirectory "chama/contexts/identity-access/member-directory-service"
	directorypostgres "chama/contexts/identity-access/member-directory-service/adapters/postgres"
	"chama/internal/platform/config"
	"chama/internal/platform/db"
	"chama/internal/platform/httpserver"
	"chama/internal/platform/messaging"
	"chama/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  accountworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	guardModule := accessguard.NewModule(accessguard.Dependencies{
		Logger: logger,
	})

	directoryRepo := directorypostgres.NewRepository(pg.DB, logger)
	directoryModule := memberdirectory.NewModule(memberdirectory.Dependencies{
		Repository:     directoryRepo,
		Idempotency:    directoryRepo,
		Clock:          directorypostgres.SystemClock{},
		IDGenerator:    directorypostgres.UUIDGenerator{},
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	identityProvider, err := accountidentity.NewProvider(pg.DB, accountidentity.Config{
		TokenSecret: cfg.SessionTokenSecret,
		Issuer:      cfg.SessionTokenIssuer,
	}, logger)
	if err != nil {
		return nil, err
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, logger)
	accountDeps := accountadmin.Dependencies{
		Identity:      identityProvider,
		Authority:     accountRepo,
		Clock:         accountpostgres.SystemClock{},
		IDGenerator:   accountpostgres.UUIDGenerator{},
		SourceService: cfg.ServiceName,
		Logger:        logger,
	}
	if cfg.EnableDeletionOutbox {
		accountDeps.Outbox = accountRepo
	}
	accountModule := accountadmin.NewModule(accountDeps)

	server := httpserver.New(guardModule, directoryModule, accountModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := accountpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: accountworkers.OutboxRelay{
			Outbox:        repo,
			Publisher:     deletionPublisher{bus: kafka, topic: "account.principal_deleted"},
			Clock:         accountpostgres.SystemClock{},
			SourceService: cfg.ServiceName,
			BatchSize:     100,
			Logger:        logger,
		},
		relayEnabled: cfg.EnableOutboxRelay && cfg.EnableDeletionOutbox,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if !w.relayEnabled {
		w.logger.Info("outbox relay disabled, worker idle",
			"event", "bootstrap_worker_idle",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// deletionPublisher bridges the account-admin publisher port onto the shared
// event bus.
type deletionPublisher struct {
	bus   *messaging.Kafka
	topic string
}

func (p deletionPublisher) PublishPrincipalDeleted(ctx context.Context, event events.Envelope) error {
	return p.bus.Publish(ctx, p.topic, event)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
