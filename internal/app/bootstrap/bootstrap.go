package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	pointsservice "agon/contexts/community-experience/points-service"
	pointspostgres "agon/contexts/community-experience/points-service/adapters/postgres"
	contestservice "agon/contexts/debate-arena/contest-service"
	contestpostgres "agon/contexts/debate-arena/contest-service/adapters/postgres"
	contestworkers "agon/contexts/debate-arena/contest-service/application/workers"
	judgingengine "agon/contexts/debate-arena/judging-engine"
	topicpipeline "agon/contexts/debate-arena/topic-pipeline"
	topicllm "agon/contexts/debate-arena/topic-pipeline/adapters/llm"
	moderationservice "agon/contexts/moderation-safety/moderation-service"
	"agon/internal/platform/config"
	"agon/internal/platform/db"
	"agon/internal/platform/httpserver"
	"agon/internal/platform/ledger"
	"agon/internal/platform/llm"
	"agon/internal/platform/messaging"
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
	scheduler    contestworkers.LifecycleScheduler
	outboxRelay  contestworkers.OutboxRelay
	driftCheck   bool
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

	contestRepo := contestpostgres.NewRepository(pg.DB, logger)
	contestModule := contestservice.NewModule(contestservice.Dependencies{
		Contests:    contestRepo,
		Submissions: contestRepo,
		Winners:     contestRepo,
		Clock:       contestpostgres.SystemClock{},
		IDGen:       contestpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	pointsRepo := pointspostgres.NewRepository(pg.DB, logger)
	pointsModule := pointsservice.NewModule(pointsservice.Dependencies{
		Repository:  pointsRepo,
		Idempotency: pointsRepo,
		Clock:       contestpostgres.SystemClock{},
		IDGen:       contestpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(contestModule, pointsModule, logger, normalizeAddr(cfg.HTTPPort))
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

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
	contestRepo := contestpostgres.NewRepository(pg.DB, logger)
	pointsRepo := pointspostgres.NewRepository(pg.DB, logger)

	topics := topicpipeline.NewModule(topicpipeline.Dependencies{
		Generator:           topicllm.Generator{Client: llmClient},
		Similarity:          topicllm.SimilarityClient{Client: llmClient},
		Recent:              recentTopics{contests: contestRepo},
		Clock:               contestpostgres.SystemClock{},
		SimilarityThreshold: cfg.SimilarityThreshold,
		Logger:              logger,
	})

	moderation := moderationservice.NewModule(moderationservice.Dependencies{
		Generator: llmClient,
		Clock:     contestpostgres.SystemClock{},
		Logger:    logger,
	})

	judgingDeps := judgingengine.Dependencies{Logger: logger}
	if cfg.EnableInsight {
		judgingDeps.Insight = llmClient
	}
	judging := judgingengine.NewModule(judgingDeps)

	pointsModule := pointsservice.NewModule(pointsservice.Dependencies{
		Repository:  pointsRepo,
		Idempotency: pointsRepo,
		Clock:       contestpostgres.SystemClock{},
		IDGen:       contestpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	contestDeps := contestservice.Dependencies{
		Contests:    contestRepo,
		Submissions: contestRepo,
		Winners:     contestRepo,
		Judge: contestJudge{
			engine:     judging.Engine,
			moderation: moderation.Service,
			screening:  cfg.EnableScreening,
		},
		Topics:          topicSource{pipeline: topics.Pipeline},
		Rewards:         pointsModule.Service,
		Outbox:          contestRepo,
		OutboxRepo:      contestRepo,
		Publisher:       kafka,
		Clock:           contestpostgres.SystemClock{},
		IDGen:           contestpostgres.UUIDGenerator{},
		ContestDuration: time.Duration(cfg.ContestDurationHours * float64(time.Hour)),
		MaxParticipants: cfg.MaxParticipants,
		RewardPoints:    cfg.RewardPoints,
		Logger:          logger,
	}
	if cfg.EnableSettlement && strings.TrimSpace(cfg.LedgerBaseURL) != "" {
		contestDeps.Ledger = ledger.NewClient(cfg.LedgerBaseURL, cfg.LedgerAPIKey, logger)
	}
	contestModule := contestservice.NewModule(contestDeps)

	pollInterval := time.Duration(cfg.TickSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &WorkerApp{
		postgres:     pg,
		scheduler:    contestModule.Scheduler,
		outboxRelay:  contestModule.Relay,
		driftCheck:   cfg.EnableStartupDriftCheck,
		pollInterval: pollInterval,
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
	if w.driftCheck {
		if err := w.scheduler.RunStartupDriftCheck(ctx); err != nil {
			return err
		}
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
		if err := w.scheduler.Tick(ctx); err != nil {
			return err
		}
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
