package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/fpl-pipeline/external/fplapi"
	"github.com/riskibarqy/fpl-pipeline/external/statusfeed"
	"github.com/riskibarqy/fpl-pipeline/internal/config"
	"github.com/riskibarqy/fpl-pipeline/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/cache"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/resilience"
	"github.com/riskibarqy/fpl-pipeline/internal/usecase"
)

// Pipeline wires the stat, status and feature stages over a shared
// Postgres connection and runs whichever stages the config selects.
type Pipeline struct {
	cfg    config.Config
	logger *logging.Logger

	db       *sqlx.DB
	sync     *usecase.SyncService
	status   *usecase.StatusService
	features *usecase.FeatureService
}

// Report aggregates the per-stage run reports. A stage left disabled by
// the config keeps its zero value.
type Report struct {
	Sync     usecase.SyncReport       `json:"sync"`
	Status   usecase.StatusRunReport  `json:"status"`
	Features usecase.FeatureRunReport `json:"features"`
}

func NewPipeline(cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("db url cannot be empty")
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	statsClient := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL:           cfg.FPLBaseURL,
		Timeout:           cfg.FPLTimeout,
		MaxRetries:        cfg.FPLMaxRetries,
		PlayerConcurrency: cfg.FPLPlayerConcurrency,
		Logger:            logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailures,
			OpenTimeout:      cfg.FPLCircuitOpenWait,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenReq,
		},
		Cache: cache.NewStore(cfg.CacheTTL),
	})

	feedClient := statusfeed.NewClient(statusfeed.ClientConfig{
		URL:        cfg.StatusFeedURL,
		Timeout:    cfg.StatusFeedTimeout,
		MaxRetries: cfg.StatusFeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatusFeedCircuitEnabled,
			FailureThreshold: cfg.StatusFeedCircuitFailures,
			OpenTimeout:      cfg.StatusFeedCircuitOpenWait,
			HalfOpenMaxReq:   cfg.StatusFeedCircuitHalfOpen,
		},
	})

	playerRepo := postgres.NewPlayerRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	managerRepo := postgres.NewManagerRepository(db)
	statusRepo := postgres.NewStatusRepository(db)
	featureRepo := postgres.NewFeatureRepository(db)

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		sync:     usecase.NewSyncService(statsClient, playerRepo, matchRepo, managerRepo, logger),
		status:   usecase.NewStatusService(feedClient, statusRepo, logger),
		features: usecase.NewFeatureService(playerRepo, matchRepo, statusRepo, featureRepo, logger),
	}, nil
}

// Run executes the enabled stages in order. Stats and statuses land
// first so the feature stage reads the freshly written season.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report

	if p.cfg.SourceEnabled(config.SourceStats) {
		syncReport, err := p.sync.Run(ctx, usecase.SyncInput{
			Season:      p.cfg.BaseYear,
			ManagerIDs:  p.cfg.ManagerIDs,
			H2HLeagueID: p.cfg.H2HLeagueID,
		})
		if err != nil {
			return report, fmt.Errorf("sync stats: %w", err)
		}
		report.Sync = syncReport
	}

	if p.cfg.SourceEnabled(config.SourceStatus) {
		statusReport, err := p.status.Run(ctx, usecase.StatusRunInput{
			Season:     p.cfg.BaseYear,
			MaxWorkers: p.cfg.MaxWorkers,
			DryRun:     p.cfg.DryRun,
		})
		if err != nil {
			return report, fmt.Errorf("reconcile statuses: %w", err)
		}
		report.Status = statusReport
	}

	if p.cfg.SourceEnabled(config.SourceFeatures) {
		featureReport, err := p.features.Run(ctx, usecase.FeatureRunInput{
			Season: p.cfg.BaseYear,
			DryRun: p.cfg.DryRun,
		})
		if err != nil {
			return report, fmt.Errorf("build features: %w", err)
		}
		report.Features = featureReport
	}

	return report, nil
}

func (p *Pipeline) Close() error {
	return p.db.Close()
}
