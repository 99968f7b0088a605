package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/fpl-pipeline/internal/app"
	"github.com/riskibarqy/fpl-pipeline/internal/config"
	"github.com/riskibarqy/fpl-pipeline/internal/observability"
	idgen "github.com/riskibarqy/fpl-pipeline/internal/platform/id"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel)
	if runID, err := idgen.NewRandomGenerator().NewID(); err == nil {
		logger = logger.With("run_id", runID)
	}
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopPyroscope(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		return 1
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Error("stop pprof server", "error", err)
		}
	}()

	pipeline, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error("close pipeline", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("pipeline starting",
		"season", cfg.BaseYear,
		"sources", cfg.Sources,
		"dry_run", cfg.DryRun,
	)

	report, err := pipeline.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "pipeline failed", "error", err)
		return 1
	}

	logger.InfoContext(ctx, "pipeline finished",
		"teams", report.Sync.Teams,
		"players", report.Sync.Players,
		"appearances", report.Sync.Appearances,
		"team_matches", report.Sync.TeamMatches,
		"manager_gameweeks", report.Sync.ManagerGameweeks,
		"h2h_results", report.Sync.H2HResults,
		"status_players", report.Status.PlayerCount,
		"status_reconciled", report.Status.ReconciledCount,
		"status_failed", report.Status.FailedCount,
		"status_exported", report.Status.ExportedCount,
		"feature_rows", report.Features.Rows,
	)

	if report.Status.FailedCount > 0 {
		for _, failure := range report.Status.Failures {
			logger.WarnContext(ctx, "player timeline not reconciled",
				"player_id", failure.PlayerID,
				"step", failure.Step,
				"reason", failure.Message,
			)
		}
		return 2
	}

	return 0
}
