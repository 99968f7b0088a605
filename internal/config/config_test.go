package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	t.Setenv("BASE_YEAR", "2024")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_BaseYearRequired(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BASE_YEAR is missing")
	}

	t.Setenv("BASE_YEAR", "1800")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range BASE_YEAR")
	}
}

func TestLoad_SourcesValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("STATUS_FEED_URL", "https://feed.example.com/data")

	t.Run("all sources by default", func(t *testing.T) {
		t.Setenv("SOURCES", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		for _, source := range []string{SourceStats, SourceStatus, SourceFeatures} {
			if !cfg.SourceEnabled(source) {
				t.Fatalf("expected source %q enabled by default", source)
			}
		}
	})

	t.Run("subset parsing", func(t *testing.T) {
		t.Setenv("SOURCES", " stats , features ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SourceEnabled(SourceStats) || !cfg.SourceEnabled(SourceFeatures) {
			t.Fatalf("unexpected sources: %+v", cfg.Sources)
		}
		if cfg.SourceEnabled(SourceStatus) {
			t.Fatalf("status source should be disabled")
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		t.Setenv("SOURCES", "stats,nope")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown source")
		}
	})
}

func TestLoad_StatusFeedURLRequiredWhenStatusEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "status")
	t.Setenv("STATUS_FEED_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when status source is enabled without STATUS_FEED_URL")
	}
}

func TestLoad_ManagerIDsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")

	t.Run("empty by default", func(t *testing.T) {
		t.Setenv("MANAGER_IDS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.ManagerIDs) != 0 {
			t.Fatalf("unexpected manager ids: %+v", cfg.ManagerIDs)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("MANAGER_IDS", " 12345, 67890 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.ManagerIDs) != 2 || cfg.ManagerIDs[0] != 12345 || cfg.ManagerIDs[1] != 67890 {
			t.Fatalf("unexpected manager ids: %+v", cfg.ManagerIDs)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Setenv("MANAGER_IDS", "12,abc")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-numeric manager id")
		}
	})

	t.Run("non positive id", func(t *testing.T) {
		t.Setenv("MANAGER_IDS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-positive manager id")
		}
	})
}

func TestLoad_FPLClientDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")
	t.Setenv("FPL_TIMEOUT", "")
	t.Setenv("FPL_PLAYER_CONCURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FPLTimeout != 20*time.Second {
		t.Fatalf("unexpected default fpl timeout: %s", cfg.FPLTimeout)
	}
	if cfg.FPLPlayerConcurrency != 8 {
		t.Fatalf("unexpected default player concurrency: %d", cfg.FPLPlayerConcurrency)
	}
	if !cfg.FPLCircuitEnabled {
		t.Fatalf("expected fpl circuit breaker enabled by default")
	}
}

func TestLoad_StatusFeedTimeoutParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "status")
	t.Setenv("STATUS_FEED_URL", "https://feed.example.com/data")
	t.Setenv("STATUS_FEED_TIMEOUT", "bad")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STATUS_FEED_TIMEOUT")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")
	t.Setenv("APP_SERVICE_NAME", "fpl-pipeline-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fpl-pipeline-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BASE_YEAR", "2024")
	t.Setenv("SOURCES", "stats")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}
