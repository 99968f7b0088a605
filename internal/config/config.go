package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

// Config stores runtime configuration for the pipeline.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	DBURL                   string
	DBDisablePreparedBinary bool

	// BaseYear is the start year of the season being ingested; it anchors
	// the year-less dates of the status feed.
	BaseYear   int
	MaxWorkers int
	DryRun     bool
	// Sources selects which ingestion stages run: stats, status, features.
	Sources []string

	ManagerIDs  []int64
	H2HLeagueID int64

	FPLBaseURL            string
	FPLTimeout            time.Duration
	FPLMaxRetries         int
	FPLPlayerConcurrency  int
	FPLCircuitEnabled     bool
	FPLCircuitFailures    int
	FPLCircuitOpenWait    time.Duration
	FPLCircuitHalfOpenReq int

	StatusFeedURL             string
	StatusFeedTimeout         time.Duration
	StatusFeedMaxRetries      int
	StatusFeedCircuitEnabled  bool
	StatusFeedCircuitFailures int
	StatusFeedCircuitOpenWait time.Duration
	StatusFeedCircuitHalfOpen int

	CacheTTL time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	PprofEnabled bool
	PprofAddr    string

	LogLevel logging.Level
}

const (
	SourceStats    = "stats"
	SourceStatus   = "status"
	SourceFeatures = "features"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	baseYear, err := getEnvAsInt("BASE_YEAR", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse BASE_YEAR: %w", err)
	}
	if baseYear < 1992 || baseYear > 2100 {
		return Config{}, fmt.Errorf("BASE_YEAR is required and must be a season start year, got %d", baseYear)
	}

	maxWorkers, err := getEnvAsInt("MAX_WORKERS", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_WORKERS: %w", err)
	}
	if maxWorkers < 0 {
		return Config{}, fmt.Errorf("MAX_WORKERS must be >= 0")
	}

	dryRun, err := strconv.ParseBool(getEnv("DRY_RUN", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRY_RUN: %w", err)
	}

	sources := splitCSV(getEnv("SOURCES", strings.Join([]string{SourceStats, SourceStatus, SourceFeatures}, ",")))
	for _, source := range sources {
		switch source {
		case SourceStats, SourceStatus, SourceFeatures:
		default:
			return Config{}, fmt.Errorf("invalid source %q: valid values are %s, %s, %s", source, SourceStats, SourceStatus, SourceFeatures)
		}
	}

	managerIDs, err := splitCSVInt64(getEnv("MANAGER_IDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse MANAGER_IDS: %w", err)
	}

	h2hLeagueID, err := getEnvAsInt64("H2H_LEAGUE_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse H2H_LEAGUE_ID: %w", err)
	}
	if h2hLeagueID < 0 {
		return Config{}, fmt.Errorf("H2H_LEAGUE_ID must be >= 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	fplTimeout, err := time.ParseDuration(getEnv("FPL_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_TIMEOUT: %w", err)
	}
	fplMaxRetries, err := getEnvAsInt("FPL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_MAX_RETRIES: %w", err)
	}
	fplPlayerConcurrency, err := getEnvAsInt("FPL_PLAYER_CONCURRENCY", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_PLAYER_CONCURRENCY: %w", err)
	}
	fplCircuitEnabled, err := strconv.ParseBool(getEnv("FPL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_ENABLED: %w", err)
	}
	fplCircuitFailures, err := getEnvAsInt("FPL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	fplCircuitOpenWait, err := time.ParseDuration(getEnv("FPL_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	fplCircuitHalfOpenReq, err := getEnvAsInt("FPL_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	statusFeedURL := strings.TrimSpace(getEnv("STATUS_FEED_URL", ""))
	if containsSource(sources, SourceStatus) && statusFeedURL == "" {
		return Config{}, fmt.Errorf("STATUS_FEED_URL is required when the status source is enabled")
	}
	statusFeedTimeout, err := time.ParseDuration(getEnv("STATUS_FEED_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_TIMEOUT: %w", err)
	}
	statusFeedMaxRetries, err := getEnvAsInt("STATUS_FEED_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_MAX_RETRIES: %w", err)
	}
	statusFeedCircuitEnabled, err := strconv.ParseBool(getEnv("STATUS_FEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_CIRCUIT_ENABLED: %w", err)
	}
	statusFeedCircuitFailures, err := getEnvAsInt("STATUS_FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	statusFeedCircuitOpenWait, err := time.ParseDuration(getEnv("STATUS_FEED_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	statusFeedCircuitHalfOpen, err := getEnvAsInt("STATUS_FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	serviceName := strings.TrimSpace(getEnv("APP_SERVICE_NAME", "fpl-pipeline"))

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),

		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		BaseYear:   baseYear,
		MaxWorkers: maxWorkers,
		DryRun:     dryRun,
		Sources:    sources,

		ManagerIDs:  managerIDs,
		H2HLeagueID: h2hLeagueID,

		FPLBaseURL:            strings.TrimSpace(getEnv("FPL_BASE_URL", "")),
		FPLTimeout:            fplTimeout,
		FPLMaxRetries:         fplMaxRetries,
		FPLPlayerConcurrency:  fplPlayerConcurrency,
		FPLCircuitEnabled:     fplCircuitEnabled,
		FPLCircuitFailures:    fplCircuitFailures,
		FPLCircuitOpenWait:    fplCircuitOpenWait,
		FPLCircuitHalfOpenReq: fplCircuitHalfOpenReq,

		StatusFeedURL:             statusFeedURL,
		StatusFeedTimeout:         statusFeedTimeout,
		StatusFeedMaxRetries:      statusFeedMaxRetries,
		StatusFeedCircuitEnabled:  statusFeedCircuitEnabled,
		StatusFeedCircuitFailures: statusFeedCircuitFailures,
		StatusFeedCircuitOpenWait: statusFeedCircuitOpenWait,
		StatusFeedCircuitHalfOpen: statusFeedCircuitHalfOpen,

		CacheTTL: cacheTTL,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", serviceName)),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

// SourceEnabled reports whether a named ingestion stage was selected.
func (c Config) SourceEnabled(source string) bool {
	return containsSource(c.Sources, source)
}

func containsSource(sources []string, source string) bool {
	for _, item := range sources {
		if item == source {
			return true
		}
	}
	return false
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func splitCSVInt64(v string) ([]int64, error) {
	items := splitCSV(v)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %q", item)
		}
		out = append(out, value)
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	switch normalized {
	case EnvDev, EnvStage, EnvProd:
		return normalized, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
