package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	AuthModeNone   = "none"
	AuthModeWrites = "writes"
	AuthModeAll    = "all"
)

type Config struct {
	Env      string
	HTTPPort string

	CatalogBackend             string
	CatalogAuthMode            string
	CatalogRelatedDefaultLimit int
	CatalogSeedSampleData      bool

	// Optional account provisioned at startup when both email and password are set.
	BootstrapUserEmail    string
	BootstrapUserPassword string
	BootstrapUserName     string

	DatabaseURL             string
	DBConnectMaxAttempts    int
	DBConnectInitialBackoff time.Duration
	DBConnectMaxBackoff     time.Duration

	JWTIssuer   string
	JWTAudience string
	JWTSecret   string
	JWTTTL      time.Duration

	CORSAllowedOrigins []string

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	backend := strings.ToLower(strings.TrimSpace(getEnv("CATALOG_BACKEND", BackendMemory)))

	cfg := &Config{
		Env:                        env,
		HTTPPort:                   getEnv("HTTP_PORT", getEnv("PORT", "3001")),
		CatalogBackend:             backend,
		CatalogAuthMode:            strings.ToLower(strings.TrimSpace(getEnv("CATALOG_AUTH_MODE", AuthModeWrites))),
		CatalogRelatedDefaultLimit: getEnvInt("CATALOG_RELATED_DEFAULT_LIMIT", 4),
		CatalogSeedSampleData:      getEnvBool("CATALOG_SEED_SAMPLE_DATA", backend == BackendMemory),
		BootstrapUserEmail:         strings.TrimSpace(os.Getenv("BOOTSTRAP_USER_EMAIL")),
		BootstrapUserPassword:      os.Getenv("BOOTSTRAP_USER_PASSWORD"),
		BootstrapUserName:          os.Getenv("BOOTSTRAP_USER_NAME"),
		DatabaseURL:                os.Getenv("DATABASE_URL"),
		DBConnectMaxAttempts:       getEnvInt("DB_CONNECT_MAX_ATTEMPTS", 10),
		JWTIssuer:                  getEnv("JWT_ISSUER", "product-catalog-api"),
		JWTAudience:                getEnv("JWT_AUDIENCE", "product-catalog-web"),
		JWTSecret:                  os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "product-catalog-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_TTL", "24h", &cfg.JWTTTL},
		{"DB_CONNECT_INITIAL_BACKOFF", "500ms", &cfg.DBConnectInitialBackoff},
		{"DB_CONNECT_MAX_BACKOFF", "5s", &cfg.DBConnectMaxBackoff},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	switch c.CatalogBackend {
	case BackendMemory:
	case BackendPostgres, BackendSQLite:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when CATALOG_BACKEND="+c.CatalogBackend)
		}
	default:
		errs = append(errs, "CATALOG_BACKEND must be one of memory, postgres, sqlite")
	}
	if (c.BootstrapUserEmail == "") != (c.BootstrapUserPassword == "") {
		errs = append(errs, "BOOTSTRAP_USER_EMAIL and BOOTSTRAP_USER_PASSWORD must be set together")
	}
	switch c.CatalogAuthMode {
	case AuthModeNone, AuthModeWrites, AuthModeAll:
	default:
		errs = append(errs, "CATALOG_AUTH_MODE must be one of none, writes, all")
	}
	if c.CatalogRelatedDefaultLimit <= 0 {
		errs = append(errs, "CATALOG_RELATED_DEFAULT_LIMIT must be > 0")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTTTL < time.Minute || c.JWTTTL > 7*24*time.Hour {
		errs = append(errs, "JWT_TTL must be between 1m and 168h")
	}
	if c.DBConnectMaxAttempts <= 0 {
		errs = append(errs, "DB_CONNECT_MAX_ATTEMPTS must be > 0")
	}
	if c.DBConnectInitialBackoff <= 0 || c.DBConnectMaxBackoff < c.DBConnectInitialBackoff {
		errs = append(errs, "DB_CONNECT_INITIAL_BACKOFF must be > 0 and <= DB_CONNECT_MAX_BACKOFF")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout || c.ShutdownObservabilityTimeout > c.ShutdownTimeout {
		errs = append(errs, "shutdown phase timeouts must not exceed SHUTDOWN_TIMEOUT")
	}
	if isProductionEnv(c.Env) && c.CatalogBackend == BackendMemory {
		errs = append(errs, "CATALOG_BACKEND=memory is not allowed in production")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// UsesDatabase reports whether the catalog is backed by a relational store.
func (c *Config) UsesDatabase() bool {
	return c.CatalogBackend == BackendPostgres || c.CatalogBackend == BackendSQLite
}

func isProductionEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
