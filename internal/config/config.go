package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Ledger       LedgerConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Classifier   ClassifierConfig
	Notification NotificationConfig
	Pipeline     PipelineConfig
	Auth         AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// Ledger backends.
const (
	LedgerBackendCSV      = "csv"
	LedgerBackendPostgres = "postgres"
)

// LedgerConfig selects where tickets are persisted.
type LedgerConfig struct {
	Backend string
	Path    string
}

// PostgresConfig holds DB connection values for the postgres ledger backend.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Classifier modes.
const (
	ClassifierModeRule   = "rule"
	ClassifierModeRemote = "remote"
)

// ClassifierConfig selects and configures the complaint classifier.
type ClassifierConfig struct {
	Mode            string
	RulesPath       string
	APIKey          string
	Model           string
	TimeoutSeconds  int
	CacheTTLSeconds int
}

// NotificationConfig holds alert transport settings.
type NotificationConfig struct {
	EmailEnabled    bool
	SMTPServer      string
	SMTPPort        int
	SMTPImplicitTLS bool
	Username        string
	Password        string
	EmailFrom       string
	SlackWebhookURL string
	TimeoutSeconds  int
}

// PipelineConfig holds run defaults. Requests may override them per run.
type PipelineConfig struct {
	AggregateThreshold int
	NotifyPerTicket    bool
	Recipient          string
	Policy             domain.CountingPolicy
}

// AuthConfig defines API token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-tickets"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Ledger: LedgerConfig{
			Backend: strings.ToLower(getEnv("LEDGER_BACKEND", LedgerBackendCSV)),
			Path:    getEnv("LEDGER_PATH", "tickets.csv"),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("POSTGRES_APPLICATION_NAME", "complaint-tickets-ledger"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Classifier: ClassifierConfig{
			Mode:            strings.ToLower(getEnv("CLASSIFIER_MODE", ClassifierModeRule)),
			RulesPath:       os.Getenv("CLASSIFIER_RULES_PATH"),
			APIKey:          os.Getenv("ANTHROPIC_API_KEY"),
			Model:           getEnv("CLASSIFIER_MODEL", "claude-sonnet-4-5-20250929"),
			TimeoutSeconds:  getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 15),
			CacheTTLSeconds: getEnvAsInt("CLASSIFIER_CACHE_TTL_SECONDS", 86400),
		},
		Notification: NotificationConfig{
			EmailEnabled:    getEnvAsBool("USE_EMAIL_ALERTS", false),
			SMTPServer:      getEnv("SMTP_SERVER", "smtp.gmail.com"),
			SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
			SMTPImplicitTLS: getEnvAsBool("SMTP_IMPLICIT_TLS", false),
			Username:        os.Getenv("EMAIL_USERNAME"),
			Password:        os.Getenv("EMAIL_PASSWORD"),
			EmailFrom:       os.Getenv("NOTIFY_EMAIL_FROM"),
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			TimeoutSeconds:  getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
		Pipeline: PipelineConfig{
			AggregateThreshold: getEnvAsInt("AGGREGATE_THRESHOLD", 3),
			NotifyPerTicket:    getEnvAsBool("NOTIFY_PER_TICKET", true),
			Recipient:          os.Getenv("ALERT_RECIPIENT"),
			Policy:             domain.CountingPolicy(strings.ToLower(getEnv("COUNTING_POLICY", string(domain.PolicySupplierIssues)))),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case LedgerBackendCSV:
		if strings.TrimSpace(c.Ledger.Path) == "" {
			return fmt.Errorf("LEDGER_PATH required for csv ledger")
		}
	case LedgerBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for postgres ledger")
		}
	default:
		return fmt.Errorf("invalid LEDGER_BACKEND %q", c.Ledger.Backend)
	}
	switch c.Classifier.Mode {
	case ClassifierModeRule, ClassifierModeRemote:
	default:
		return fmt.Errorf("invalid CLASSIFIER_MODE %q", c.Classifier.Mode)
	}
	if c.Pipeline.AggregateThreshold < 1 {
		return fmt.Errorf("AGGREGATE_THRESHOLD must be >= 1, got %d", c.Pipeline.AggregateThreshold)
	}
	if !c.Pipeline.Policy.Valid() {
		return fmt.Errorf("invalid COUNTING_POLICY %q", c.Pipeline.Policy)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single remote classification call.
func (c ClassifierConfig) Timeout() time.Duration {
	return secondsOr(c.TimeoutSeconds, 15*time.Second)
}

// CacheTTL is how long remote answers stay cached in Redis.
func (c ClassifierConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Timeout bounds a single notification attempt.
func (n NotificationConfig) Timeout() time.Duration {
	return secondsOr(n.TimeoutSeconds, 10*time.Second)
}

// AccessTokenTTL returns the lifetime of minted API tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return secondsOr(a.AccessTokenTTLMinutes*60, time.Hour)
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
