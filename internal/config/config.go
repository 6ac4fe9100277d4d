package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Auth          AuthConfig
	Collaborators CollaboratorsConfig
	Push          PushConfig
	Automation    AutomationConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines service-token authentication parameters for the
// ingestion endpoints.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// CollaboratorsConfig points at the external AI, mailer and action-webhook
// services. Each call is bounded by its own timeout so a stalled
// collaborator fails that one effect only.
type CollaboratorsConfig struct {
	AIResponderURL       string
	AITimeoutSeconds     int
	MailerURL            string
	MailerTimeoutSeconds int
	ActionsURL           string
	ActionTimeoutSeconds int
}

// PushConfig configures Firebase Cloud Messaging delivery. An empty
// credentials file disables push dispatch.
type PushConfig struct {
	CredentialsFile string
}

// AutomationConfig tunes the AI pipeline.
type AutomationConfig struct {
	MailDomain       string
	Temperature      float64
	PersonalityLevel int
	// EmployeeID is the agent persona the AI responder answers as; empty
	// lets the responder pick its default persona.
	EmployeeID string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("AI_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
		},
		Collaborators: CollaboratorsConfig{
			AIResponderURL:       getEnv("AI_RESPONDER_URL", ""),
			AITimeoutSeconds:     getEnvAsInt("AI_TIMEOUT_SECONDS", 60),
			MailerURL:            getEnv("MAILER_URL", ""),
			MailerTimeoutSeconds: getEnvAsInt("MAILER_TIMEOUT_SECONDS", 30),
			ActionsURL:           getEnv("ACTIONS_URL", ""),
			ActionTimeoutSeconds: getEnvAsInt("ACTION_TIMEOUT_SECONDS", 120),
		},
		Push: PushConfig{
			CredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
		},
		Automation: AutomationConfig{
			MailDomain:       getEnv("HELPDESK_MAIL_DOMAIN", "mail.helpdesk.local"),
			Temperature:      temperature,
			PersonalityLevel: getEnvAsInt("AI_PERSONALITY_LEVEL", 3),
			EmployeeID:       getEnv("AI_EMPLOYEE_ID", ""),
		},
	}

	return cfg, nil
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

// AITimeout returns the AI responder call deadline.
func (c CollaboratorsConfig) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// MailerTimeout returns the outbound email call deadline.
func (c CollaboratorsConfig) MailerTimeout() time.Duration {
	return time.Duration(c.MailerTimeoutSeconds) * time.Second
}

// ActionTimeout bounds one action webhook invocation including stream
// consumption.
func (c CollaboratorsConfig) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSeconds) * time.Second
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
