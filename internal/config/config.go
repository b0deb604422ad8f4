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
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Pipeline     PipelineConfig
	Intake       IntakeConfig
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
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
	Env     string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	CookieName            string
	CookieSecure          bool
	// BootstrapEmail and BootstrapPassword provision a recruiter account at
	// startup when both are set.
	BootstrapEmail    string
	BootstrapPassword string
}

// StorageConfig configures the résumé object store.
type StorageConfig struct {
	Endpoint            string
	PublicEndpoint      string
	AccessKeyID         string
	SecretAccessKey     string
	Bucket              string
	Region              string
	UseSSL              bool
	AutoCreateBucket    bool
	ResumeURLTTLSeconds int
	MaxUploadBytes      int64
}

// NotificationConfig holds candidate e-mail settings.
type NotificationConfig struct {
	ResendAPIKey   string
	EmailFrom      string
	TimeoutSeconds int
}

// PipelineConfig selects stage transition rules.
type PipelineConfig struct {
	Mode string
}

// IntakeConfig limits public application submissions.
type IntakeConfig struct {
	RateLimit         int
	RateWindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "applicant-tracker"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("APP_NAME", "applicant-tracker"),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "applicant-tracker"),
			Env:     getEnv("APP_ENV", "development"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieName:            getEnv("AUTH_COOKIE_NAME", "ats_session"),
			CookieSecure:          getEnvAsBool("AUTH_COOKIE_SECURE", false),
			BootstrapEmail:        os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
			BootstrapPassword:     os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),
		},
		Storage: StorageConfig{
			Endpoint:            os.Getenv("STORAGE_ENDPOINT"),
			PublicEndpoint:      os.Getenv("STORAGE_PUBLIC_ENDPOINT"),
			AccessKeyID:         os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey:     os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			Bucket:              getEnv("STORAGE_BUCKET", "cvs"),
			Region:              getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:              getEnvAsBool("STORAGE_USE_SSL", false),
			AutoCreateBucket:    getEnvAsBool("STORAGE_AUTO_CREATE_BUCKET", true),
			ResumeURLTTLSeconds: getEnvAsInt("RESUME_URL_TTL_SECONDS", 60),
			MaxUploadBytes:      int64(getEnvAsInt("RESUME_MAX_UPLOAD_BYTES", 10*1024*1024)),
		},
		Notification: NotificationConfig{
			ResendAPIKey:   os.Getenv("NOTIFY_RESEND_API_KEY"),
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "onboarding@resend.dev"),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
		Pipeline: PipelineConfig{
			Mode: getEnv("PIPELINE_MODE", "free"),
		},
		Intake: IntakeConfig{
			RateLimit:         getEnvAsInt("INTAKE_RATE_LIMIT", 5),
			RateWindowSeconds: getEnvAsInt("INTAKE_RATE_WINDOW_SECONDS", 600),
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

// ResumeURLTTL is the validity window of signed résumé links.
func (s StorageConfig) ResumeURLTTL() time.Duration {
	if s.ResumeURLTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.ResumeURLTTLSeconds) * time.Second
}

// Timeout bounds a single e-mail delivery.
func (n NotificationConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// RateWindow returns the intake limiter window.
func (i IntakeConfig) RateWindow() time.Duration {
	if i.RateWindowSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(i.RateWindowSeconds) * time.Second
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
