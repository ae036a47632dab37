package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig          `yaml:"app"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Logger       LoggerConfig       `yaml:"logger"`
	Auth         AuthConfig         `yaml:"auth"`
	Notification NotificationConfig `yaml:"notification"`
	Storage      StorageConfig      `yaml:"storage"`
	Tickets      TicketsConfig      `yaml:"tickets"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `yaml:"name"`
	Env                   string `yaml:"env"`
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	Version               string `yaml:"version"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	// Timezone is the IANA zone used when a request carries no tz parameter.
	Timezone string `yaml:"timezone"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	RunMigrations  bool   `yaml:"run_migrations"`
	MigrationsDir  string `yaml:"migrations_dir"`
	ConnMaxIdleSec int32  `yaml:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `yaml:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// KafkaConfig enables the outbound ticket event stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
	// Format is json (default) or console.
	Format string `yaml:"format"`
}

// AuthConfig defines token verification parameters.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

// NotificationConfig holds outbound alert endpoints.
type NotificationConfig struct {
	EmailFrom      string `yaml:"email_from"`
	AlertRecipient string `yaml:"alert_recipient"`
	MailRelayURL   string `yaml:"mail_relay_url"`
	MailRelayToken string `yaml:"mail_relay_token"`
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig configures the attachment object store.
type StorageConfig struct {
	RootDir       string `yaml:"root_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
}

// TicketsConfig holds ticket lifecycle policy.
type TicketsConfig struct {
	// ClearResolvedOnReopen clears resolved_at when a ticket leaves RESOLVED.
	// The default keeps the previous resolution timestamp.
	ClearResolvedOnReopen bool     `yaml:"clear_resolved_on_reopen"`
	Categories            []string `yaml:"categories"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:                  "support-portal",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "8080",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
			Timezone:              "America/Sao_Paulo",
		},
		Postgres: PostgresConfig{
			MaxConns:       10,
			MinConns:       2,
			RunMigrations:  true,
			MigrationsDir:  "migrations",
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis: RedisConfig{
			Addr:          "127.0.0.1:6379",
			ChannelPrefix: "portal",
		},
		Kafka: KafkaConfig{
			Topic: "portal.ticket-events",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-secret",
		},
		Notification: NotificationConfig{
			EmailFrom:      "AirService <noreply@example.com>",
			TimeoutSeconds: 5,
		},
		Storage: StorageConfig{
			RootDir:       "data/attachments",
			PublicBaseURL: "http://localhost:8080/files",
			MaxUploadMB:   10,
		},
		Tickets: TicketsConfig{
			Categories: []string{"ERP MEGA", "Microgestão", "Power BI", "Acessos", "Outro"},
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables,
// applying defaults where possible. Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(cfg.Redis.DB)))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnv("APP_PORT", cfg.App.Port)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
	cfg.App.RequestTimeoutSeconds = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", cfg.App.RequestTimeoutSeconds)
	cfg.App.Timezone = getEnv("APP_TIMEZONE", cfg.App.Timezone)

	cfg.Postgres.DSN = getEnv("POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Postgres.MaxConns = int32(getEnvAsInt("POSTGRES_MAX_CONNS", int(cfg.Postgres.MaxConns)))
	cfg.Postgres.MinConns = int32(getEnvAsInt("POSTGRES_MIN_CONNS", int(cfg.Postgres.MinConns)))
	cfg.Postgres.RunMigrations = getEnvAsBool("POSTGRES_RUN_MIGRATIONS", cfg.Postgres.RunMigrations)
	cfg.Postgres.MigrationsDir = getEnv("POSTGRES_MIGRATIONS_DIR", cfg.Postgres.MigrationsDir)
	cfg.Postgres.ConnMaxIdleSec = int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", int(cfg.Postgres.ConnMaxIdleSec)))
	cfg.Postgres.ConnMaxLifeSec = int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", int(cfg.Postgres.ConnMaxLifeSec)))

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = redisDB
	cfg.Redis.ChannelPrefix = getEnv("REDIS_CHANNEL_PREFIX", cfg.Redis.ChannelPrefix)

	cfg.Kafka.Brokers = getEnvAsList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnv("LOG_FORMAT", cfg.Logger.Format)

	cfg.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("AUTH_JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = getEnv("AUTH_JWT_AUDIENCE", cfg.Auth.Audience)

	cfg.Notification.EmailFrom = getEnv("NOTIFY_EMAIL_FROM", cfg.Notification.EmailFrom)
	cfg.Notification.AlertRecipient = getEnv("NOTIFY_ALERT_RECIPIENT", cfg.Notification.AlertRecipient)
	cfg.Notification.MailRelayURL = getEnv("NOTIFY_MAIL_RELAY_URL", cfg.Notification.MailRelayURL)
	cfg.Notification.MailRelayToken = getEnv("NOTIFY_MAIL_RELAY_TOKEN", cfg.Notification.MailRelayToken)
	cfg.Notification.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", cfg.Notification.WebhookURL)
	cfg.Notification.TimeoutSeconds = getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", cfg.Notification.TimeoutSeconds)

	cfg.Storage.RootDir = getEnv("STORAGE_ROOT_DIR", cfg.Storage.RootDir)
	cfg.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.MaxUploadMB = getEnvAsInt("STORAGE_MAX_UPLOAD_MB", cfg.Storage.MaxUploadMB)

	cfg.Tickets.ClearResolvedOnReopen = getEnvAsBool("TICKETS_CLEAR_RESOLVED_ON_REOPEN", cfg.Tickets.ClearResolvedOnReopen)
	cfg.Tickets.Categories = getEnvAsList("TICKETS_CATEGORIES", cfg.Tickets.Categories)
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

// Location resolves the default viewer timezone, falling back to the process zone.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Timeout returns the outbound notification timeout.
func (n NotificationConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the attachment size limit in bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(s.MaxUploadMB) << 20
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

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
