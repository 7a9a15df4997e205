package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	SQLite  SQLiteConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Ingest  IngestConfig
	Rules   RulesConfig
	Events  EventsConfig
	Archive ArchiveConfig
	Tables  TablesConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IngestConfig holds ticket upload settings.
type IngestConfig struct {
	Secret        string  `mapstructure:"secret"`
	SecretHash    string  `mapstructure:"secret_hash"`
	MaxFileSizeMB int64   `mapstructure:"max_file_size_mb"`
	RatePerSec    float64 `mapstructure:"rate_per_sec"`
	RateBurst     int     `mapstructure:"rate_burst"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (i *IngestConfig) MaxFileSizeBytes() int64 {
	return i.MaxFileSizeMB * 1024 * 1024
}

// RulesConfig selects and configures the rule store backend.
type RulesConfig struct {
	Backend  string        `mapstructure:"backend"`
	Path     string        `mapstructure:"path"`
	S3Key    string        `mapstructure:"s3_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// EventsConfig holds rule-update event feed settings. An empty URL disables
// publishing.
type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

// ArchiveConfig controls copying uploaded tickets to object storage.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// TablesConfig points at an optional replacement for the embedded tables.
type TablesConfig struct {
	Path string `mapstructure:"path"`
}

// LoadDotEnv loads a .env file from the working directory, falling back to
// the parent directory. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}
}

// Load reads configuration from environment variables with the FARERULES_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FARERULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "farerules")
	v.SetDefault("db.password", "farerules_secret")
	v.SetDefault("db.name", "farerules_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("sqlite.path", "rules.db")

	// S3 defaults
	v.SetDefault("s3.region", "ap-southeast-2")
	v.SetDefault("s3.bucket", "farerules")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Ingest defaults
	v.SetDefault("ingest.secret", "")
	v.SetDefault("ingest.secret_hash", "")
	v.SetDefault("ingest.max_file_size_mb", 10)
	v.SetDefault("ingest.rate_per_sec", 5)
	v.SetDefault("ingest.rate_burst", 10)

	// Rule store defaults
	v.SetDefault("rules.backend", "file")
	v.SetDefault("rules.path", "rules.json")
	v.SetDefault("rules.s3_key", "rules/rules.json")
	v.SetDefault("rules.cache_ttl", "5m")

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", "farerules.rule.updated")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "tickets")

	v.SetDefault("tables.path", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "FARERULES_SERVER_PORT",
		"server.read_timeout":     "FARERULES_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "FARERULES_SERVER_WRITE_TIMEOUT",
		"server.environment":      "FARERULES_SERVER_ENVIRONMENT",
		"db.host":                 "FARERULES_DB_HOST",
		"db.port":                 "FARERULES_DB_PORT",
		"db.user":                 "FARERULES_DB_USER",
		"db.password":             "FARERULES_DB_PASSWORD",
		"db.name":                 "FARERULES_DB_NAME",
		"db.sslmode":              "FARERULES_DB_SSLMODE",
		"db.max_open":             "FARERULES_DB_MAX_OPEN",
		"db.max_idle":             "FARERULES_DB_MAX_IDLE",
		"sqlite.path":             "FARERULES_SQLITE_PATH",
		"s3.region":               "FARERULES_S3_REGION",
		"s3.bucket":               "FARERULES_S3_BUCKET",
		"s3.endpoint":             "FARERULES_S3_ENDPOINT",
		"s3.access_key":           "FARERULES_S3_ACCESS_KEY",
		"s3.secret_key":           "FARERULES_S3_SECRET_KEY",
		"log.level":               "FARERULES_LOG_LEVEL",
		"log.format":              "FARERULES_LOG_FORMAT",
		"cors.allowed_origins":    "FARERULES_CORS_ALLOWED_ORIGINS",
		"ingest.secret":           "FARERULES_INGEST_SECRET",
		"ingest.secret_hash":      "FARERULES_INGEST_SECRET_HASH",
		"ingest.max_file_size_mb": "FARERULES_INGEST_MAX_FILE_SIZE_MB",
		"ingest.rate_per_sec":     "FARERULES_INGEST_RATE_PER_SEC",
		"ingest.rate_burst":       "FARERULES_INGEST_RATE_BURST",
		"rules.backend":           "FARERULES_RULES_BACKEND",
		"rules.path":              "FARERULES_RULES_PATH",
		"rules.s3_key":            "FARERULES_RULES_S3_KEY",
		"rules.cache_ttl":         "FARERULES_RULES_CACHE_TTL",
		"events.nats_url":         "FARERULES_EVENTS_NATS_URL",
		"events.subject":          "FARERULES_EVENTS_SUBJECT",
		"archive.enabled":         "FARERULES_ARCHIVE_ENABLED",
		"archive.prefix":          "FARERULES_ARCHIVE_PREFIX",
		"tables.path":             "FARERULES_TABLES_PATH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FARERULES_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FARERULES_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.SQLite = SQLiteConfig{Path: v.GetString("sqlite.path")}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Ingest = IngestConfig{
		Secret:        v.GetString("ingest.secret"),
		SecretHash:    v.GetString("ingest.secret_hash"),
		MaxFileSizeMB: v.GetInt64("ingest.max_file_size_mb"),
		RatePerSec:    v.GetFloat64("ingest.rate_per_sec"),
		RateBurst:     v.GetInt("ingest.rate_burst"),
	}
	cfg.Rules = RulesConfig{
		Backend:  strings.ToLower(v.GetString("rules.backend")),
		Path:     v.GetString("rules.path"),
		S3Key:    v.GetString("rules.s3_key"),
		CacheTTL: v.GetDuration("rules.cache_ttl"),
	}
	cfg.Events = EventsConfig{
		NATSURL: v.GetString("events.nats_url"),
		Subject: v.GetString("events.subject"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled: v.GetBool("archive.enabled"),
		Prefix:  v.GetString("archive.prefix"),
	}
	cfg.Tables = TablesConfig{Path: v.GetString("tables.path")}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Rules.Backend {
	case "file", "s3", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown rules.backend %q", c.Rules.Backend)
	}
	if c.Ingest.MaxFileSizeMB <= 0 {
		return fmt.Errorf("config: ingest.max_file_size_mb must be positive")
	}
	return nil
}
