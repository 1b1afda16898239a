package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
	// Transactions needs a replica set or sharded cluster.
	Transactions bool `mapstructure:"transactions"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether object storage is configured at all.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// EmailConfig configures optional notification email through SendGrid.
// Email is disabled when SendGridAPIKey is empty.
type EmailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address"`
	FromName       string `mapstructure:"from_name"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type FeedConfig struct {
	PageSize int64 `mapstructure:"page_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// SlogLevel maps the configured level name to a slog.Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	ErrMissingJWTSecret = errors.New("jwt.secret (JWT_SECRET) is required")
	ErrInvalidMode      = errors.New("server.mode must be debug, release or test")
)

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory, if any, is loaded into the
// environment first so its values act like real environment variables.
func LoadConfig(path string) (config Config, err error) {
	if envErr := godotenv.Load(); envErr == nil {
		slog.Debug("loaded .env file")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitplanhub")
	v.SetDefault("database.transactions", false)
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "168h")
	v.SetDefault("email.from_name", "FitPlanHub")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("feed.page_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// AutomaticEnv only covers keys Viper already knows about; bind the ones
	// without defaults so env-only deployments work.
	for _, key := range []string{
		"jwt.secret",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name",
		"email.sendgrid_api_key", "email.from_address",
		"sentry.dsn",
	} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}
	// SERVER_MODE wins over gin's own GIN_MODE.
	if err = v.BindEnv("server.mode", "SERVER_MODE", "GIN_MODE"); err != nil {
		return
	}

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil // env vars and defaults only
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if config.JWT.Secret == "" {
		return config, ErrMissingJWTSecret
	}
	config.Server.Mode = strings.ToLower(config.Server.Mode)
	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return config, ErrInvalidMode
	}
	if config.Feed.PageSize <= 0 {
		config.Feed.PageSize = 50
	}
	return config, nil
}
