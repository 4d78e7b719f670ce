// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all runtime settings.
type Config struct {
	App       AppConfig       `envPrefix:"LEKHA_"`
	HTTP      HTTPConfig      `envPrefix:"LEKHA_HTTP_"`
	Database  DatabaseConfig  `envPrefix:"LEKHA_DB_"`
	Redis     RedisConfig     `envPrefix:"LEKHA_REDIS_"`
	Kafka     KafkaConfig     `envPrefix:"LEKHA_KAFKA_"`
	Auth      AuthConfig      `envPrefix:"LEKHA_AUTH_"`
	Rules     RulesConfig     `envPrefix:"LEKHA_RULES_"`
	Scheduler SchedulerConfig `envPrefix:"LEKHA_SCHEDULER_"`
}

type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"lekha"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPConfig struct {
	Addr              string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"25s"`
}

type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

type KafkaConfig struct {
	Brokers       []string      `env:"BROKERS" envSeparator:","`
	AuditTopic    string        `env:"AUDIT_TOPIC" envDefault:"lekha.audit.v1"`
	RelayInterval time.Duration `env:"RELAY_INTERVAL" envDefault:"5s"`
	RelayBatch    int           `env:"RELAY_BATCH" envDefault:"100"`
}

type AuthConfig struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`
	Issuer        string `env:"ISSUER" envDefault:"lekha"`
	Audience      string `env:"AUDIENCE" envDefault:"lekha-api"`
}

type RulesConfig struct {
	// CatalogPath points at a JSON rule catalog. Empty means the built-in
	// statutory catalog.
	CatalogPath string `env:"CATALOG_PATH"`
}

type SchedulerConfig struct {
	Enabled          bool          `env:"ENABLED" envDefault:"true"`
	OverdueInterval  time.Duration `env:"OVERDUE_INTERVAL" envDefault:"1h"`
	RiskScanInterval time.Duration `env:"RISK_SCAN_INTERVAL" envDefault:"6h"`
}

// Load parses environment variables into Config and performs validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Auth.JWTSigningKey == "" {
		if cfg.App.Environment != "development" {
			return nil, fmt.Errorf("LEKHA_AUTH_JWT_SIGNING_KEY is required outside development")
		}
		cfg.Auth.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg, nil
}
