// Package config loads command configuration from YAML and the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRedisTTL       = 48 * time.Hour
	DefaultRedisKeyPrefix = "punctuality"
)

func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			TTL:       DefaultRedisTTL,
			KeyPrefix: DefaultRedisKeyPrefix,
		},
		Rabbit: RabbitConfig{
			Host: "localhost",
			Port: "5672",
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRAINDATA_DATABASE"); v != "" {
		cfg.Database = v
	} else if dsn := postgresDSNFromEnv(); dsn != "" && cfg.Database == "" {
		cfg.Database = dsn
	}

	if v := os.Getenv("METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Redis.TTL = ttl
		}
	}

	if v := os.Getenv("MQ_USER"); v != "" {
		cfg.Rabbit.User = v
	}
	if v := os.Getenv("MQ_PASSWORD"); v != "" {
		cfg.Rabbit.Password = v
	}
	if v := os.Getenv("MQ_HOST"); v != "" {
		cfg.Rabbit.Host = v
	}
	if v := os.Getenv("MQ_PORT"); v != "" {
		cfg.Rabbit.Port = v
	}
	if v := os.Getenv("MQ_QUEUE"); v != "" {
		cfg.Rabbit.Queue = v
	}
}

// postgresDSNFromEnv builds a connection URL from the POSTGRES_* variables,
// or returns "" when POSTGRES_HOST is unset.
func postgresDSNFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}

	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + os.Getenv("POSTGRES_DB"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
