package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	// Path to the SQLite database file. ":memory:" is accepted for tests.
	Path          string `mapstructure:"path" envconfig:"DATABASE_PATH"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" envconfig:"DATABASE_BUSY_TIMEOUT_MS"`
	MaxOpenConns  int    `mapstructure:"max_open_conns" envconfig:"DATABASE_MAX_OPEN_CONNS"`
}

type LogConfig struct {
	Level string `mapstructure:"level" envconfig:"LOG_LEVEL"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" envconfig:"METRICS_NAMESPACE"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("database.path", "opd-emr.db")
	viper.SetDefault("database.busy_timeout_ms", 5000)
	viper.SetDefault("database.max_open_conns", 1)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("metrics.namespace", "opdemr")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment variables win over file values.
	if err := envconfig.Process("opdemr", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}
