package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	customvalidator "github.com/taisys-technologies/voc-vault/pkg/validator"
)

type Config struct {
	Server         ServerConfig   `mapstructure:"server"`
	Vault          VaultConfig    `mapstructure:"vault"    validate:"required"`
	Database       DatabaseConfig `mapstructure:"database"`
	Mover          MoverConfig    `mapstructure:"mover"`
	Audit          AuditConfig    `mapstructure:"audit"`
	ServiceVersion string
	BuildCommit    string
}

func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("config")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	vip.SetDefault("server.port", 8086)
	vip.SetDefault("server.mode", "development")
	vip.SetDefault("server.rate_limiter.rps", 50)
	vip.SetDefault("server.rate_limiter.burst", 100)
	vip.SetDefault("vault.variant", "list")
	vip.SetDefault("vault.prefix", "vault")
	vip.SetDefault("vault.asset_capacity", 20)
	vip.SetDefault("vault.list_capacity", 20)
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.pool.max_conns", 10)
	vip.SetDefault("database.circuit_breaker.max_failures", 5)
	vip.SetDefault("database.circuit_breaker.reset_timeout", "30s")
	vip.SetDefault("audit.async.channel_buffer_size", 1024)
	vip.SetDefault("audit.async.worker_count", 2)
	vip.SetDefault("audit.async.batch_size", 32)
	vip.SetDefault("audit.async.batch_timeout", "1s")
	vip.SetDefault("mover.type", "mock")

	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := customvalidator.RegisterCustomValidators(validate); err != nil {
		return nil, fmt.Errorf("failed to register custom validators: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
