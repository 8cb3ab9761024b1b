package config

import (
	"fmt"
	"net/url"
	"time"
)

// DatabaseConfig represents the database configuration. Persistence is
// optional: when disabled the service keeps settings and the event trail
// in memory only.
type DatabaseConfig struct {
	Enabled  bool       `mapstructure:"enabled"`
	Host     string     `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int        `mapstructure:"port" validate:"omitempty,gte=1,lte=65535"`
	User     string     `mapstructure:"user" validate:"required_if=Enabled true"`
	Password string     `mapstructure:"password"`
	DBName   string     `mapstructure:"dbname" validate:"required_if=Enabled true"`
	SSLMode  string     `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	Pool     PoolConfig `mapstructure:"pool"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig holds settings for the settings-store circuit breaker.
type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

// PoolConfig represents the database connection pool configuration.
type PoolConfig struct {
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// DSN renders the configuration as a postgres connection URL.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.DBName,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
