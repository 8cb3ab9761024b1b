package config

// ServerConfig represents the HTTP server configuration.
type ServerConfig struct {
	Port        int               `mapstructure:"port" validate:"required,gte=1024,lte=65535"`
	TLS         TLS               `mapstructure:"tls"`
	Mode        string            `mapstructure:"mode" validate:"required,oneof=development production"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
}

// RateLimiterConfig holds the configuration for the request rate limiter.
type RateLimiterConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// TLS represents the TLS configuration.
type TLS struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}
