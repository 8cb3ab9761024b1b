package config

import "time"

// AuditConfig holds the configuration for the event trail.
type AuditConfig struct {
	// PersistEvents mirrors every emitted event into the event repository in
	// addition to the structured log.
	PersistEvents bool             `mapstructure:"persist_events"`
	Async         AsyncAuditConfig `mapstructure:"async"`
}

// AsyncAuditConfig holds the configuration for the asynchronous sink.
type AsyncAuditConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	ChannelBufferSize int           `mapstructure:"channel_buffer_size"`
	WorkerCount       int           `mapstructure:"worker_count"`
	BatchSize         int           `mapstructure:"batch_size"`
	BatchTimeout      time.Duration `mapstructure:"batch_timeout"`
}
