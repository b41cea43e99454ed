package mtredis

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config controls how a [Storage] names its keys and reports what it does.
//
// Config values are read once by [Builder.Build]; later changes have no effect.
type Config struct {
	// Prefix is the key namespace. Every key the storage touches starts
	// with Prefix + ":".
	Prefix  string
	Metrics MetricsConfig
	Audit   AuditConfig

	// Clock supplies the liveness timestamp written by Save and Close.
	Clock func() time.Time
	// Logger receives debug-level storage diagnostics.
	Logger *zap.Logger
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles in-process counters and the round-trip latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls lifecycle event dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return Config{
		Prefix: "mtproto",
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Clock:  time.Now,
		Logger: zap.NewNop(),
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return errors.New("Prefix must not be empty")
	}
	if strings.ContainsAny(c.Prefix, " \t\r\n") {
		return errors.New("Prefix must not contain whitespace")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}
	if c.Clock == nil {
		return errors.New("Clock must not be nil")
	}
	if c.Logger == nil {
		return errors.New("Logger must not be nil")
	}
	return nil
}
