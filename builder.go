package mtredis

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a [Storage]. A Builder can be used for one Build call.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the client used for every storage operation. Standalone,
// cluster and sentinel clients are all accepted.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrefix sets the key namespace.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.config.Prefix = prefix
	return b
}

// WithLogger sets the diagnostics logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.config.Logger = logger
	return b
}

// WithAuditSink enables lifecycle audit events delivered to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Redis round-trip latency histogram.
// It implies metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	if enabled {
		b.config.Metrics.Enabled = true
	}
	return b
}

// Build validates the configuration and returns a ready Storage. Build
// performs no I/O; call [Storage.Open] before use.
func (b *Builder) Build() (*Storage, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, ErrRedisRequired
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := newStorage(b.redis, cfg)
	s.metrics = NewMetrics(cfg.Metrics)
	s.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	b.built = true
	return s, nil
}

// NewStorage builds a Storage with default settings under prefix.
func NewStorage(client redis.UniversalClient, prefix string) (*Storage, error) {
	return New().WithRedis(client).WithPrefix(prefix).Build()
}
