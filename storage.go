package mtredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CurrentVersion is the storage schema version written by Open on a fresh
// session and the only version Open accepts.
const CurrentVersion int64 = 1

// Storage persists one client session in Redis.
//
// Key layout under prefix P:
//
//	P:session           hash   dc_id, test_mode, auth_key, date, user_id, is_bot, version, api_id
//	P:state             hash   8-byte LE state id -> 40-byte update state
//	P:peer:<id>         string 20-byte peer record
//	P:username:<name>   string 8-byte LE peer id
//	P:phone:<number>    string 8-byte LE peer id
//
// Every method issues one Redis round trip, except peer lookup by username
// or phone number which issues two. Nothing spans more than one command, so
// callers that need consistency across fields must serialize externally.
// Redis client errors are returned unchanged.
type Storage struct {
	redis  redis.UniversalClient
	prefix string

	sessionKey string
	stateKey   string

	clock   func() time.Time
	logger  *zap.Logger
	metrics *Metrics
	audit   *auditDispatcher
}

func newStorage(client redis.UniversalClient, cfg Config) *Storage {
	return &Storage{
		redis:      client,
		prefix:     cfg.Prefix,
		sessionKey: cfg.Prefix + ":session",
		stateKey:   cfg.Prefix + ":state",
		clock:      cfg.Clock,
		logger:     cfg.Logger.With(zap.String("prefix", cfg.Prefix)),
	}
}

// Prefix returns the key namespace.
func (s *Storage) Prefix() string {
	return s.prefix
}

func (s *Storage) peerKey(id int64) string {
	return fmt.Sprintf("%s:peer:%d", s.prefix, id)
}

func (s *Storage) usernameKey(username string) string {
	return s.prefix + ":username:" + username
}

func (s *Storage) phoneKey(phoneNumber string) string {
	return s.prefix + ":phone:" + phoneNumber
}

// Open runs the version gate. A session without a stored version is
// initialized to CurrentVersion. A newer stored version fails with
// ErrVersionTooNew, an older one with ErrUpgradeNotImplemented.
//
// Open does not compare-and-set: two concurrent calls on an uninitialized
// session may both write the version.
func (s *Storage) Open(ctx context.Context) error {
	version, ok, err := s.Version().Get(ctx)
	if err != nil {
		return err
	}

	if !ok {
		if err := s.Version().Set(ctx, CurrentVersion); err != nil {
			return err
		}
		s.logger.Debug("session initialized", zap.Int64("version", CurrentVersion))
		s.metrics.Inc(MetricSessionOpened)
		s.emitAudit(ctx, AuditSessionInitialized, true, CurrentVersion, nil, nil)
		return nil
	}

	switch {
	case version == CurrentVersion:
		s.logger.Debug("session opened", zap.Int64("version", version))
		s.metrics.Inc(MetricSessionOpened)
		s.emitAudit(ctx, AuditSessionOpened, true, version, nil, nil)
		return nil
	case version > CurrentVersion:
		err = fmt.Errorf("%w: stored %d, supported %d", ErrVersionTooNew, version, CurrentVersion)
	default:
		err = fmt.Errorf("%w: stored %d, supported %d", ErrUpgradeNotImplemented, version, CurrentVersion)
	}

	s.logger.Debug("session version rejected", zap.Int64("version", version), zap.Error(err))
	s.metrics.Inc(MetricVersionRejected)
	s.emitAudit(ctx, AuditVersionRejected, false, version, err, nil)
	return err
}

// Save writes the current time to the date field.
func (s *Storage) Save(ctx context.Context) error {
	return s.Date().Set(ctx, s.clock().Unix())
}

// Close records a liveness timestamp. It does not close the Redis client,
// which the caller owns.
func (s *Storage) Close(ctx context.Context) error {
	if err := s.Save(ctx); err != nil {
		s.emitAudit(ctx, AuditSessionClosed, false, 0, err, nil)
		return err
	}
	s.metrics.Inc(MetricSessionClosed)
	s.emitAudit(ctx, AuditSessionClosed, true, 0, nil, nil)
	return nil
}

// Delete removes every session field. Peer and update-state records are kept.
func (s *Storage) Delete(ctx context.Context) error {
	start := time.Now()
	err := s.redis.HDel(ctx, s.sessionKey, sessionFields...).Err()
	s.observe(start)
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricSessionDeleted)
	s.emitAudit(ctx, AuditSessionDeleted, true, 0, nil, nil)
	return nil
}

// MetricsSnapshot returns a copy of the storage counters.
func (s *Storage) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return s.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped because the
// dispatcher buffer was full.
func (s *Storage) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.droppedCount()
}

// Shutdown stops the audit dispatcher after delivering buffered events.
// The storage must not be used afterwards.
func (s *Storage) Shutdown() {
	if s == nil {
		return
	}
	s.audit.close()
}

func (s *Storage) observe(start time.Time) {
	if s.metrics.LatencyEnabled() {
		s.metrics.Observe(MetricRoundTripLatency, time.Since(start))
	}
}

func (s *Storage) emitAudit(ctx context.Context, eventType string, success bool, version int64, err error, metadata map[string]string) {
	if s.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: s.clock().UTC(),
		EventType: eventType,
		Prefix:    s.prefix,
		Version:   version,
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.audit.emit(ctx, event)
}
