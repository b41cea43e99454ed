package mtredis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, client := newTestRedis(t)
	cfg := DefaultConfig()
	cfg.Prefix = "test"
	cfg.Metrics = MetricsConfig{Enabled: true, EnableLatencyHistograms: true}
	cfg.Clock = func() time.Time { return fixedNow }

	s, err := New().WithRedis(client).WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build storage: %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s, mr, client
}
