package main

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/mtredis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 0); got != 1 {
		t.Fatalf("p0 = %v", got)
	}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50 = %v", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100 = %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty = %v", got)
	}
}

func TestPhasesAgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := mtredis.New().WithRedis(client).WithPrefix("bench-test").WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := context.Background()

	up := runUpsertPhase(ctx, store, 95, 10, 4)
	if up.ops != 10 || up.failures != 0 {
		t.Fatalf("upsert stats: %+v", up)
	}
	lookup := runLookupPhase(ctx, store, 95, 50, 4)
	if lookup.ops != 50 || lookup.failures != 0 {
		t.Fatalf("lookup stats: %+v", lookup)
	}

	snap := store.MetricsSnapshot()
	if got := snap.Counters[mtredis.MetricPeersUpserted]; got != 95 {
		t.Fatalf("peers upserted = %d, want 95", got)
	}
	if got := snap.Counters[mtredis.MetricPeerLookup]; got != 50 {
		t.Fatalf("lookups = %d, want 50", got)
	}
	if !mr.Exists("bench-test:phone:15550000090") {
		t.Fatal("expected phone pointer for peer 90")
	}
}
