package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/mtredis"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var peerTypes = [...]string{"bot", "user", "group", "supergroup", "channel"}

func main() {
	var (
		peers       = flag.Int("peers", 100000, "number of peers to seed")
		batch       = flag.Int("batch", 200, "peers per UpdatePeers call")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "lookups in the lookup phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *peers <= 0 || *batch <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "peers, batch, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	prefix := "bench-" + uuid.NewString()
	store, err := mtredis.New().
		WithRedis(client).
		WithPrefix(prefix).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Shutdown()

	if err := store.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("prefix %s\n", prefix)

	upsertStats := runUpsertPhase(ctx, store, *peers, *batch, *concurrency)
	lookupStats := runLookupPhase(ctx, store, *peers, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("upsert", upsertStats)
	printStats("lookup", lookupStats)

	snap := store.MetricsSnapshot()
	fmt.Printf("peers upserted=%d lookups=%d misses=%d\n",
		snap.Counters[mtredis.MetricPeersUpserted],
		snap.Counters[mtredis.MetricPeerLookup],
		snap.Counters[mtredis.MetricPeerNotFound],
	)
}

// runUpsertPhase writes peers in batches; each sample is one UpdatePeers call.
func runUpsertPhase(ctx context.Context, store *mtredis.Storage, peers, batch, concurrency int) phaseStats {
	batches := (peers + batch - 1) / batch
	return runPhase(concurrency, batches, func(_ *rand.Rand, i int) error {
		lo := i * batch
		hi := min(lo+batch, peers)
		updates := make([]mtredis.PeerUpdate, 0, hi-lo)
		for id := lo; id < hi; id++ {
			updates = append(updates, buildPeer(int64(id)))
		}
		return store.UpdatePeers(ctx, updates)
	})
}

func runLookupPhase(ctx context.Context, store *mtredis.Storage, peers, ops, concurrency int) phaseStats {
	return runPhase(concurrency, ops, func(r *rand.Rand, _ int) error {
		_, err := store.PeerByID(ctx, r.Int64N(int64(peers)))
		return err
	})
}

func runPhase(concurrency, ops int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(worker)*7919))
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					failures.Add(1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures.Load())
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	slices.Sort(samples)
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func buildPeer(id int64) mtredis.PeerUpdate {
	p := mtredis.PeerUpdate{
		ID:         id,
		AccessHash: id*31 + 17,
		Type:       peerTypes[id%int64(len(peerTypes))],
	}
	if id%10 == 0 {
		p.PhoneNumber = fmt.Sprintf("1555%07d", id)
	}
	return p
}
