// Command benchmark measures per-call latency of the pool and spawn hot paths
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/loov/hrtime"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/internal/sim"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/pool"
	"github.com/ajitpratap0/respawn/pkg/spawn"
)

var (
	iterations = flag.Int("count", 100000, "Measured calls per benchmark")
	poolSize   = flag.Int("size", 64, "Pool capacity")
	points     = flag.Int("points", 16, "Spawn points for the selector benchmarks")
	bins       = flag.Int("bins", 10, "Histogram bins")
	jsonOut    = flag.Bool("json", false, "Print a JSON summary instead of histograms")
)

// Result summarizes one benchmark.
type Result struct {
	Name  string        `json:"name"`
	Count int           `json:"count"`
	Min   time.Duration `json:"min_ns"`
	P50   time.Duration `json:"p50_ns"`
	P99   time.Duration `json:"p99_ns"`
	Max   time.Duration `json:"max_ns"`
}

func main() {
	flag.Parse()

	benches := []struct {
		name string
		run  func(*hrtime.Benchmark) error
	}{
		{"pool_fetch_release", benchPool},
		{"registry_fetch_release", benchRegistry},
		{"selector_pick_closest", benchSelector(spawn.Closest)},
		{"selector_pick_random", benchSelector(spawn.Random)},
		{"coordinator_spawn_release", benchCoordinator},
	}

	results := make([]Result, 0, len(benches))
	for _, b := range benches {
		bench := hrtime.NewBenchmark(*iterations)
		if err := b.run(bench); err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", b.name, err)
			os.Exit(1)
		}
		if !*jsonOut {
			fmt.Printf("=== %s ===\n", b.name)
			fmt.Println(bench.Histogram(*bins))
		}
		results = append(results, summarize(b.name, bench.Laps()))
	}

	if *jsonOut {
		data, err := gojson.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	}
}

func summarize(name string, laps []time.Duration) Result {
	sorted := make([]time.Duration, len(laps))
	copy(sorted, laps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	r := Result{Name: name, Count: len(sorted)}
	if len(sorted) == 0 {
		return r
	}
	at := func(q float64) time.Duration { return sorted[int(q*float64(len(sorted)-1))] }
	r.Min, r.P50, r.P99, r.Max = sorted[0], at(0.5), at(0.99), sorted[len(sorted)-1]
	return r
}

func enemyTemplate() pool.Template[*sim.Enemy] {
	return pool.NewTemplate("Enemy", func(int) (*sim.Enemy, error) {
		return &sim.Enemy{Health: sim.MaxHealth}, nil
	})
}

func benchPool(bench *hrtime.Benchmark) error {
	p, err := pool.NewPool[*sim.Enemy]("Enemy", enemyTemplate(), *poolSize, pool.WithLogger(zap.NewNop()))
	if err != nil {
		return err
	}
	for bench.Next() {
		e, ok := p.FetchAvailable()
		if !ok {
			return fmt.Errorf("pool exhausted")
		}
		e.Release()
	}
	return nil
}

func benchRegistry(bench *hrtime.Benchmark) error {
	reg := pool.NewRegistry(pool.WithLogger(zap.NewNop()))
	if _, err := pool.CreatePool[*sim.Enemy](reg, "Enemy", enemyTemplate(), *poolSize); err != nil {
		return err
	}
	for bench.Next() {
		h, ok := reg.FetchAvailable("Enemy")
		if !ok {
			return fmt.Errorf("pool exhausted")
		}
		h.Release()
	}
	return nil
}

func ring(n int) []*spawn.Point {
	out := make([]*spawn.Point, n)
	for i := range out {
		out[i] = spawn.NewPoint(fmt.Sprintf("p%d", i), geom.V(float64(i*3), 0, float64(n-i)), 1)
	}
	return out
}

func benchSelector(policy spawn.Policy) func(*hrtime.Benchmark) error {
	return func(bench *hrtime.Benchmark) error {
		sel := spawn.NewSelector(spawn.WithSeed(1), spawn.WithSelectorLogger(zap.NewNop()))
		pts := ring(*points)
		for bench.Next() {
			if _, err := sel.Select(pts, geom.Zero, policy); err != nil {
				return err
			}
		}
		return nil
	}
}

func benchCoordinator(bench *hrtime.Benchmark) error {
	log := zap.NewNop()
	reg := pool.NewRegistry(pool.WithLogger(log))
	if _, err := pool.CreatePool[*sim.Enemy](reg, "Enemy", enemyTemplate(), *poolSize); err != nil {
		return err
	}
	ref := spawn.NewReference(log)
	ref.Set(geom.Zero)
	coord := spawn.NewCoordinator(reg, spawn.NewSelector(spawn.WithSeed(1)), ref, spawn.WithLogger(log))
	target := spawn.FromSource(spawn.NewGroup("bench", ring(*points)...), spawn.Closest)

	ctx := context.Background()
	for bench.Next() {
		h, ok := coord.Spawn(ctx, "Enemy", target)
		if !ok {
			return fmt.Errorf("spawn failed")
		}
		h.Release()
	}
	return nil
}
