// Package respawn provides object pooling and spawn-point placement for game
// engines: copies of a template are instantiated once, handed out on request
// and reclaimed when their owner is done with them, and freshly handed-out
// instances are placed at spawn points chosen relative to a tracked reference
// position.
//
// # Architecture
//
// respawn is built from two halves:
//
// 1. Pools: a Registry of named, fixed-capacity pools (pool.Pool[T]). Each
// entry is either available or acquired, never both; available entries wait
// in a FIFO queue so the least recently released one is reused first.
// Listeners observe every acquire and release.
//
// 2. Spawning: a Selector picks one spawn point out of a Group by policy
// (farthest, closest or random), skipping points inside their safe distance
// from the reference and preferring the least used point on ties. The
// Coordinator fetches an instance from a pool and places it there.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/respawn/pkg/geom"
//	    "github.com/ajitpratap0/respawn/pkg/pool"
//	    "github.com/ajitpratap0/respawn/pkg/spawn"
//	)
//
//	// Create a pool of 20 enemies
//	reg := pool.NewRegistry()
//	_, err := pool.CreatePool[*Enemy](reg, "Enemy", enemyTemplate, 20)
//
//	// Describe where they may appear
//	arena := spawn.NewGroup("arena",
//	    spawn.NewPoint("north", geom.V(0, 0, 20), 8),
//	    spawn.NewPoint("south", geom.V(0, 0, -20), 8),
//	)
//
//	// Track the player and spawn
//	ref := spawn.NewReference(nil)
//	ref.Set(player.Position())
//	coord := spawn.NewCoordinator(reg, spawn.NewSelector(), ref)
//	h, ok := coord.Spawn(context.Background(), "Enemy", spawn.FromSource(arena, spawn.Farthest))
//
//	// Later, the enemy returns itself
//	h.Release()
//
// # Key Packages
//
//	pkg/pool          - Fixed-capacity pools, registry, template catalog
//	pkg/spawn         - Spawn points, selection policies, coordinator
//	pkg/geom          - 3D vectors and distances
//	pkg/config        - YAML session configuration
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus pool and spawn metrics
//	pkg/observability - OpenTelemetry spans and counters
//	internal/session  - Builds a running session from configuration
//	internal/sim      - Deterministic wave simulation
//
// # Threading
//
// Pools and selectors follow the frame loop of a game engine: every call
// completes immediately and nothing is locked. A host calling in from
// several goroutines must serialize access itself.
//
// # Configuration
//
// Sessions are described in YAML:
//
//	pools:
//	  - id: Enemy
//	    template: Enemy
//	    size: 20
//	groups:
//	  - name: arena
//	    pool: Enemy
//	    policy: farthest
//	    points:
//	      - name: north
//	        position: [0, 0, 20]
//	        safe_distance: 8
//
// Environment variables are supported with ${VAR_NAME} syntax and RESPAWN_*
// overrides.
//
// # Development
//
// Run tests and benchmarks:
//
//	go test ./...
//	go run ./cmd/benchmark -count 100000
//	go run ./cmd/respawn simulate --waves 20 --metrics-listen :9090
package respawn
