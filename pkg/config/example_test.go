package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

// ExampleDefault demonstrates the defaults every session starts from.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Policy: %s\n", cfg.Spawn.DefaultPolicy)
	fmt.Printf("Metrics: %s\n", cfg.Metrics.Namespace)
	fmt.Printf("Log level: %s\n", cfg.Logging.Level)

	// Output:
	// Policy: farthest
	// Metrics: respawn
	// Log level: info
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Pools = []pool.Config{
		{ID: "Enemy", Template: "Enemy", Size: 20},
		{ID: "Coin", Template: "Coin", Size: 50},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}

// ExampleParse demonstrates decoding a session file.
func ExampleParse() {
	cfg, err := config.Parse([]byte(`
pools:
  - id: Enemy
    template: Enemy
groups:
  - name: arena
    pool: Enemy
    policy: closest
    points:
      - name: gate
        position: [12, 0, -4]
        safe_distance: 5
`))
	if err != nil {
		log.Fatal(err)
	}

	g := cfg.Groups[0]
	fmt.Printf("Pool size: %d\n", cfg.Pools[0].Size)
	fmt.Printf("Group policy: %s\n", cfg.PolicyFor(g))
	fmt.Printf("Gate: %s\n", g.Points[0].Position)

	// Output:
	// Pool size: 10
	// Group policy: closest
	// Gate: 12,0,-4
}
