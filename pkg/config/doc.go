// # Loading
//
// Session files are YAML, read through viper and decoded with mapstructure:
//
//	cfg, err := config.Load("respawn.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Load applies defaults, then the file, then RESPAWN_* environment
// variables (RESPAWN_SPAWN_SEED=7 overrides spawn.seed), and finally
// validates the result. ${VAR_NAME} references inside the file are replaced
// before parsing.
//
// # File Layout
//
//	logging:
//	  level: info
//	  file:
//	    path: /var/log/respawn.log
//	    max_size_mb: 50
//	pools:
//	  - id: Enemy
//	    template: Enemy
//	    size: 20
//	spawn:
//	  default_policy: farthest
//	  seed: 42
//	  reference: [0, 0, 0]
//	groups:
//	  - name: arena
//	    pool: Enemy
//	    policy: closest
//	    points:
//	      - name: gate
//	        position: "12,0,-4"
//	        safe_distance: 5
//	metrics:
//	  enabled: true
//	  namespace: respawn
//	  listen: ":9090"
//	tracing:
//	  enabled: false
//	  sampling_rate: 1
//
// Positions accept a [x, y, z] list, an "x,y,z" string or an {x, y, z} map.
// A pool size of 0 or a missing size means pool.DefaultSize.
//
// # Validation
//
// Validate reports every problem at once as a joined error whose members
// are of type ErrorTypeValidation: empty or duplicate pool ids, non-positive
// sizes, duplicate group names, groups naming undeclared pools, negative
// safe distances and unknown policies.
package config
