package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/pool"
	"github.com/ajitpratap0/respawn/pkg/spawn"
	"github.com/ajitpratap0/respawn/pkg/testutil"
)

const sessionYAML = `
logging:
  level: debug
pools:
  - id: Enemy
    template: Enemy
    size: 5
  - id: Coin
    template: ${COIN_TEMPLATE}
spawn:
  default_policy: random
  seed: 9
  reference: "1,2,3"
groups:
  - name: arena
    pool: Enemy
    points:
      - name: north
        position: [0, 0, 10]
        safe_distance: 2
      - name: east
        position: {x: 10, y: 0, z: 0}
      - name: flat
        position: "4,5"
  - name: vault
    pool: Coin
    policy: manual
    points: []
metrics:
  namespace: game
tracing:
  enabled: true
  sampling_rate: 0.5
  batch_timeout: 250ms
`

type LoaderSuite struct {
	testutil.IntegrationTestSuite
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) TestLoad() {
	s.T().Setenv("COIN_TEMPLATE", "GoldCoin")
	path := s.CreateTempFile("session.yaml", []byte(sessionYAML))

	cfg, err := config.Load(path)
	s.Require().NoError(err)

	s.Equal("debug", cfg.Logging.Level)
	s.Equal([]pool.Config{
		{ID: "Enemy", Template: "Enemy", Size: 5},
		{ID: "Coin", Template: "GoldCoin", Size: pool.DefaultSize},
	}, cfg.Pools)

	s.Equal(spawn.Random, cfg.Spawn.DefaultPolicy)
	s.Equal(uint64(9), cfg.Spawn.Seed)
	s.Equal(geom.V(1, 2, 3), cfg.Spawn.Reference)

	s.Require().Len(cfg.Groups, 2)
	arena := cfg.Groups[0]
	s.Equal(spawn.Random, cfg.PolicyFor(arena))
	s.Equal(geom.V(0, 0, 10), arena.Points[0].Position)
	s.Equal(2.0, arena.Points[0].SafeDistance)
	s.Equal(geom.V(10, 0, 0), arena.Points[1].Position)
	s.Equal(geom.V(4, 5, 0), arena.Points[2].Position)
	s.Equal(spawn.Manual, cfg.PolicyFor(cfg.Groups[1]))

	s.True(cfg.Metrics.Enabled)
	s.Equal("game", cfg.Metrics.Namespace)
	s.True(cfg.Tracing.Enabled)
	s.Equal(0.5, cfg.Tracing.SamplingRate)
	s.Equal(250*time.Millisecond, cfg.Tracing.BatchTimeout)
	s.Equal("respawn", cfg.Tracing.ServiceName)
}

func (s *LoaderSuite) TestEnvironmentOverrides() {
	s.T().Setenv("COIN_TEMPLATE", "Coin")
	s.T().Setenv("RESPAWN_SPAWN_SEED", "77")
	s.T().Setenv("RESPAWN_METRICS_NAMESPACE", "override")
	path := s.CreateTempFile("env.yaml", []byte(sessionYAML))

	cfg, err := config.Load(path)
	s.Require().NoError(err)

	s.Equal(uint64(77), cfg.Spawn.Seed)
	s.Equal("override", cfg.Metrics.Namespace)
}

func (s *LoaderSuite) TestSaveThenLoad() {
	cfg := config.Default()
	cfg.Pools = []pool.Config{{ID: "Enemy", Template: "Enemy", Size: 3}}
	closest := spawn.Closest
	cfg.Groups = []config.GroupConfig{{
		Name:   "arena",
		Pool:   "Enemy",
		Policy: &closest,
		Spread: geom.V(2, 0, 1),
		Points: []config.PointConfig{{Name: "a", Position: geom.V(1.5, 0, -2), SafeDistance: 1}},
	}}
	cfg.Spawn.Reference = geom.V(0, 1, 0)

	path := filepath.Join(s.TempDir(), "saved.yaml")
	s.Require().NoError(config.Save(path, cfg))

	loaded, err := config.Load(path)
	s.Require().NoError(err)
	s.Equal(cfg.Pools, loaded.Pools)
	s.Equal(cfg.Groups, loaded.Groups)
	s.Equal(cfg.Spawn, loaded.Spawn)
}

func (s *LoaderSuite) TestLoadMissingFile() {
	_, err := config.Load(filepath.Join(s.TempDir(), "missing.yaml"))
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeConfig))
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown policy", "spawn:\n  default_policy: nearest\n"},
		{"bad vector", "spawn:\n  reference: [1]\n"},
		{"malformed yaml", "pools: [\n"},
		{"negative size", "pools:\n  - id: A\n    template: A\n    size: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	bad := spawn.Policy(42)
	cfg := config.Default()
	cfg.Pools = []pool.Config{
		{ID: "", Template: "X", Size: 1},
		{ID: "A", Template: "", Size: 0},
		{ID: "B", Template: "B", Size: 1},
		{ID: "B", Template: "B", Size: 1},
	}
	cfg.Groups = []config.GroupConfig{
		{Name: "g", Pool: "Missing", Policy: &bad},
		{Name: "g", Points: []config.PointConfig{{Name: "p", SafeDistance: -1}}},
	}
	cfg.Tracing.SamplingRate = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	multi, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	// empty id, empty template, size 0, duplicate pool, unknown pool,
	// bad policy, duplicate group, negative safe distance, sampling rate
	assert.Len(t, multi.Unwrap(), 9)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}
