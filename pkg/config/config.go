// Package config defines the session configuration for respawn.
// A single Config structure describes everything a session needs at
// startup, ensuring pools, spawn groups and observability are configured
// from one place.
//
// The configuration is organized into logical sections:
//   - Logging: level, encoding and rotated file output
//   - Pools: the pools to create and the templates they use
//   - Spawn: default policy, random seed and initial reference position
//   - Groups: named sets of spawn points
//   - Metrics: Prometheus namespace and listen address
//   - Tracing: OpenTelemetry sampling and exporter
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Pools = append(cfg.Pools, pool.Config{ID: "Enemy", Template: "Enemy", Size: 20})
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	stderrors "errors"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/metrics"
	"github.com/ajitpratap0/respawn/pkg/observability"
	"github.com/ajitpratap0/respawn/pkg/pool"
	"github.com/ajitpratap0/respawn/pkg/spawn"
)

// Config is the complete session configuration.
type Config struct {
	// Logging configures the global zap logger
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`

	// Pools are created in order at session start
	Pools []pool.Config `mapstructure:"pools" yaml:"pools"`

	// Spawn holds selection defaults
	Spawn SpawnConfig `mapstructure:"spawn" yaml:"spawn"`

	// Groups are the named spawn point sets
	Groups []GroupConfig `mapstructure:"groups" yaml:"groups"`

	// Metrics configures the Prometheus collector
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Tracing configures OpenTelemetry
	Tracing observability.Config `mapstructure:"tracing" yaml:"tracing"`
}

// SpawnConfig contains spawn selection settings.
type SpawnConfig struct {
	// DefaultPolicy is used by groups that do not set their own
	DefaultPolicy spawn.Policy `mapstructure:"default_policy" yaml:"default_policy"`
	// Seed makes random selection reproducible (0 = random seed)
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// Reference is the initial reference position
	Reference geom.Vec3 `mapstructure:"reference" yaml:"reference"`
}

// GroupConfig declares a named set of spawn points.
type GroupConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Pool is the pool this group spawns from
	Pool string `mapstructure:"pool" yaml:"pool,omitempty"`
	// Policy overrides the default policy when set
	Policy *spawn.Policy `mapstructure:"policy" yaml:"policy,omitempty"`
	// Spread scatters spawns up to this far from the chosen point on each axis
	Spread geom.Vec3     `mapstructure:"spread" yaml:"spread,omitempty"`
	Points []PointConfig `mapstructure:"points" yaml:"points"`
}

// PointConfig declares one spawn point.
type PointConfig struct {
	Name         string    `mapstructure:"name" yaml:"name"`
	Position     geom.Vec3 `mapstructure:"position" yaml:"position"`
	SafeDistance float64   `mapstructure:"safe_distance" yaml:"safe_distance"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	// Listen is the address /metrics is served on; empty disables serving
	Listen string `mapstructure:"listen" yaml:"listen,omitempty"`
}

// Default returns a Config with sensible defaults and no pools.
func Default() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Spawn: SpawnConfig{
			DefaultPolicy: spawn.Farthest,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: metrics.DefaultNamespace,
		},
		Tracing: observability.DefaultConfig(),
	}
}

// PolicyFor returns the policy group g selects with.
func (c *Config) PolicyFor(g GroupConfig) spawn.Policy {
	if g.Policy != nil {
		return *g.Policy
	}
	return c.Spawn.DefaultPolicy
}

// Validate checks every section and reports all problems at once.
//
// Returns an error of type ErrorTypeValidation if validation fails, nil otherwise.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(msg string) *errors.Error {
		e := errors.New(errors.ErrorTypeValidation, msg)
		errs = append(errs, e)
		return e
	}

	pools := make(map[string]bool, len(c.Pools))
	for i, p := range c.Pools {
		if p.ID == "" {
			invalid("pool id is required").WithDetail("index", i)
			continue
		}
		if p.Template == "" {
			invalid("pool template is required").WithDetail("pool", p.ID)
		}
		if p.Size <= 0 {
			invalid("pool size must be positive").WithDetail("pool", p.ID).WithDetail("size", p.Size)
		}
		if pools[p.ID] {
			invalid("duplicate pool id").WithDetail("pool", p.ID)
		}
		pools[p.ID] = true
	}

	if !validPolicy(c.Spawn.DefaultPolicy) {
		invalid("unknown default spawn policy").WithDetail("policy", int(c.Spawn.DefaultPolicy))
	}

	groups := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			invalid("group name is required").WithDetail("index", i)
			continue
		}
		if groups[g.Name] {
			invalid("duplicate group name").WithDetail("group", g.Name)
		}
		groups[g.Name] = true
		if g.Pool != "" && !pools[g.Pool] {
			invalid("group references an undeclared pool").WithDetail("group", g.Name).WithDetail("pool", g.Pool)
		}
		if g.Policy != nil && !validPolicy(*g.Policy) {
			invalid("unknown group spawn policy").WithDetail("group", g.Name)
		}
		for _, p := range g.Points {
			if p.SafeDistance < 0 {
				invalid("safe distance cannot be negative").
					WithDetail("group", g.Name).
					WithDetail("point", p.Name)
			}
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		invalid("metrics namespace is required when metrics are enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		invalid("tracing sampling rate must be between 0 and 1")
	}

	return stderrors.Join(errs...)
}

func validPolicy(p spawn.Policy) bool {
	_, err := p.MarshalText()
	return err == nil
}
