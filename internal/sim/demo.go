package sim

import (
	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/pool"
	"github.com/ajitpratap0/respawn/pkg/spawn"
)

// Body is the placeable part shared by the demo objects.
type Body struct {
	pool.Base
	Position geom.Vec3 `json:"position"`
}

// SetPosition places the object.
func (b *Body) SetPosition(v geom.Vec3) { b.Position = v }

// Enemy is a demo opponent. Its health is restored on release.
type Enemy struct {
	Body
	Health int `json:"health"`
}

// Release restores the enemy's health before returning it.
func (e *Enemy) Release() {
	if !e.IsAcquired() {
		return
	}
	e.Health = MaxHealth
	e.Position = geom.Zero
	e.Body.Release()
}

// Coin is a demo pickup.
type Coin struct {
	Body
	Value int `json:"value"`
}

// MaxHealth is the health of a fresh Enemy.
const MaxHealth = 100

// DemoCatalog returns a catalog with the Enemy and Coin templates.
func DemoCatalog() *pool.Catalog {
	cat := pool.NewCatalog()
	// Registration into a fresh catalog cannot conflict.
	_ = pool.RegisterTemplate[*Enemy](cat, pool.NewTemplate("Enemy", func(int) (*Enemy, error) {
		return &Enemy{Health: MaxHealth}, nil
	}))
	_ = pool.RegisterTemplate[*Coin](cat, pool.NewTemplate("Coin", func(i int) (*Coin, error) {
		return &Coin{Value: 1 + i%5}, nil
	}))
	return cat
}

var (
	_ spawn.Placeable = (*Enemy)(nil)
	_ spawn.Placeable = (*Coin)(nil)
)

// DemoConfig returns a session configuration for DemoCatalog: an arena of
// enemy spawn points around the origin and a vault of coins.
func DemoConfig() *config.Config {
	random := spawn.Random
	cfg := config.Default()
	cfg.Pools = []pool.Config{
		{ID: "Enemy", Template: "Enemy", Size: 20},
		{ID: "Coin", Template: "Coin", Size: 50},
	}
	cfg.Spawn.Seed = 42
	cfg.Groups = []config.GroupConfig{
		{
			Name: "arena",
			Pool: "Enemy",
			Points: []config.PointConfig{
				{Name: "north", Position: geom.V(0, 0, 20), SafeDistance: 8},
				{Name: "east", Position: geom.V(20, 0, 0), SafeDistance: 8},
				{Name: "south", Position: geom.V(0, 0, -20), SafeDistance: 8},
				{Name: "west", Position: geom.V(-20, 0, 0), SafeDistance: 8},
			},
		},
		{
			Name:   "vault",
			Pool:   "Coin",
			Policy: &random,
			Spread: geom.V(1.5, 0, 1.5),
			Points: []config.PointConfig{
				{Name: "a", Position: geom.V(5, 1, 5)},
				{Name: "b", Position: geom.V(-5, 1, 5)},
				{Name: "c", Position: geom.V(0, 1, -5)},
			},
		},
	}
	return cfg
}
