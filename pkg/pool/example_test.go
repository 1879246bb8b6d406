// Package pool provides example usage of pools and the registry.
package pool_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/pool"
)

// Bullet is a minimal pooled object.
type Bullet struct {
	pool.Base
	Damage int
}

func bulletTemplate() *pool.TemplateFunc[*Bullet] {
	return pool.NewTemplate("Bullet", func(int) (*Bullet, error) {
		return &Bullet{Damage: 10}, nil
	})
}

// Example demonstrates creating a pool and cycling an entry through it.
func Example() {
	reg := pool.NewRegistry(pool.WithLogger(zap.NewNop()))

	if _, err := pool.CreatePool[*Bullet](reg, "Bullet", bulletTemplate(), 3); err != nil {
		fmt.Println(err)
		return
	}

	entry, ok := pool.Fetch[*Bullet](reg, "Bullet")
	if !ok {
		return
	}
	fmt.Println(entry.Name(), reg.TotalAcquired("Bullet"))

	// The bullet returns itself when it hits something
	entry.Instance().Release()
	fmt.Println(reg.TotalAcquired("Bullet"))

	// Output:
	// Bullet_0 1
	// 0
}

// ExampleRegistry_AddListener shows how to follow pool occupancy.
func ExampleRegistry_AddListener() {
	reg := pool.NewRegistry(pool.WithLogger(zap.NewNop()))
	_, _ = pool.CreatePool[*Bullet](reg, "Bullet", bulletTemplate(), 2)

	sub, _ := reg.AddListener("Bullet", pool.EventAcquire, func(ev pool.Event) {
		fmt.Printf("%s %d/%d\n", ev.Entry.Name(), ev.Acquired, ev.Capacity)
	})

	reg.FetchAvailable("Bullet")
	reg.FetchAvailable("Bullet")
	reg.RemoveListener("Bullet", pool.EventAcquire, sub)
	reg.ReleaseAll()
	reg.FetchAvailable("Bullet")

	// Output:
	// Bullet_0 1/2
	// Bullet_1 2/2
}

// ExampleRegistry_CreatePoolFromCatalog demonstrates pools declared by name.
func ExampleRegistry_CreatePoolFromCatalog() {
	reg := pool.NewRegistry(pool.WithLogger(zap.NewNop()))
	cat := pool.NewCatalog()
	_ = pool.RegisterTemplate[*Bullet](cat, bulletTemplate())
	_ = cat.Register("Decal", func(int) (any, error) { return "not poolable", nil })

	fmt.Println(reg.CreatePoolFromCatalog(pool.Config{ID: "Bullet", Template: "Bullet"}, cat))
	fmt.Println(reg.Capacity("Bullet"))

	err := reg.CreatePoolFromCatalog(pool.Config{ID: "Decal", Template: "Decal", Size: 4}, cat)
	fmt.Println(err != nil, reg.HasPool("Decal"))

	bullet, _, ok := pool.FetchAs[*Bullet](reg, "Bullet")
	fmt.Println(ok, bullet.Damage)

	// Output:
	// <nil>
	// 10
	// true false
	// true 10
}
