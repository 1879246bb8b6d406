// Package pool keeps fixed-size sets of pre-instantiated game objects and
// hands them out on demand, so spawning never allocates once a level is
// loaded.
//
// Architecture
//
// Core Types:
//
//   - Poolable: the capability every pooled instance implements
//   - Base: an embeddable Poolable for plain structs
//   - Template[T]: builds the instances of one pool
//   - Pool[T]: the fixed-capacity set of entries and its FIFO available queue
//   - Entry[T] / Handle: one pooled instance plus its acquired flag
//   - Registry: id → pool mapping with acquire/release event listeners
//   - Catalog: name → factory mapping for pools declared in configuration
//
// Lifecycle
//
// Pools are created in bulk and never grow. Every entry is either available
// (waiting in the queue) or acquired (handed out); at all times
//
//	Available() + TotalAcquired() == Capacity()
//
// FetchAvailable dequeues the head of the queue, marks the entry acquired
// and calls the instance's Acquire. An entry comes back when Entry.Release
// is called or when the instance releases itself; either path is
// idempotent, so a double release never enqueues the entry twice.
//
// Usage Patterns
//
// Typed pools:
//
//	reg := pool.NewRegistry()
//	tmpl := pool.NewTemplate("Enemy", func(i int) (*Enemy, error) {
//		return &Enemy{}, nil
//	})
//	if _, err := pool.CreatePool[*Enemy](reg, "Enemy", tmpl, 5); err != nil {
//		return err
//	}
//
//	entry, ok := pool.Fetch[*Enemy](reg, "Enemy")
//	if !ok {
//		return // exhausted
//	}
//	entry.Instance().Health = 100
//	defer entry.Release()
//
// Pools declared by name:
//
//	cat := pool.NewCatalog()
//	_ = cat.Register("Coin", func(int) (any, error) { return &Coin{}, nil })
//	err := reg.CreatePoolFromCatalog(pool.Config{ID: "Coin", Template: "Coin", Size: 20}, cat)
//
// Events
//
// AddListener subscribes to the acquire or release stream of one pool and
// returns a Subscription for RemoveListener. Listeners run synchronously
// in the order they were added.
//
// Thread Safety
//
// Pools and the registry belong to the simulation loop and do no locking.
// Callers that touch them from several goroutines must serialize access.
//
// Error Handling
//
// Construction errors are *errors.Error values of type ErrorTypeConfig or
// ErrorTypeConflict. Runtime queries never fail on an unknown id; they
// report false, nil or UnknownPool and log a warning.
package pool
