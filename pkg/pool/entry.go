package pool

// Handle is the untyped view of an entry that the registry hands out.
type Handle interface {
	PoolID() string
	Index() int
	Name() string
	Acquired() bool
	Object() Poolable
	Release()
}

// Entry wraps one pooled instance. The acquired flag lives here rather than
// being read back from the instance, so a misbehaving instance can never
// put the same entry in the available queue twice.
type Entry[T Poolable] struct {
	pool     *Pool[T]
	index    int
	name     string
	instance T
	acquired bool
}

// Instance returns the pooled object.
func (e *Entry[T]) Instance() T { return e.instance }

// Object returns the pooled object as a Poolable.
func (e *Entry[T]) Object() Poolable { return e.instance }

// PoolID returns the id of the owning pool.
func (e *Entry[T]) PoolID() string { return e.pool.id }

// Index returns the creation index, stable for the pool's lifetime.
func (e *Entry[T]) Index() int { return e.index }

// Name returns "<template>_<index>".
func (e *Entry[T]) Name() string { return e.name }

// Acquired reports whether the entry is handed out.
func (e *Entry[T]) Acquired() bool { return e.acquired }

// Release returns the entry to its pool. Releasing an available entry is a no-op.
func (e *Entry[T]) Release() {
	if !e.acquired {
		return
	}
	// The instance normally notifies the pool itself, and a release
	// listener may already have fetched this entry again by the time
	// Release returns. Reclaim only for instances that never notified.
	before := e.pool.releases
	e.instance.Release()
	if e.pool.releases == before {
		e.pool.reclaim(e)
	}
}

var _ Handle = (*Entry[Poolable])(nil)
