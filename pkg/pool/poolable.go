package pool

// Poolable is the capability every pooled instance must implement.
//
// Acquire is called by the pool when the instance is handed out and must
// tolerate being called on an already acquired instance. Release may be
// called by the instance itself to return to its pool and must be
// idempotent. OnRelease registers the notification the pool uses to learn
// about self-releases; handlers run on every acquired→available transition.
type Poolable interface {
	Acquire()
	Release()
	IsAcquired() bool
	OnRelease(fn func())
}

// Base is an embeddable Poolable. It tracks the acquired flag and an
// active flag standing in for the engine-side enable/disable of a scene
// object. Types embedding Base can wrap Acquire/Release to run their own
// setup and teardown.
type Base struct {
	acquired bool
	active   bool
	handlers []func()
}

// Acquire marks the instance in use and activates it.
func (b *Base) Acquire() {
	if b.acquired {
		return
	}
	b.acquired = true
	b.active = true
}

// Release deactivates the instance and notifies the owning pool.
func (b *Base) Release() {
	if !b.acquired {
		return
	}
	b.acquired = false
	b.active = false
	for _, fn := range b.handlers {
		fn()
	}
}

// IsAcquired reports whether the instance is currently handed out.
func (b *Base) IsAcquired() bool {
	return b.acquired
}

// Active reports whether the instance is enabled.
func (b *Base) Active() bool {
	return b.active
}

// OnRelease registers fn to run after every release.
func (b *Base) OnRelease(fn func()) {
	b.handlers = append(b.handlers, fn)
}

var _ Poolable = (*Base)(nil)
