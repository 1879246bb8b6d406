package pool

import (
	"strconv"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

// DefaultSize is the pool size used when a configuration entry omits it.
const DefaultSize = 10

// containerSuffix names the container every entry of a pool is parented under.
const containerSuffix = "Pool"

// Stats is a point-in-time summary of a pool.
type Stats struct {
	ID        string `json:"id"`
	Template  string `json:"template"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
	Acquired  int    `json:"acquired"`
	Acquires  uint64 `json:"acquires"`
	Releases  uint64 `json:"releases"`
	Misses    uint64 `json:"misses"`
}

// Pool is a fixed-capacity set of pre-instantiated entries.
//
// Entries are created once, in bulk, by NewPool and live as long as the
// pool. Available entries wait in a FIFO queue, so the entry released
// earliest is reused first and activity spreads across the whole set.
// Pool does no locking; see the package documentation.
type Pool[T Poolable] struct {
	id        string
	template  string
	container string
	entries   []*Entry[T]
	available *queue.Queue
	observers observers
	logger    *zap.Logger

	acquires uint64
	releases uint64
	misses   uint64
}

// Option configures a Pool or a Registry.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for warnings and diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// NewPool instantiates size copies of tmpl. An empty id falls back to the
// template name. Construction is all or nothing: if any instance fails, no
// pool is returned and the error is of type ErrorTypeConfig.
func NewPool[T Poolable](id string, tmpl Template[T], size int, opts ...Option) (*Pool[T], error) {
	s := applyOptions(opts)

	if tmpl == nil {
		return nil, errors.Wrap(errors.ErrInvalidTemplate, errors.ErrorTypeConfig, "template is nil").
			WithDetail("pool", id)
	}
	if id == "" {
		id = tmpl.Name()
	}
	if id == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "pool id is empty and template has no name")
	}
	if size <= 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "pool size must be positive").
			WithDetail("pool", id).
			WithDetail("size", size)
	}

	p := &Pool[T]{
		id:        id,
		template:  tmpl.Name(),
		container: id + containerSuffix,
		entries:   make([]*Entry[T], size),
		available: queue.New(),
		logger:    s.logger.With(zap.String("pool", id)),
	}

	for i := 0; i < size; i++ {
		obj, err := tmpl.Instantiate(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to instantiate template").
				WithDetail("pool", id).
				WithDetail("index", i)
		}
		if any(obj) == nil {
			return nil, errors.Wrap(errors.ErrInvalidTemplate, errors.ErrorTypeConfig, "template produced a nil instance").
				WithDetail("pool", id).
				WithDetail("index", i)
		}
		if obj.IsAcquired() {
			obj.Release()
		}

		e := &Entry[T]{
			pool:     p,
			index:    i,
			name:     tmpl.Name() + "_" + strconv.Itoa(i),
			instance: obj,
		}
		obj.OnRelease(func() { p.reclaim(e) })
		p.entries[i] = e
		p.available.Add(e)
	}

	p.logger.Debug("pool created",
		zap.String("template", p.template),
		zap.String("container", p.container),
		zap.Int("size", size))

	return p, nil
}

// ID returns the pool id.
func (p *Pool[T]) ID() string { return p.id }

// Template returns the name of the template the entries were built from.
func (p *Pool[T]) Template() string { return p.template }

// Container returns the name of the container entries are parented under.
func (p *Pool[T]) Container() string { return p.container }

// Capacity returns the fixed number of entries.
func (p *Pool[T]) Capacity() int { return len(p.entries) }

// Available returns how many entries are waiting in the queue.
func (p *Pool[T]) Available() int { return p.available.Length() }

// TotalAcquired returns how many entries are handed out.
func (p *Pool[T]) TotalAcquired() int { return len(p.entries) - p.available.Length() }

// HasAvailable reports whether FetchAvailable would succeed.
func (p *Pool[T]) HasAvailable() bool { return p.available.Length() > 0 }

// FetchAvailable hands out the entry at the head of the available queue.
// It returns false when the pool is exhausted; the pool never grows.
func (p *Pool[T]) FetchAvailable() (*Entry[T], bool) {
	if p.available.Length() == 0 {
		p.misses++
		return nil, false
	}

	e := p.available.Remove().(*Entry[T])
	e.acquired = true
	e.instance.Acquire()
	p.acquires++
	p.emit(EventAcquire, e)

	return e, true
}

// ReleaseAll releases every acquired entry. Available entries are untouched.
func (p *Pool[T]) ReleaseAll() {
	for _, e := range p.entries {
		if e.acquired {
			e.Release()
		}
	}
}

// Entries returns all entries in creation order, whatever their state.
func (p *Pool[T]) Entries() []*Entry[T] {
	out := make([]*Entry[T], len(p.entries))
	copy(out, p.entries)
	return out
}

// Subscribe registers fn for events of type t.
func (p *Pool[T]) Subscribe(t EventType, fn Listener) (Subscription, bool) {
	if !t.valid() || fn == nil {
		return 0, false
	}
	return p.observers.add(t, fn), true
}

// Unsubscribe removes a listener registered with Subscribe.
func (p *Pool[T]) Unsubscribe(t EventType, sub Subscription) bool {
	if !t.valid() {
		return false
	}
	return p.observers.remove(t, sub)
}

// Listeners returns the number of listeners registered for t.
func (p *Pool[T]) Listeners(t EventType) int {
	if !t.valid() {
		return 0
	}
	return p.observers.count(t)
}

// Stats returns the pool's counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		ID:        p.id,
		Template:  p.template,
		Capacity:  p.Capacity(),
		Available: p.Available(),
		Acquired:  p.TotalAcquired(),
		Acquires:  p.acquires,
		Releases:  p.releases,
		Misses:    p.misses,
	}
}

// reclaim moves an acquired entry back to the available queue.
func (p *Pool[T]) reclaim(e *Entry[T]) {
	if !e.acquired {
		return
	}
	e.acquired = false
	p.available.Add(e)
	p.releases++
	p.emit(EventRelease, e)
}

func (p *Pool[T]) emit(t EventType, e *Entry[T]) {
	p.observers.emit(Event{
		Type:     t,
		PoolID:   p.id,
		Capacity: len(p.entries),
		Acquired: p.TotalAcquired(),
		Entry:    e,
	})
}

func (p *Pool[T]) fetchHandle() (Handle, bool) {
	e, ok := p.FetchAvailable()
	if !ok {
		return nil, false
	}
	return e, true
}

func (p *Pool[T]) handles() []Handle {
	out := make([]Handle, len(p.entries))
	for i, e := range p.entries {
		out[i] = e
	}
	return out
}

func (p *Pool[T]) sample() Poolable {
	return p.entries[0].instance
}
