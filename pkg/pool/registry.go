package pool

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
)

// UnknownPool is what TotalAcquired returns for an id with no pool, so
// callers can tell "no such pool" apart from "nothing acquired".
const UnknownPool = -1

// Config declares one pool. It is the unit configuration files list.
type Config struct {
	ID       string `mapstructure:"id" yaml:"id"`
	Template string `mapstructure:"template" yaml:"template"`
	Size     int    `mapstructure:"size" yaml:"size"`
}

// managed is the type-erased pool surface the registry works with.
type managed interface {
	ID() string
	Capacity() int
	HasAvailable() bool
	TotalAcquired() int
	ReleaseAll()
	Subscribe(EventType, Listener) (Subscription, bool)
	Unsubscribe(EventType, Subscription) bool
	Stats() Stats
	fetchHandle() (Handle, bool)
	handles() []Handle
	sample() Poolable
}

// Registry maps ids to pools. It is the entry point other subsystems use to
// create pools, fetch entries and follow pool events. A game session owns
// exactly one Registry and passes it to whatever needs it.
//
// Query operations never fail on unknown ids: they report false, nil or
// UnknownPool. Like Pool, Registry does no locking.
type Registry struct {
	pools  map[string]managed
	order  []string
	logger *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	s := applyOptions(opts)
	return &Registry{
		pools:  make(map[string]managed),
		logger: s.logger,
	}
}

// CreatePool builds a pool from tmpl and registers it under id (or the
// template name when id is empty). A duplicate id is rejected and the
// existing pool is left untouched.
func CreatePool[T Poolable](r *Registry, id string, tmpl Template[T], size int) (*Pool[T], error) {
	if id == "" && tmpl != nil {
		id = tmpl.Name()
	}
	if _, exists := r.pools[id]; exists {
		r.logger.Warn("pool already exists, keeping the original", zap.String("pool", id))
		return nil, errors.Wrap(errors.ErrDuplicatePool, errors.ErrorTypeConflict, "pool not created").WithDetail("pool", id)
	}

	p, err := NewPool(id, tmpl, size, WithLogger(r.logger))
	if err != nil {
		r.logger.Warn("pool misconfigured, not created", zap.String("pool", id), zap.Error(err))
		return nil, err
	}

	r.pools[p.ID()] = p
	r.order = append(r.order, p.ID())
	r.logger.Info("pool created",
		zap.String("pool", p.ID()),
		zap.String("template", p.Template()),
		zap.Int("size", p.Capacity()))

	return p, nil
}

// CreatePoolFromCatalog builds the pool cfg declares, resolving its
// template by name. Products of the factory are checked for the Poolable
// capability at construction time.
func (r *Registry) CreatePoolFromCatalog(cfg Config, cat *Catalog) error {
	if cat == nil {
		return errors.New(errors.ErrorTypeConfig, "no template catalog").WithDetail("pool", cfg.ID)
	}
	factory, ok := cat.Lookup(cfg.Template)
	if !ok {
		r.logger.Warn("template not found in catalog",
			zap.String("pool", cfg.ID),
			zap.String("template", cfg.Template))
		return errors.Wrap(errors.ErrUnknownTemplate, errors.ErrorTypeConfig, "pool not created").
			WithDetail("pool", cfg.ID).
			WithDetail("template", cfg.Template)
	}

	size := cfg.Size
	if size == 0 {
		size = DefaultSize
	}

	_, err := CreatePool[Poolable](r, cfg.ID, catalogTemplate{name: cfg.Template, factory: factory}, size)
	return err
}

// Lookup returns the typed pool registered under id. It fails when the id is
// unknown or the pool holds a different instance type.
func Lookup[T Poolable](r *Registry, id string) (*Pool[T], bool) {
	m, ok := r.pools[id]
	if !ok {
		return nil, false
	}
	p, ok := m.(*Pool[T])
	return p, ok
}

// Fetch is FetchAvailable for a typed pool.
func Fetch[T Poolable](r *Registry, id string) (*Entry[T], bool) {
	p, ok := Lookup[T](r, id)
	if !ok {
		return nil, false
	}
	return p.FetchAvailable()
}

// FetchAs fetches from any pool and returns the instance as T. When the
// pool's instances are not a T nothing is acquired.
func FetchAs[T any](r *Registry, id string) (T, Handle, bool) {
	var zero T
	m, ok := r.pools[id]
	if !ok {
		return zero, nil, false
	}
	if _, ok := m.sample().(T); !ok {
		r.logger.Warn("pool instances do not have the requested type", zap.String("pool", id))
		return zero, nil, false
	}
	h, ok := m.fetchHandle()
	if !ok {
		return zero, nil, false
	}
	return h.Object().(T), h, true
}

// HasPool reports whether id is registered.
func (r *Registry) HasPool(id string) bool {
	_, ok := r.pools[id]
	return ok
}

// HasAvailable reports whether the pool has an entry to hand out. Unknown
// ids report false.
func (r *Registry) HasAvailable(id string) bool {
	m, ok := r.pools[id]
	if !ok {
		return false
	}
	return m.HasAvailable()
}

// FetchAvailable hands out an entry of pool id. An unknown id and an
// exhausted pool both report false: either way there is nothing to hand out.
func (r *Registry) FetchAvailable(id string) (Handle, bool) {
	m, ok := r.pools[id]
	if !ok {
		r.logger.Debug("fetch from unknown pool", zap.String("pool", id))
		return nil, false
	}
	return m.fetchHandle()
}

// TotalAcquired returns the number of acquired entries, or UnknownPool.
func (r *Registry) TotalAcquired(id string) int {
	m, ok := r.pools[id]
	if !ok {
		r.logger.Warn("pool not found", zap.String("pool", id))
		return UnknownPool
	}
	return m.TotalAcquired()
}

// Capacity returns the size of pool id, or UnknownPool.
func (r *Registry) Capacity(id string) int {
	m, ok := r.pools[id]
	if !ok {
		return UnknownPool
	}
	return m.Capacity()
}

// AddListener subscribes fn to the given event stream of pool id.
func (r *Registry) AddListener(id string, t EventType, fn Listener) (Subscription, bool) {
	m, ok := r.pools[id]
	if !ok {
		r.logger.Warn("pool not found, listener not added",
			zap.String("pool", id),
			zap.Stringer("event", t))
		return 0, false
	}
	sub, ok := m.Subscribe(t, fn)
	if !ok {
		r.logger.Warn("invalid listener", zap.String("pool", id), zap.Stringer("event", t))
	}
	return sub, ok
}

// RemoveListener removes a subscription made with AddListener.
func (r *Registry) RemoveListener(id string, t EventType, sub Subscription) bool {
	m, ok := r.pools[id]
	if !ok {
		r.logger.Warn("pool not found, listener not removed",
			zap.String("pool", id),
			zap.Stringer("event", t))
		return false
	}
	return m.Unsubscribe(t, sub)
}

// ReleaseAll releases every acquired entry of every pool, in creation order.
func (r *Registry) ReleaseAll() {
	for _, id := range r.order {
		r.pools[id].ReleaseAll()
	}
}

// GetEntries returns every entry of pool id in creation order.
func (r *Registry) GetEntries(id string) []Handle {
	m, ok := r.pools[id]
	if !ok {
		r.logger.Warn("pool not found", zap.String("pool", id))
		return nil
	}
	return m.handles()
}

// IDs returns the registered pool ids in creation order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Stats returns the stats of every pool in creation order.
func (r *Registry) Stats() []Stats {
	out := make([]Stats, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pools[id].Stats())
	}
	return out
}
