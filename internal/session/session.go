// Package session assembles a running game session from configuration:
// one pool registry, the spawn groups, a coordinator and the observability
// stack around them.
package session

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/metrics"
	"github.com/ajitpratap0/respawn/pkg/observability"
	"github.com/ajitpratap0/respawn/pkg/pool"
	"github.com/ajitpratap0/respawn/pkg/spawn"
)

// Session owns everything one game session spawns with.
type Session struct {
	id          string
	registry    *pool.Registry
	groups      map[string]*binding
	order       []string
	selector    *spawn.Selector
	reference   *spawn.Reference
	coordinator *spawn.Coordinator
	collector   *metrics.Collector
	gatherer    prometheus.Gatherer
	tracing     *observability.Provider
	logger      *zap.Logger
}

// binding ties a spawn group to the pool and policy it spawns with.
type binding struct {
	group  *spawn.Group
	poolID string
	policy spawn.Policy
	spread geom.Vec3
}

// Option configures New.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	registerer  prometheus.Registerer
	gatherer    prometheus.Gatherer
	traceWriter io.Writer
	clock       spawn.Clock
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPrometheus registers session metrics on reg instead of a private
// registry.
func WithPrometheus(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registerer = reg
		o.gatherer = reg
	}
}

// WithTraceWriter sends exported spans to w.
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) { o.traceWriter = w }
}

// WithClock sets the clock spawn points record usage with.
func WithClock(c spawn.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New builds a session from cfg, resolving pool templates in cat.
//
// A pool or group that cannot be built is skipped and the rest of the
// session still comes up: New then returns the session together with the
// joined errors. Only a failure of the tracing setup returns no session.
func New(ctx context.Context, cfg *config.Config, cat *pool.Catalog, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	if o.registerer == nil {
		reg := prometheus.NewRegistry()
		o.registerer, o.gatherer = reg, reg
	}

	id := uuid.NewString()
	log := o.logger.With(zap.String(string(logger.SessionIDKey), id))

	tracing, err := observability.Setup(ctx, cfg.Tracing, o.traceWriter)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to set up tracing")
	}

	s := &Session{
		id:       id,
		registry: pool.NewRegistry(pool.WithLogger(log)),
		groups:   make(map[string]*binding),
		tracing:  tracing,
		gatherer: o.gatherer,
		logger:   log,
	}

	var errs []error
	for _, pc := range cfg.Pools {
		if err := s.registry.CreatePoolFromCatalog(pc, cat); err != nil {
			errs = append(errs, err)
		}
	}

	selOpts := []spawn.SelectorOption{spawn.WithSelectorLogger(log)}
	if cfg.Spawn.Seed != 0 {
		selOpts = append(selOpts, spawn.WithSeed(cfg.Spawn.Seed))
	}
	s.selector = spawn.NewSelector(selOpts...)
	s.reference = spawn.NewReference(log)
	if cfg.Spawn.Reference != geom.Zero {
		s.reference.Set(cfg.Spawn.Reference)
	}

	var pointOpts []spawn.PointOption
	if o.clock != nil {
		pointOpts = append(pointOpts, spawn.WithClock(o.clock))
	}
	for _, gc := range cfg.Groups {
		if err := s.addGroup(cfg, gc, pointOpts); err != nil {
			errs = append(errs, err)
		}
	}

	coordOpts := []spawn.CoordinatorOption{
		spawn.WithLogger(log),
		spawn.WithTracer(tracing.Tracer()),
		spawn.WithMeter(tracing.Meter()),
	}
	if cfg.Metrics.Enabled {
		s.collector = metrics.NewCollector(cfg.Metrics.Namespace, o.registerer)
		if err := s.collector.WatchAll(s.registry); err != nil {
			errs = append(errs, err)
		}
		coordOpts = append(coordOpts, spawn.WithRecorder(s.collector))
	}
	s.coordinator = spawn.NewCoordinator(s.registry, s.selector, s.reference, coordOpts...)

	log.Info("session started",
		zap.Int("pools", len(s.registry.IDs())),
		zap.Int("groups", len(s.order)),
		zap.Int("errors", len(errs)))

	return s, stderrors.Join(errs...)
}

func (s *Session) addGroup(cfg *config.Config, gc config.GroupConfig, opts []spawn.PointOption) error {
	if _, exists := s.groups[gc.Name]; exists {
		return errors.New(errors.ErrorTypeConflict, "group already exists").WithDetail("group", gc.Name)
	}
	if gc.Pool != "" && !s.registry.HasPool(gc.Pool) {
		s.logger.Warn("group pool is not available, group skipped",
			zap.String("group", gc.Name),
			zap.String("pool", gc.Pool))
		return errors.Wrap(errors.ErrUnknownPool, errors.ErrorTypeNotFound, "group pool is not available").
			WithDetail("group", gc.Name).
			WithDetail("pool", gc.Pool)
	}

	g := spawn.NewGroup(gc.Name)
	for _, pc := range gc.Points {
		g.Add(spawn.NewPoint(pc.Name, pc.Position, pc.SafeDistance, opts...))
	}
	s.groups[gc.Name] = &binding{group: g, poolID: gc.Pool, policy: cfg.PolicyFor(gc), spread: gc.Spread}
	s.order = append(s.order, gc.Name)
	return nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Registry returns the session's pool registry.
func (s *Session) Registry() *pool.Registry { return s.registry }

// Coordinator returns the session's spawn coordinator.
func (s *Session) Coordinator() *spawn.Coordinator { return s.coordinator }

// Reference returns the tracked reference position.
func (s *Session) Reference() *spawn.Reference { return s.reference }

// Selector returns the session's spawn point selector.
func (s *Session) Selector() *spawn.Selector { return s.selector }

// Metrics returns the Prometheus collector, or nil when metrics are
// disabled.
func (s *Session) Metrics() *metrics.Collector { return s.collector }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Gatherer returns the Prometheus registry session metrics live in.
func (s *Session) Gatherer() prometheus.Gatherer { return s.gatherer }

// Tracing returns the OpenTelemetry provider.
func (s *Session) Tracing() *observability.Provider { return s.tracing }

// GroupNames returns the group names in configuration order.
func (s *Session) GroupNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Group returns the named spawn group.
func (s *Session) Group(name string) (*spawn.Group, bool) {
	b, ok := s.groups[name]
	if !ok {
		return nil, false
	}
	return b.group, true
}

// GroupPool returns the pool the named group spawns from.
func (s *Session) GroupPool(name string) (string, bool) {
	b, ok := s.groups[name]
	if !ok {
		return "", false
	}
	return b.poolID, true
}

// Context returns ctx carrying the session id for logger.WithContext.
func (s *Session) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, logger.SessionIDKey, s.id)
}

// SpawnInGroup spawns one instance of the group's pool at a point the
// group's policy selects. Groups with the manual policy cannot be used here.
func (s *Session) SpawnInGroup(ctx context.Context, name string) (pool.Handle, bool) {
	b, ok := s.groups[name]
	if !ok {
		s.logger.Warn("spawn group not found", zap.String("group", name))
		return nil, false
	}
	if b.poolID == "" {
		s.logger.Warn("spawn group has no pool", zap.String("group", name))
		return nil, false
	}
	return s.coordinator.Spawn(ctx, b.poolID, spawn.FromSource(b.group, b.policy).WithSpread(b.spread))
}

// ClearUse resets the usage counters of every group.
func (s *Session) ClearUse() {
	for _, name := range s.order {
		s.groups[name].group.ClearUse()
	}
}

// Close releases every pooled instance and flushes telemetry.
func (s *Session) Close(ctx context.Context) error {
	s.registry.ReleaseAll()
	if s.collector != nil {
		s.collector.Unwatch(s.registry)
	}
	err := s.tracing.Shutdown(ctx)
	s.logger.Info("session closed")
	return err
}
