package spawn

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

const instrumentationName = "github.com/ajitpratap0/respawn/pkg/spawn"

// Spawn outcomes reported to the Recorder and on spans.
const (
	StatusOK           = "ok"
	StatusExhausted    = "exhausted"
	StatusUnknownPool  = "unknown_pool"
	StatusNoSpawnPoint = "no_spawn_point"
	StatusNotPlaceable = "not_placeable"
	StatusBadTarget    = "invalid_target"
)

// Placeable is implemented by instances the coordinator can position.
type Placeable interface {
	SetPosition(geom.Vec3)
}

// Recorder receives one observation per spawn attempt.
type Recorder interface {
	ObserveSpawn(poolID, policy, status string)
}

type targetKind int

const (
	targetPosition targetKind = iota
	targetPoint
	targetSource
)

// Target says where a spawned instance goes.
type Target struct {
	kind   targetKind
	pos    geom.Vec3
	point  *Point
	source Source
	policy Policy
	spread geom.Vec3
}

// At places the instance at a fixed position.
func At(pos geom.Vec3) Target {
	return Target{kind: targetPosition, pos: pos, policy: Manual}
}

// Origin places the instance at the world origin.
func Origin() Target {
	return At(geom.Zero)
}

// AtPoint places the instance at a caller-chosen point and marks it used.
func AtPoint(p *Point) Target {
	return Target{kind: targetPoint, point: p, policy: Manual}
}

// FromSource lets the coordinator's selector choose among src's points.
func FromSource(src Source, policy Policy) Target {
	return Target{kind: targetSource, source: src, policy: policy}
}

// WithSpread returns t with a random per-axis offset of up to extent added
// to the resolved position. The offset comes from the coordinator's
// selector, so a seeded selector spreads reproducibly.
func (t Target) WithSpread(extent geom.Vec3) Target {
	t.spread = extent
	return t
}

// Spread returns the extent set with WithSpread.
func (t Target) Spread() geom.Vec3 { return t.spread }

// Policy returns the selection policy; fixed targets report Manual.
func (t Target) Policy() Policy { return t.policy }

// Coordinator fetches instances from a registry and places them.
type Coordinator struct {
	registry  *pool.Registry
	selector  *Selector
	reference *Reference
	tracer    trace.Tracer
	spawns    metric.Int64Counter
	recorder  Recorder
	logger    *zap.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithTracer sets the tracer spawn spans are started on.
func WithTracer(t trace.Tracer) CoordinatorOption {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMeter registers the spawn counter on m.
func WithMeter(m metric.Meter) CoordinatorOption {
	return func(c *Coordinator) {
		if m == nil {
			return
		}
		counter, err := m.Int64Counter("respawn.spawns",
			metric.WithDescription("Spawn attempts by pool and outcome"),
			metric.WithUnit("{spawn}"))
		if err != nil {
			c.logger.Warn("failed to create spawn counter", zap.Error(err))
			return
		}
		c.spawns = counter
	}
}

// WithRecorder adds a Recorder, such as the Prometheus collector.
func WithRecorder(r Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator returns a coordinator spawning from reg. Distances for
// FromSource targets are measured from ref.
func NewCoordinator(reg *pool.Registry, sel *Selector, ref *Reference, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		registry:  reg,
		selector:  sel,
		reference: ref,
		tracer:    otel.Tracer(instrumentationName),
		spawns:    noop.Int64Counter{},
		logger:    logger.Get(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.selector == nil {
		c.selector = NewSelector(WithSelectorLogger(c.logger))
	}
	if c.reference == nil {
		c.reference = NewReference(c.logger)
	}
	return c
}

// Reference returns the reference position tracker.
func (c *Coordinator) Reference() *Reference { return c.reference }

// Spawn fetches an entry of poolID and places it at target. It reports
// false, without panicking, when no spawn point is eligible, the pool is
// unknown or exhausted, or the instance cannot be placed. A spawn point is
// only marked used once the entry has been fetched.
func (c *Coordinator) Spawn(ctx context.Context, poolID string, target Target) (pool.Handle, bool) {
	policy := target.policy.String()
	ctx, span := c.tracer.Start(ctx, "respawn.spawn",
		trace.WithAttributes(
			attribute.String("respawn.pool", poolID),
			attribute.String("respawn.policy", policy),
		))
	defer span.End()

	pos, point, err := c.resolve(target)
	if err != nil {
		status := StatusBadTarget
		if errors.IsType(err, errors.ErrorTypeNoSpawnPoint) {
			status = StatusNoSpawnPoint
		}
		c.finish(ctx, span, poolID, policy, status, err)
		return nil, false
	}

	h, ok := c.registry.FetchAvailable(poolID)
	if !ok {
		status := StatusExhausted
		err := errors.Wrap(errors.ErrPoolExhausted, errors.ErrorTypeExhausted, "spawn failed")
		if !c.registry.HasPool(poolID) {
			status = StatusUnknownPool
			err = errors.Wrap(errors.ErrUnknownPool, errors.ErrorTypeNotFound, "spawn failed")
		}
		c.logger.Warn("spawn failed, nothing to fetch",
			zap.String("pool", poolID),
			zap.String("status", status))
		c.finish(ctx, span, poolID, policy, status, err.WithDetail("pool", poolID))
		return nil, false
	}

	placeable, ok := h.Object().(Placeable)
	if !ok {
		h.Release()
		c.logger.Error("pooled instance cannot be placed",
			zap.String("pool", poolID),
			zap.String("entry", h.Name()))
		c.finish(ctx, span, poolID, policy, StatusNotPlaceable,
			errors.New(errors.ErrorTypeConfig, "pooled instance does not implement Placeable"))
		return nil, false
	}

	if target.spread != geom.Zero {
		pos = pos.Add(c.selector.Jitter(target.spread))
	}
	placeable.SetPosition(pos)
	if point != nil {
		point.MarkUse()
		span.SetAttributes(attribute.String("respawn.point", point.Name()))
	}
	span.SetAttributes(attribute.String("respawn.entry", h.Name()))
	c.finish(ctx, span, poolID, policy, StatusOK, nil)

	return h, true
}

// TotalSpawned returns the number of live instances of poolID, or
// pool.UnknownPool.
func (c *Coordinator) TotalSpawned(poolID string) int {
	return c.registry.TotalAcquired(poolID)
}

func (c *Coordinator) resolve(t Target) (geom.Vec3, *Point, error) {
	switch t.kind {
	case targetPosition:
		return t.pos, nil, nil
	case targetPoint:
		if t.point == nil {
			return geom.Zero, nil, errors.New(errors.ErrorTypeValidation, "spawn point is nil")
		}
		return t.point.Position(), t.point, nil
	case targetSource:
		if t.source == nil {
			return geom.Zero, nil, errors.New(errors.ErrorTypeValidation, "spawn source is nil")
		}
		p, err := c.selector.Pick(t.source.Points(), c.reference.Position(), t.policy)
		if err != nil {
			return geom.Zero, nil, err
		}
		return p.Position(), p, nil
	default:
		return geom.Zero, nil, errors.New(errors.ErrorTypeValidation, "unknown spawn target")
	}
}

func (c *Coordinator) finish(ctx context.Context, span trace.Span, poolID, policy, status string, err error) {
	span.SetAttributes(attribute.String("respawn.status", status))
	if status == StatusOK {
		span.SetStatus(codes.Ok, "")
	} else {
		if err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, status)
	}

	c.spawns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pool", poolID),
		attribute.String("policy", policy),
		attribute.String("status", status),
	))
	if c.recorder != nil {
		c.recorder.ObserveSpawn(poolID, policy, status)
	}
}
