package spawn

import (
	"time"

	"github.com/ajitpratap0/respawn/pkg/geom"
)

// Clock supplies the time recorded by MarkUse.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Point is a candidate location for placing a freshly fetched instance.
// It remembers how often and how recently it was used so selection can
// spread spawns across a group.
type Point struct {
	name         string
	position     geom.Vec3
	safeDistance float64
	timesUsed    int
	lastTimeUsed time.Time
	clock        Clock
}

// PointOption configures a Point.
type PointOption func(*Point)

// WithClock sets the clock used by MarkUse.
func WithClock(c Clock) PointOption {
	return func(p *Point) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewPoint returns an unused point. A negative safe distance is treated as 0.
func NewPoint(name string, pos geom.Vec3, safeDistance float64, opts ...PointOption) *Point {
	if safeDistance < 0 {
		safeDistance = 0
	}
	p := &Point{
		name:         name,
		position:     pos,
		safeDistance: safeDistance,
		clock:        systemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the point name.
func (p *Point) Name() string { return p.name }

// Position returns where instances are placed.
func (p *Point) Position() geom.Vec3 { return p.position }

// SetPosition moves the point.
func (p *Point) SetPosition(v geom.Vec3) { p.position = v }

// SafeDistance returns the minimum distance the reference must keep.
func (p *Point) SafeDistance() float64 { return p.safeDistance }

// TimesUsed returns the usage count since the last ClearUse.
func (p *Point) TimesUsed() int { return p.timesUsed }

// LastTimeUsed returns when MarkUse was last called, or the zero time.
func (p *Point) LastTimeUsed() time.Time { return p.lastTimeUsed }

// DistanceTo returns the distance from the point to ref. It is computed on
// every call because the reference moves.
func (p *Point) DistanceTo(ref geom.Vec3) float64 {
	return geom.Distance(p.position, ref)
}

// IsOutsideSafeDistance reports whether ref is at least SafeDistance away.
func (p *Point) IsOutsideSafeDistance(ref geom.Vec3) bool {
	return p.DistanceTo(ref) >= p.safeDistance
}

// MarkUse records a spawn at this point.
func (p *Point) MarkUse() {
	p.lastTimeUsed = p.clock.Now()
	p.timesUsed++
}

// ClearUse resets the usage count. LastTimeUsed is kept so recency still
// breaks ties after a reset.
func (p *Point) ClearUse() {
	p.timesUsed = 0
}
