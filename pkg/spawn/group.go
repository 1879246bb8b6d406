package spawn

import (
	"github.com/ajitpratap0/respawn/pkg/geom"
)

// Source supplies candidate spawn points.
type Source interface {
	Points() []*Point
}

// Group is a named, ordered set of spawn points that waves draw from.
type Group struct {
	name   string
	points []*Point
}

// NewGroup returns a group over points. Nil points are dropped.
func NewGroup(name string, points ...*Point) *Group {
	g := &Group{name: name}
	for _, p := range points {
		g.Add(p)
	}
	return g
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Add appends a point.
func (g *Group) Add(p *Point) {
	if p != nil {
		g.points = append(g.points, p)
	}
}

// Points returns the points in insertion order. The slice is a copy; the
// points are shared.
func (g *Group) Points() []*Point {
	out := make([]*Point, len(g.points))
	copy(out, g.points)
	return out
}

// Total returns the number of points.
func (g *Group) Total() int { return len(g.points) }

// Point returns the point named name.
func (g *Group) Point(name string) (*Point, bool) {
	for _, p := range g.points {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// ClearUse resets the usage count of every point, typically at the start
// of a wave.
func (g *Group) ClearUse() {
	for _, p := range g.points {
		p.ClearUse()
	}
}

// Select picks a point from the group with sel and marks it used.
func (g *Group) Select(sel *Selector, ref geom.Vec3, policy Policy) (*Point, error) {
	return sel.Select(g.points, ref, policy)
}

var _ Source = (*Group)(nil)
