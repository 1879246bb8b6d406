package spawn

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

// Selector picks spawn points by policy.
//
// Points closer to the reference than their safe distance are never
// eligible. Among equally distant points the one used fewer times wins,
// then the one used longest ago, then the one listed first.
type Selector struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithSeed makes Random selection reproducible.
func WithSeed(seed uint64) SelectorOption {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(l *zap.Logger) SelectorOption {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSelector returns a selector. Without WithSeed, Random is seeded from
// the runtime's random source.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Pick returns the point policy chooses among points, without marking it
// used. It returns an error wrapping ErrNoSpawnPoint when no point is
// outside its safe distance, and ErrManualPolicy for Manual.
func (s *Selector) Pick(points []*Point, ref geom.Vec3, policy Policy) (*Point, error) {
	switch policy {
	case Farthest, Closest, Random:
	case Manual:
		return nil, errors.ErrManualPolicy
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown spawn policy %d", int(policy))
	}

	eligible := make([]*Point, 0, len(points))
	for _, p := range points {
		if p != nil && p.IsOutsideSafeDistance(ref) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		s.logger.Debug("no spawn point outside safe distance",
			zap.Int("candidates", len(points)),
			zap.Stringer("policy", policy),
			zap.Stringer("reference", ref))
		return nil, errors.Wrap(errors.ErrNoSpawnPoint, errors.ErrorTypeNoSpawnPoint, "no spawn point outside safe distance").
			WithDetail("candidates", len(points))
	}

	if policy == Random {
		return eligible[s.rng.IntN(len(eligible))], nil
	}

	best := eligible[0]
	bestDist := best.DistanceTo(ref)
	for _, p := range eligible[1:] {
		d := p.DistanceTo(ref)
		if preferred(policy, p, d, best, bestDist) {
			best, bestDist = p, d
		}
	}
	return best, nil
}

// Select is Pick followed by MarkUse on the chosen point.
func (s *Selector) Select(points []*Point, ref geom.Vec3, policy Policy) (*Point, error) {
	p, err := s.Pick(points, ref, policy)
	if err != nil {
		return nil, err
	}
	p.MarkUse()
	return p, nil
}

// Jitter returns a random offset within [-extent, extent] on each axis,
// drawn from the same source as Random. Axes with a zero extent stay put
// and consume no randomness.
func (s *Selector) Jitter(extent geom.Vec3) geom.Vec3 {
	return geom.V(s.axis(extent.X), s.axis(extent.Y), s.axis(extent.Z))
}

func (s *Selector) axis(r float64) float64 {
	if r == 0 {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * math.Abs(r)
}

// preferred reports whether candidate a beats the current best b. Ties
// keep b, which preserves input order.
func preferred(policy Policy, a *Point, da float64, b *Point, db float64) bool {
	if da != db {
		if policy == Farthest {
			return da > db
		}
		return da < db
	}
	if a.timesUsed != b.timesUsed {
		return a.timesUsed < b.timesUsed
	}
	return a.lastTimeUsed.Before(b.lastTimeUsed)
}
