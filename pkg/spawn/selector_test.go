package spawn_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/spawn"
	"github.com/ajitpratap0/respawn/pkg/testutil"
)

func newSelector(t *testing.T) *spawn.Selector {
	return spawn.NewSelector(spawn.WithSeed(42), spawn.WithSelectorLogger(testutil.TestLogger(t)))
}

// pointsOnXAxis places one point per distance along +X from the origin.
func pointsOnXAxis(safe float64, distances ...float64) []*spawn.Point {
	out := make([]*spawn.Point, len(distances))
	for i, d := range distances {
		out[i] = spawn.NewPoint(string(rune('a'+i)), geom.V(d, 0, 0), safe)
	}
	return out
}

func TestSafeDistanceExclusion(t *testing.T) {
	sel := newSelector(t)
	points := pointsOnXAxis(3, 1, 5, 10)

	for i := 0; i < 10; i++ {
		p, err := sel.Pick(points, geom.Zero, spawn.Closest)
		require.NoError(t, err)
		assert.Equal(t, 5.0, p.DistanceTo(geom.Zero))
	}

	p, err := sel.Pick(points, geom.Zero, spawn.Farthest)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.DistanceTo(geom.Zero))

	for i := 0; i < 50; i++ {
		p, err := sel.Pick(points, geom.Zero, spawn.Random)
		require.NoError(t, err)
		assert.NotEqual(t, "a", p.Name())
	}
}

func TestSafeDistanceBoundaryIsEligible(t *testing.T) {
	p := spawn.NewPoint("edge", geom.V(3, 0, 0), 3)
	assert.True(t, p.IsOutsideSafeDistance(geom.Zero))
	assert.False(t, p.IsOutsideSafeDistance(geom.V(0.5, 0, 0)))
}

func TestFarthestTieBreakPrefersLeastUsed(t *testing.T) {
	sel := newSelector(t)
	used := spawn.NewPoint("used", geom.V(10, 0, 0), 0)
	fresh := spawn.NewPoint("fresh", geom.V(-10, 0, 0), 0)
	used.MarkUse()
	used.MarkUse()

	p, err := sel.Pick([]*spawn.Point{used, fresh}, geom.Zero, spawn.Farthest)
	require.NoError(t, err)
	assert.Same(t, fresh, p)
}

func TestTieBreakByLastTimeUsedThenOrder(t *testing.T) {
	sel := newSelector(t)
	clock := testutil.NewManualClock()
	a := spawn.NewPoint("a", geom.V(0, 4, 0), 0, spawn.WithClock(clock))
	b := spawn.NewPoint("b", geom.V(0, -4, 0), 0, spawn.WithClock(clock))
	c := spawn.NewPoint("c", geom.V(4, 0, 0), 0, spawn.WithClock(clock))

	p, err := sel.Pick([]*spawn.Point{a, b, c}, geom.Zero, spawn.Closest)
	require.NoError(t, err)
	assert.Same(t, a, p, "all equal: first listed wins")

	a.MarkUse()
	clock.Advance(time.Second)
	b.MarkUse()
	clock.Advance(time.Second)
	c.MarkUse()

	p, err = sel.Pick([]*spawn.Point{c, b, a}, geom.Zero, spawn.Closest)
	require.NoError(t, err)
	assert.Same(t, a, p, "equal use counts: least recently used wins")
}

func TestSelectCyclesThroughEquidistantPoints(t *testing.T) {
	sel := newSelector(t)
	clock := testutil.NewManualClock()
	points := []*spawn.Point{
		spawn.NewPoint("north", geom.V(0, 0, 8), 2, spawn.WithClock(clock)),
		spawn.NewPoint("south", geom.V(0, 0, -8), 2, spawn.WithClock(clock)),
		spawn.NewPoint("east", geom.V(8, 0, 0), 2, spawn.WithClock(clock)),
	}

	var names []string
	for i := 0; i < 6; i++ {
		clock.Advance(time.Millisecond)
		p, err := sel.Select(points, geom.Zero, spawn.Farthest)
		require.NoError(t, err)
		names = append(names, p.Name())
	}

	assert.Equal(t, []string{"north", "south", "east", "north", "south", "east"}, names)
	for _, p := range points {
		assert.Equal(t, 2, p.TimesUsed())
	}
}

func TestPickDoesNotMarkUse(t *testing.T) {
	sel := newSelector(t)
	points := pointsOnXAxis(0, 1, 2)

	p, err := sel.Pick(points, geom.Zero, spawn.Closest)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TimesUsed())
	assert.True(t, p.LastTimeUsed().IsZero())

	p, err = sel.Select(points, geom.Zero, spawn.Closest)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TimesUsed())
	assert.False(t, p.LastTimeUsed().IsZero())
}

func TestNoValidSpawnPoint(t *testing.T) {
	sel := newSelector(t)

	tests := []struct {
		name   string
		points []*spawn.Point
	}{
		{"empty", nil},
		{"all too close", pointsOnXAxis(20, 1, 5, 10)},
		{"only nil", []*spawn.Point{nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, policy := range []spawn.Policy{spawn.Closest, spawn.Farthest, spawn.Random} {
				p, err := sel.Select(tt.points, geom.Zero, policy)
				assert.Nil(t, p)
				assert.ErrorIs(t, err, errors.ErrNoSpawnPoint)
			}
		})
	}
}

func TestManualPolicyIsRejected(t *testing.T) {
	sel := newSelector(t)
	p, err := sel.Select(pointsOnXAxis(0, 1), geom.Zero, spawn.Manual)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, errors.ErrManualPolicy)

	_, err = sel.Select(pointsOnXAxis(0, 1), geom.Zero, spawn.Policy(99))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRandomIsReproducibleWithSeed(t *testing.T) {
	points := pointsOnXAxis(0, 1, 2, 3, 4, 5, 6)
	run := func() []string {
		sel := spawn.NewSelector(spawn.WithSeed(7))
		var names []string
		for i := 0; i < 20; i++ {
			p, err := sel.Pick(points, geom.Zero, spawn.Random)
			require.NoError(t, err)
			names = append(names, p.Name())
		}
		return names
	}

	assert.Equal(t, run(), run())
}

func TestPolicyText(t *testing.T) {
	for _, p := range []spawn.Policy{spawn.Manual, spawn.Farthest, spawn.Closest, spawn.Random} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var back spawn.Policy
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}

	p, err := spawn.ParsePolicy(" Farthest ")
	require.NoError(t, err)
	assert.Equal(t, spawn.Farthest, p)

	_, err = spawn.ParsePolicy("nearest")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, "unknown", spawn.Policy(-1).String())
}

func TestGroup(t *testing.T) {
	sel := newSelector(t)
	g := spawn.NewGroup("arena", pointsOnXAxis(0, 2, 4)...)
	g.Add(nil)

	assert.Equal(t, "arena", g.Name())
	assert.Equal(t, 2, g.Total())

	p, err := g.Select(sel, geom.Zero, spawn.Farthest)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name())
	assert.Equal(t, 1, p.TimesUsed())

	g.ClearUse()
	for _, p := range g.Points() {
		assert.Equal(t, 0, p.TimesUsed())
	}

	got, ok := g.Point("a")
	require.True(t, ok)
	assert.Equal(t, geom.V(2, 0, 0), got.Position())
	_, ok = g.Point("z")
	assert.False(t, ok)
}

func TestNegativeSafeDistanceIsClamped(t *testing.T) {
	p := spawn.NewPoint("p", geom.Zero, -4)
	assert.Equal(t, 0.0, p.SafeDistance())
	assert.True(t, p.IsOutsideSafeDistance(geom.Zero))
}

func TestJitterStaysWithinExtent(t *testing.T) {
	sel := newSelector(t)
	extent := geom.V(1, -2, 0)

	for i := 0; i < 100; i++ {
		off := sel.Jitter(extent)
		assert.LessOrEqual(t, math.Abs(off.X), 1.0)
		assert.LessOrEqual(t, math.Abs(off.Y), 2.0)
		assert.Equal(t, 0.0, off.Z)
	}
	assert.Equal(t, geom.Zero, sel.Jitter(geom.Zero))
}
