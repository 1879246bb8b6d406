// Package testutil provides testing utilities for respawn
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// NewRegistry returns an empty registry logging to the test output.
func NewRegistry(t *testing.T) *pool.Registry {
	return pool.NewRegistry(pool.WithLogger(TestLogger(t)))
}

// Prop is a pooled fixture with a position, standing in for a scene object.
type Prop struct {
	pool.Base
	Serial   int
	Position geom.Vec3
	Resets   int
}

// SetPosition places the prop.
func (p *Prop) SetPosition(v geom.Vec3) {
	p.Position = v
}

// Release resets the prop before returning it to its pool.
func (p *Prop) Release() {
	if !p.IsAcquired() {
		return
	}
	p.Resets++
	p.Position = geom.Zero
	p.Base.Release()
}

// PropTemplate returns a template producing Props numbered from 0.
func PropTemplate(name string) *pool.TemplateFunc[*Prop] {
	return pool.NewTemplate(name, func(i int) (*Prop, error) {
		return &Prop{Serial: i}, nil
	})
}

// FailingTemplate returns a template whose instance at index failAt errors.
func FailingTemplate(name string, failAt int) *pool.TemplateFunc[*Prop] {
	return pool.NewTemplate(name, func(i int) (*Prop, error) {
		if i == failAt {
			return nil, fmt.Errorf("instance %d failed to load", i)
		}
		return &Prop{Serial: i}, nil
	})
}

// MustCreatePool creates a Prop pool or fails the test.
func MustCreatePool(t *testing.T, reg *pool.Registry, id string, size int) *pool.Pool[*Prop] {
	t.Helper()
	p, err := pool.CreatePool[*Prop](reg, id, PropTemplate(id), size)
	RequireNoError(t, err, "create pool "+id)
	return p
}

// EventRecorder collects pool events for assertions.
type EventRecorder struct {
	Events []pool.Event
}

// Listener returns the function to subscribe.
func (r *EventRecorder) Listener() pool.Listener {
	return func(ev pool.Event) {
		r.Events = append(r.Events, ev)
	}
}

// Names returns the entry names of the recorded events in order.
func (r *EventRecorder) Names() []string {
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Entry.Name()
	}
	return out
}

// ManualClock is a clock that only moves when told to.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a clock stopped at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// RequireNoError fails the test immediately if err is not nil.
// The msg parameter provides additional context in the failure message.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}
