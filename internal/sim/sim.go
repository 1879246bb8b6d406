// Package sim drives a session through deterministic waves of spawns and
// releases, the way a game loop would, and reports what happened.
//
// # Waves
//
// Every wave:
//   - moves the reference position one step along Options.Path
//   - releases the instances whose lifetime ran out
//   - spawns Options.SpawnsPerWave instances in every group
//
// Spawned instances live for Options.Lifetime waves. With a fixed seed the
// same configuration always produces the same report, apart from timings and
// resource usage.
//
// # Usage
//
//	sess, err := session.New(ctx, sim.DemoConfig(), sim.DemoCatalog())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	report, err := sim.NewRunner(sess, sim.DefaultOptions()).Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.WriteJSON(os.Stdout)
package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/internal/session"
	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/metrics"
	"github.com/ajitpratap0/respawn/pkg/observability"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

// Options controls a simulation run.
type Options struct {
	Waves         int       // number of waves to run
	SpawnsPerWave int       // spawn attempts per group per wave
	Lifetime      int       // waves an instance stays out before release
	Start         geom.Vec3 // reference position before the first step
	Path          geom.Vec3 // reference displacement per wave
	ClearUse      bool      // reset point usage at the start of every wave
	Resources     bool      // include a process resource snapshot
}

// DefaultOptions returns the options used by `respawn simulate`.
func DefaultOptions() Options {
	return Options{
		Waves:         10,
		SpawnsPerWave: 3,
		Lifetime:      2,
		Path:          geom.V(1, 0, 0.5),
		Resources:     true,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Waves <= 0:
		return errors.New(errors.ErrorTypeValidation, "waves must be positive").WithDetail("waves", o.Waves)
	case o.SpawnsPerWave < 0:
		return errors.New(errors.ErrorTypeValidation, "spawns per wave must not be negative").WithDetail("spawns", o.SpawnsPerWave)
	case o.Lifetime <= 0:
		return errors.New(errors.ErrorTypeValidation, "lifetime must be positive").WithDetail("lifetime", o.Lifetime)
	}
	return nil
}

// WaveReport summarizes one wave.
type WaveReport struct {
	Wave      int           `json:"wave"`
	Reference geom.Vec3     `json:"reference"`
	Spawned   int           `json:"spawned"`
	Failed    int           `json:"failed"`
	Released  int           `json:"released"`
	Duration  time.Duration `json:"duration_ns"`
}

// PointUsage is how often one spawn point was used.
type PointUsage struct {
	Group     string `json:"group"`
	Point     string `json:"point"`
	TimesUsed int    `json:"times_used"`
}

// Report is the outcome of a run.
type Report struct {
	SessionID string         `json:"session_id"`
	Waves     []WaveReport   `json:"waves"`
	Spawned   int            `json:"spawned"`
	Failed    int            `json:"failed"`
	Released  int            `json:"released"`
	Pools     []pool.Stats   `json:"pools"`
	Points    []PointUsage   `json:"points"`
	Resources *ResourceUsage `json:"resources,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := gojson.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// live is an instance waiting for its release wave.
type live struct {
	handle  pool.Handle
	expires int
}

// Runner runs waves against one session.
type Runner struct {
	sess    *session.Session
	opts    Options
	out     []live
	monitor *resourceMonitor
	logger  *zap.Logger
}

// NewRunner returns a runner for sess.
func NewRunner(sess *session.Session, opts Options) *Runner {
	return &Runner{
		sess:   sess,
		opts:   opts,
		logger: sess.Logger().Named("sim"),
	}
}

// Run simulates the configured number of waves. A cancelled context stops
// the run between waves; the partial report is returned with the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}
	if r.opts.Resources {
		r.monitor = newResourceMonitor(ctx)
	}

	ctx = r.sess.Context(ctx)
	report := &Report{SessionID: r.sess.ID()}
	total := metrics.NewTimer("simulation")
	tracer := r.sess.Tracing().Tracer()

	var runErr error
	for w := 0; w < r.opts.Waves; w++ {
		if err := ctx.Err(); err != nil {
			runErr = errors.Wrap(err, errors.ErrorTypeInternal, "simulation cancelled").WithDetail("wave", w)
			break
		}

		wr := WaveReport{Wave: w}
		timer := metrics.NewTimer(fmt.Sprintf("wave_%d", w))
		waveCtx := context.WithValue(ctx, logger.WaveKey, w)
		err := observability.TraceWave(waveCtx, tracer, w, func(ctx context.Context) error {
			r.wave(ctx, &wr)
			return ctx.Err()
		})
		if err != nil {
			r.logger.Warn("wave interrupted", zap.Int("wave", w), zap.Error(err))
		}
		wr.Duration = timer.Stop()
		if c := r.sess.Metrics(); c != nil {
			c.ObserveWave(wr.Duration)
		}

		r.logger.Debug("wave complete",
			zap.Int("wave", w),
			zap.Stringer("reference", wr.Reference),
			zap.Int("spawned", wr.Spawned),
			zap.Int("failed", wr.Failed),
			zap.Int("released", wr.Released),
			zap.Duration("duration", wr.Duration))

		report.Waves = append(report.Waves, wr)
		report.Spawned += wr.Spawned
		report.Failed += wr.Failed
		report.Released += wr.Released
	}

	report.Duration = total.Stop()
	report.Pools = r.sess.Registry().Stats()
	report.Points = r.pointUsage()
	if r.monitor != nil {
		report.Resources = r.monitor.usage(ctx)
	}

	r.logger.Info("simulation finished",
		zap.Int("waves", len(report.Waves)),
		zap.Int("spawned", report.Spawned),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report, runErr
}

func (r *Runner) wave(ctx context.Context, wr *WaveReport) {
	if r.opts.ClearUse {
		r.sess.ClearUse()
	}

	ref := r.opts.Start.Add(r.opts.Path.Scale(float64(wr.Wave)))
	r.sess.Reference().Set(ref)
	wr.Reference = ref

	kept := r.out[:0]
	for _, l := range r.out {
		if l.expires <= wr.Wave {
			l.handle.Release()
			wr.Released++
			continue
		}
		kept = append(kept, l)
	}
	r.out = kept

	for _, name := range r.sess.GroupNames() {
		for i := 0; i < r.opts.SpawnsPerWave; i++ {
			h, ok := r.sess.SpawnInGroup(ctx, name)
			if !ok {
				wr.Failed++
				continue
			}
			wr.Spawned++
			r.out = append(r.out, live{handle: h, expires: wr.Wave + r.opts.Lifetime})
		}
	}
}

func (r *Runner) pointUsage() []PointUsage {
	var out []PointUsage
	for _, name := range r.sess.GroupNames() {
		g, _ := r.sess.Group(name)
		for _, p := range g.Points() {
			out = append(out, PointUsage{Group: name, Point: p.Name(), TimesUsed: p.TimesUsed()})
		}
	}
	return out
}

// Outstanding returns how many spawned instances the runner still holds.
func (r *Runner) Outstanding() int {
	return len(r.out)
}
