package observability_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ajitpratap0/respawn/pkg/observability"
	"github.com/ajitpratap0/respawn/pkg/spawn"
	"github.com/ajitpratap0/respawn/pkg/testutil"
)

func TestSetupDisabled(t *testing.T) {
	p, err := observability.Setup(context.Background(), observability.DefaultConfig(), nil)
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())

	rm, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rm.ScopeMetrics)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	cfg := observability.DefaultConfig()
	cfg.Enabled = true
	cfg.ExporterType = "jaeger"

	_, err := observability.Setup(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestSpansAreExported(t *testing.T) {
	var out bytes.Buffer
	cfg := observability.DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "respawn-test"

	p, err := observability.Setup(context.Background(), cfg, &out)
	require.NoError(t, err)

	err = observability.TraceWave(context.Background(), p.Tracer(), 1, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, out.String(), "respawn.wave")
	assert.Contains(t, out.String(), "respawn-test")
}

func TestTraceWaveRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	boom := errors.New("boom")

	err := observability.TraceWave(context.Background(), tp.Tracer("test"), 3, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "respawn.wave", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestSpawnCounterIsCollected(t *testing.T) {
	cfg := observability.DefaultConfig()
	cfg.Enabled = true
	cfg.ExporterType = "none"

	p, err := observability.Setup(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	reg := testutil.NewRegistry(t)
	testutil.MustCreatePool(t, reg, "Enemy", 1)
	coord := spawn.NewCoordinator(reg, nil, nil,
		spawn.WithLogger(testutil.TestLogger(t)),
		spawn.WithTracer(p.Tracer()),
		spawn.WithMeter(p.Meter()))

	_, ok := coord.Spawn(context.Background(), "Enemy", spawn.Origin())
	require.True(t, ok)
	_, ok = coord.Spawn(context.Background(), "Enemy", spawn.Origin())
	require.False(t, ok)

	rm, err := p.Collect(context.Background())
	require.NoError(t, err)

	sums := observability.Int64Sums(rm, "respawn.spawns")
	assert.Equal(t, int64(1), sums["policy=manual,pool=Enemy,status=ok"])
	assert.Equal(t, int64(1), sums["policy=manual,pool=Enemy,status=exhausted"])
}
