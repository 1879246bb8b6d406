package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps a trace span and remembers when it started.
type Span struct {
	span      trace.Span
	startTime time.Time
}

// StartSpan starts a span named operationName on tracer.
func StartSpan(ctx context.Context, tracer trace.Tracer, operationName string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, operationName, trace.WithAttributes(attrs...))
	return ctx, &Span{span: span, startTime: time.Now()}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	case time.Duration:
		attr = attribute.Int64(key, v.Nanoseconds())
	default:
		return
	}

	s.span.SetAttributes(attr)
}

// End records the span duration and ends it.
func (s *Span) End(err error) {
	s.span.SetAttributes(attribute.Int64("duration_ns", time.Since(s.startTime).Nanoseconds()))
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// TraceWave runs fn inside a span for one simulated wave.
func TraceWave(ctx context.Context, tracer trace.Tracer, wave int, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracer, "respawn.wave", attribute.Int("respawn.wave", wave))
	err := fn(ctx)
	span.End(err)
	return err
}

// Int64Sums returns the data points of the int64 sum instrument name, keyed
// by their encoded attribute set (for example "policy=closest,pool=Enemy").
func Int64Sums(rm metricdata.ResourceMetrics, name string) map[string]int64 {
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[dp.Attributes.Encoded(attribute.DefaultEncoder())] += dp.Value
			}
		}
	}
	return out
}
