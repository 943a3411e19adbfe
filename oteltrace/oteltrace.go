// Package oteltrace emits vitalz spans through an OpenTelemetry tracer.
//
// OpenTelemetry spans cannot move their start time once created, so the
// bridge does not implement vitalz.StartTimeUpdater. Measurements become
// float attributes under "measurement.<name>".
package oteltrace

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoobzio/vitalz"
)

// Attribute keys added by the bridge.
const (
	AttrOp                = "span.op"
	MeasurementPrefix     = "measurement."
	MeasurementUnitSuffix = ".unit"
)

// Tracer adapts a trace.Tracer to vitalz.RootStarter.
// Safe for concurrent use by multiple goroutines.
type Tracer struct {
	tracer trace.Tracer
	active atomic.Pointer[Span]
}

// New wraps t.
func New(t trace.Tracer) *Tracer {
	return &Tracer{tracer: t}
}

// StartRoot opens a top-level span and makes it active until it ends.
func (t *Tracer) StartRoot(name, op string, startTimestamp float64) vitalz.Span {
	s := t.start(context.Background(), name, op, startTimestamp, nil)
	t.active.Store(s)
	return s
}

// ActiveSpan implements vitalz.TracingBackend.
func (t *Tracer) ActiveSpan() vitalz.Span {
	if s := t.active.Load(); s != nil {
		return s
	}
	return nil
}

// StartInactiveSpan implements vitalz.TracingBackend.
func (t *Tracer) StartInactiveSpan(opts vitalz.SpanOptions) vitalz.Span {
	parent, _ := opts.Parent.(*Span)
	if parent == nil || parent.tracer != t {
		parent = t.active.Load()
	}

	ctx := context.Background()
	if parent != nil {
		ctx = parent.ctx
	}
	return t.start(ctx, opts.Name, opts.Op, opts.StartTimestamp, opts.Attributes)
}

func (t *Tracer) start(ctx context.Context, name, op string, startTimestamp float64, attrs map[string]any) *Span {
	kvs := make([]attribute.KeyValue, 0, len(attrs)+1)
	if op != "" {
		kvs = append(kvs, attribute.String(AttrOp, op))
	}
	for k, v := range attrs {
		kvs = append(kvs, KeyValue(k, v))
	}

	opts := []trace.SpanStartOption{trace.WithAttributes(kvs...)}
	if startTimestamp != 0 {
		opts = append(opts, trace.WithTimestamp(vitalz.SecondsToTime(startTimestamp)))
	}

	ctx, span := t.tracer.Start(ctx, name, opts...)
	return &Span{
		span:   span,
		ctx:    ctx,
		tracer: t,
		op:     op,
		start:  startTimestamp,
	}
}

// Span adapts a trace.Span to vitalz.Span.
type Span struct {
	span   trace.Span
	ctx    context.Context
	tracer *Tracer
	op     string
	start  float64
	mu     sync.Mutex
	ended  bool
}

// End ends the span at timestamp (epoch seconds). Later calls are no-ops.
func (s *Span) End(timestamp float64) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	s.tracer.active.CompareAndSwap(s, nil)
	s.span.End(trace.WithTimestamp(vitalz.SecondsToTime(timestamp)))
}

// SetAttribute implements vitalz.Span.
func (s *Span) SetAttribute(key string, value any) {
	s.span.SetAttributes(KeyValue(key, value))
}

// SetMeasurement implements vitalz.Span.
func (s *Span) SetMeasurement(name string, value float64, unit vitalz.Unit) {
	kvs := []attribute.KeyValue{attribute.Float64(MeasurementPrefix+name, value)}
	if unit != vitalz.UnitNone {
		kvs = append(kvs, attribute.String(MeasurementPrefix+name+MeasurementUnitSuffix, string(unit)))
	}
	s.span.SetAttributes(kvs...)
}

// JSON implements vitalz.Span.
func (s *Span) JSON() vitalz.SpanJSON {
	return vitalz.SpanJSON{Op: s.op, StartTimestamp: s.start}
}

// SpanContext returns the underlying span context.
func (s *Span) SpanContext() trace.SpanContext {
	return s.span.SpanContext()
}

// KeyValue converts an attribute value to its OpenTelemetry form.
// Values without a native attribute type are formatted as strings.
func KeyValue(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case float32:
		return attribute.Float64(key, float64(v))
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
