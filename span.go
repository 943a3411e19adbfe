package vitalz

import (
	"context"
	"sync"
	"time"
)

// bundleKeyType is a private type for context keys to avoid collisions.
type bundleKeyType string

const (
	bundleKey bundleKeyType = "vitalz"
)

// RecordedSpan is a span captured by the in-process Tracer.
// RecordedSpans are NOT thread-safe - do not modify from multiple goroutines.
//
//nolint:govet // Field alignment optimized for JSON serialization order
type RecordedSpan struct {
	Attributes   map[Tag]any            `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Measurements map[string]Measurement `json:"measurements,omitempty" yaml:"measurements,omitempty"`
	StartTime    time.Time              `json:"start_time" yaml:"start_time"`
	EndTime      time.Time              `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Duration     time.Duration          `json:"duration" yaml:"duration"`
	TraceID      string                 `json:"trace_id" yaml:"trace_id"`
	SpanID       string                 `json:"span_id" yaml:"span_id"`
	ParentID     string                 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name         string                 `json:"name" yaml:"name"`
	Op           string                 `json:"op,omitempty" yaml:"op,omitempty"`
}

// clone deep copies the attribute and measurement maps.
func (s *RecordedSpan) clone() RecordedSpan {
	out := *s
	if s.Attributes != nil {
		out.Attributes = make(map[Tag]any, len(s.Attributes))
		for k, v := range s.Attributes {
			out.Attributes[k] = v
		}
	}
	if s.Measurements != nil {
		out.Measurements = make(map[string]Measurement, len(s.Measurements))
		for k, v := range s.Measurements {
			out.Measurements[k] = v
		}
	}
	return out
}

// ActiveSpan wraps a RecordedSpan with thread-safe mutation and lifecycle
// management. Implements Span.
// Safe for concurrent use by multiple goroutines.
type ActiveSpan struct {
	span   *RecordedSpan
	tracer *Tracer
	mu     sync.Mutex // Protects span fields from concurrent writes.
}

// SetAttribute adds a key-value pair to the span.
// No-op if span is already finished.
func (a *ActiveSpan) SetAttribute(key Tag, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.span.EndTime.IsZero() {
		return
	}

	if a.span.Attributes == nil {
		a.span.Attributes = make(map[Tag]any)
	}
	a.span.Attributes[key] = value
}

// Attribute retrieves an attribute value by key.
func (a *ActiveSpan) Attribute(key Tag) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.span.Attributes == nil {
		return nil, false
	}
	value, ok := a.span.Attributes[key]
	return value, ok
}

// SetMeasurement records a named measurement on the span.
// No-op if span is already finished.
func (a *ActiveSpan) SetMeasurement(name string, value float64, unit Unit) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.span.EndTime.IsZero() {
		return
	}

	if a.span.Measurements == nil {
		a.span.Measurements = make(map[string]Measurement)
	}
	a.span.Measurements[name] = Measurement{Value: value, Unit: unit}
}

// UpdateStartTime moves the span start to timestamp (epoch seconds).
func (a *ActiveSpan) UpdateStartTime(timestamp float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.span.EndTime.IsZero() {
		return
	}
	a.span.StartTime = SecondsToTime(timestamp)
}

// JSON returns the op and start timestamp of the span.
func (a *ActiveSpan) JSON() SpanJSON {
	a.mu.Lock()
	defer a.mu.Unlock()
	return SpanJSON{Op: a.span.Op, StartTimestamp: TimeToSeconds(a.span.StartTime)}
}

// End completes the span at timestamp (epoch seconds).
// Safe to call multiple times - subsequent calls are no-ops.
func (a *ActiveSpan) End(timestamp float64) {
	a.finish(SecondsToTime(timestamp))
}

// Finish completes the span at the tracer's current time.
// Safe to call multiple times - subsequent calls are no-ops.
func (a *ActiveSpan) Finish() {
	a.finish(a.tracer.clock.Now())
}

func (a *ActiveSpan) finish(end time.Time) {
	a.mu.Lock()

	// Prevent double-finishing.
	if !a.span.EndTime.IsZero() {
		a.mu.Unlock()
		return
	}

	a.span.EndTime = end
	a.span.Duration = a.span.EndTime.Sub(a.span.StartTime)
	snapshot := a.span.clone()
	a.mu.Unlock()

	a.tracer.collectSpan(a, snapshot)
}

// TraceID returns the trace ID of this span.
func (a *ActiveSpan) TraceID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.span.TraceID
}

// SpanID returns the span ID of this span.
func (a *ActiveSpan) SpanID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.span.SpanID
}

// Context creates a new context with this span embedded.
// The returned context can be used to start child spans.
func (a *ActiveSpan) Context(parent context.Context) context.Context {
	return context.WithValue(parent, bundleKey, a)
}

// SpanFromContext extracts the current span from a context.
// Returns nil if no span is present.
func SpanFromContext(ctx context.Context) *ActiveSpan {
	if ctx == nil {
		return nil
	}

	if span, ok := ctx.Value(bundleKey).(*ActiveSpan); ok {
		return span
	}

	return nil
}
