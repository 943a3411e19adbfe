package vitalz

// SpanJSON is the read-only view of a span the core needs.
type SpanJSON struct {
	Op             string  `json:"op,omitempty"`
	StartTimestamp float64 `json:"start_timestamp"`
}

// SpanOptions describes a span to start.
// Timestamps are epoch seconds.
type SpanOptions struct {
	Attributes     map[string]any
	Parent         Span
	Name           string
	Op             string
	StartTimestamp float64
}

// Span is the part of a tracing span the core writes to.
type Span interface {
	End(timestamp float64)
	SetAttribute(key string, value any)
	SetMeasurement(name string, value float64, unit Unit)
	JSON() SpanJSON
}

// StartTimeUpdater is implemented by spans whose start can be moved earlier
// after creation.
type StartTimeUpdater interface {
	UpdateStartTime(timestamp float64)
}

// TracingBackend is the tracing layer the core emits spans into.
// StartInactiveSpan may return nil when the backend declines the span.
type TracingBackend interface {
	ActiveSpan() Span
	StartInactiveSpan(opts SpanOptions) Span
}

// startAndEndSpan creates an already-ended child of parent covering
// [start, end]. The parent's start is moved earlier when the child would
// otherwise begin before it.
func startAndEndSpan(backend TracingBackend, parent Span, start, end float64, s SyntheticSpan) Span {
	if parent != nil {
		if ps := parent.JSON().StartTimestamp; ps != 0 && ps > start {
			if u, ok := parent.(StartTimeUpdater); ok {
				u.UpdateStartTime(start)
			}
		}
	}

	span := backend.StartInactiveSpan(SpanOptions{
		Name:           s.Name,
		Op:             s.Op,
		StartTimestamp: start,
		Attributes:     s.Attributes,
		Parent:         parent,
	})
	if span == nil {
		return nil
	}
	span.End(end)
	return span
}

// RootStarter is a TracingBackend that can also open top-level spans.
// Used by Replay to drive a whole page from a recording.
type RootStarter interface {
	TracingBackend
	StartRoot(name, op string, startTimestamp float64) Span
}
