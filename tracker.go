package vitalz

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrNoPerformance is returned by Start when the host has no usable
// performance timeline.
var ErrNoPerformance = errors.New("host has no performance time origin")

// Tracker drives one page's browser metrics: it owns the tracking session,
// installs the vital subscribers, and drains, classifies and finalizes
// entries against root spans.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order groups configuration before mutable state
type Tracker struct {
	host    Performance
	backend TracingBackend
	opts    Options
	logger  *zap.Logger

	mu       sync.Mutex
	session  *TrackingSession
	subs     Subscriptions
	streamed map[EntryType]bool
	frames   EntryType
	cls      standaloneCLS
}

// standaloneCLS holds the CLS report when it is sent as its own span.
type standaloneCLS struct {
	entry    *LayoutShiftEntry
	value    float64
	seen     bool
	reported bool
}

// NewTracker creates a tracker over host that emits spans into backend.
func NewTracker(host Performance, backend TracingBackend, opts ...Option) *Tracker {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.VitalSource == nil {
		o.VitalSource = NewEntryVitalSource(host)
	}
	if o.Describer == nil {
		o.Describer = NodeDescriber{}
	}

	return &Tracker{
		host:     host,
		backend:  backend,
		opts:     o,
		logger:   o.Logger,
		streamed: make(map[EntryType]bool),
	}
}

// Start creates a fresh tracking session and installs the subscribers.
// Calling Start again tears down the previous session first.
func (t *Tracker) Start() error {
	if t.host == nil || t.host.TimeOrigin() == 0 {
		return ErrNoPerformance
	}

	t.Stop()

	session := NewTrackingSession(t.host.TimeOrigin())

	t.mu.Lock()
	t.session = session
	t.streamed = make(map[EntryType]bool)
	t.frames = ""
	t.cls = standaloneCLS{}
	t.mu.Unlock()

	logger := t.logger.With(zap.String("session", session.ID()))
	logger.Debug("tracking started", zap.Float64("timeOrigin", session.TimeOrigin()))

	var subs Subscriptions
	add := func(s *Subscription) {
		if s != nil {
			subs = append(subs, s)
		}
	}

	if t.opts.RecordCLSStandaloneSpans {
		add(t.subscribeVital(session, VitalCLS, t.onStandaloneCLS))
	} else {
		add(t.subscribeVital(session, VitalCLS, onCLS))
	}
	add(t.subscribeVital(session, VitalLCP, onLCP))
	add(t.subscribeVital(session, VitalFID, onFID))
	add(t.subscribeVital(session, VitalTTFB, onTTFB))
	if t.opts.EnableINP {
		add(t.subscribeVital(session, VitalINP, t.onINP))
	}

	// At most one of long animation frames and long tasks reports
	// blocked main-thread time.
	var loaf *Subscription
	if t.opts.EnableLongAnimationFrames {
		loaf = t.subscribeEntries(session, EntryLongAnimationFrame)
		add(loaf)
	}
	var frames EntryType
	switch {
	case loaf != nil:
		frames = EntryLongAnimationFrame
	case t.opts.EnableLongTasks:
		add(t.subscribeEntries(session, EntryLongTask))
		frames = EntryLongTask
	case t.opts.EnableLongAnimationFrames:
		frames = EntryLongAnimationFrame
	}
	if t.opts.EnableInteractions {
		add(t.subscribeEntries(session, EntryEvent))
	}

	t.mu.Lock()
	t.subs = subs
	t.frames = frames
	t.mu.Unlock()

	return nil
}

// Stop cancels every subscription. When CLS is reported standalone, the
// pending CLS span is emitted first. Safe to call multiple times.
func (t *Tracker) Stop() {
	t.ReportStandaloneCLS()

	t.mu.Lock()
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()

	subs.Cancel()
}

// Session returns the current tracking session, or nil before Start.
func (t *Tracker) Session() *TrackingSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Subscriptions returns the installed subscriptions.
func (t *Tracker) Subscriptions() Subscriptions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append(Subscriptions(nil), t.subs...)
}

func (t *Tracker) newClassifier(timeOrigin float64) *Classifier {
	return NewClassifier(timeOrigin, navigationEntry(t.host), pageOrigin(t.host), t.opts.Describer)
}

// drainSkips returns the entry types Finalize leaves alone, with the
// reason: delivered by a streaming subscriber, or turned off by options.
func (t *Tracker) drainSkips() map[EntryType]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[EntryType]string, len(t.streamed)+3)
	for _, et := range []EntryType{EntryLongAnimationFrame, EntryLongTask} {
		if et != t.frames {
			out[et] = SkipDisabled
		}
	}
	if !t.opts.EnableInteractions {
		out[EntryEvent] = SkipDisabled
	}
	for et := range t.streamed {
		out[et] = SkipStreamed
	}
	return out
}

// emit sends synthesized spans to the backend as children of parent.
func (t *Tracker) emit(parent Span, spans []SyntheticSpan) {
	for _, s := range spans {
		if startAndEndSpan(t.backend, parent, s.StartTimestamp, s.EndTimestamp, s) == nil {
			t.opts.Metrics.skipped(SkipDeclined)
			continue
		}
		t.opts.Metrics.synthesized(s.Op)
	}
}

// guard recovers panics raised by host callbacks so they never reach the
// host's own execution.
func (t *Tracker) guard(source string) {
	if r := recover(); r != nil {
		t.recovered(source, r)
	}
}

// guardSubscribe is guard for subscription setup; a panicking host leaves
// no subscription behind and pending never fires.
func (t *Tracker) guardSubscribe(source string, pending *Subscription, installed **Subscription) {
	if r := recover(); r != nil {
		t.recovered(source, r)
		pending.Cancel()
		*installed = nil
	}
}

func (t *Tracker) recovered(source string, r any) {
	t.opts.Metrics.panicked(source)
	t.logger.Warn("recovered panic in host callback",
		zap.String("source", source),
		zap.String("panic", fmt.Sprint(r)),
	)
}
