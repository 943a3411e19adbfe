package vitalz

import "go.uber.org/zap"

// Options configures a Tracker.
type Options struct {
	// Logger receives debug and warning output. Defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics counts classification and finalization. Optional.
	Metrics *Metrics

	// VitalSource computes web vitals. Defaults to an EntryVitalSource over
	// the host.
	VitalSource VitalSource

	// Describer renders interaction targets and LCP/CLS elements.
	// Defaults to NodeDescriber.
	Describer ElementDescriber

	// RecordCLSOnPageloadSpan keeps the cls measurement on the pageload span
	// (when fcp was also recorded).
	RecordCLSOnPageloadSpan bool

	// RecordCLSStandaloneSpans reports CLS as its own span instead.
	RecordCLSStandaloneSpans bool

	// EnableLongTasks emits ui.long-task spans while a root span is active.
	// Used when long animation frames are disabled or unsupported.
	EnableLongTasks bool

	// EnableLongAnimationFrames emits ui.long-animation-frame spans.
	EnableLongAnimationFrames bool

	// EnableInteractions emits ui.interaction.click spans.
	EnableInteractions bool

	// EnableINP emits a standalone span per interaction-to-next-paint report.
	EnableINP bool
}

// Option is a functional option for NewTracker.
type Option func(*Options)

// DefaultOptions returns the options NewTracker starts from.
func DefaultOptions() Options {
	return Options{
		Logger:                    zap.NewNop(),
		RecordCLSOnPageloadSpan:   true,
		EnableLongTasks:           true,
		EnableLongAnimationFrames: true,
		EnableINP:                 true,
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics sets the counters the tracker updates.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithVitalSource replaces the default vital source.
func WithVitalSource(s VitalSource) Option {
	return func(o *Options) {
		o.VitalSource = s
	}
}

// WithDescriber replaces the default element describer.
func WithDescriber(d ElementDescriber) Option {
	return func(o *Options) {
		o.Describer = d
	}
}

// WithRecordCLSOnPageloadSpan controls whether cls rides on the pageload span.
func WithRecordCLSOnPageloadSpan(enabled bool) Option {
	return func(o *Options) {
		o.RecordCLSOnPageloadSpan = enabled
	}
}

// WithStandaloneCLS reports CLS as a standalone span. Implies the cls
// measurement is not written to the pageload span.
func WithStandaloneCLS(enabled bool) Option {
	return func(o *Options) {
		o.RecordCLSStandaloneSpans = enabled
		if enabled {
			o.RecordCLSOnPageloadSpan = false
		}
	}
}

// WithLongTasks toggles long task spans.
func WithLongTasks(enabled bool) Option {
	return func(o *Options) {
		o.EnableLongTasks = enabled
	}
}

// WithLongAnimationFrames toggles long animation frame spans.
func WithLongAnimationFrames(enabled bool) Option {
	return func(o *Options) {
		o.EnableLongAnimationFrames = enabled
	}
}

// WithInteractions toggles click interaction spans.
func WithInteractions(enabled bool) Option {
	return func(o *Options) {
		o.EnableInteractions = enabled
	}
}

// WithINP toggles standalone INP spans.
func WithINP(enabled bool) Option {
	return func(o *Options) {
		o.EnableINP = enabled
	}
}
