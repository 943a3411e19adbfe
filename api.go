// Package vitalz turns browser performance timing into tracing spans.
//
// vitalz consumes a host's append-only performance entry log and its web
// vital reports, and produces finished spans plus an aggregate measurement
// set attached to one top-level page load span. The tracing layer is
// abstracted behind TracingBackend; an in-process recorder (Tracer) ships
// with the package and an OpenTelemetry bridge lives in oteltrace.
//
// Core Components:
//   - EntryCursor: remembers how much of the entry log has been classified.
//   - Subscription: cancelable registration for web vital reports.
//   - Classifier: applies per-entry-type policy and synthesizes spans.
//   - Measurements: session-scoped accumulator of named values.
//   - Tracker: drives draining, classification and finalization.
//
// Basic Usage:
//
//	tracer := vitalz.NewTracer()
//	defer tracer.Close()
//
//	tracker := vitalz.NewTracker(host, tracer,
//		vitalz.WithRecordCLSOnPageloadSpan(true),
//	)
//	if err := tracker.Start(); err != nil {
//		// Host has no usable performance timeline.
//	}
//
//	_, root := tracer.StartSpan(ctx, "/checkout", vitalz.OpPageload)
//	// ... page loads, vitals arrive ...
//	tracker.Finalize(root)
//	root.Finish()
//
// Thread Safety:
//
// Tracker and TrackingSession are safe for concurrent use. Vital sources may
// deliver reports from any goroutine; a single mutex per session serializes
// cursor and accumulator updates.
//
// Session Lifecycle:
//
// A session is created by Start and reset by every Finalize. A second
// Finalize on a reset session produces no spans and no measurements.
package vitalz

// Key represents a span operation name.
type Key = string

// Tag represents a span attribute key.
type Tag = string

// Root span operations the tracker reacts to.
const (
	OpPageload   Key = "pageload"
	OpNavigation Key = "navigation"
)

// Span origins distinguishing automatic instrumentation from manual spans.
const (
	OriginUI       = "auto.ui.browser.metrics"
	OriginResource = "auto.resource.browser.metrics"
)

// Attribute keys written by the classifier and the finalizer.
const (
	AttrOrigin                  Tag = "span.origin"
	AttrMeasureBeforeRequest    Tag = "browser.measure_happened_before_request"
	AttrMeasureStartTime        Tag = "browser.measure_start_time"
	AttrTransferSize            Tag = "http.response_transfer_size"
	AttrContentLength           Tag = "http.response_content_length"
	AttrDecodedContentLength    Tag = "http.decoded_response_content_length"
	AttrDeliveryType            Tag = "http.response_delivery_type"
	AttrRenderBlockingStatus    Tag = "resource.render_blocking_status"
	AttrURLScheme               Tag = "url.scheme"
	AttrServerAddress           Tag = "server.address"
	AttrSameOrigin              Tag = "url.same_origin"
	AttrComponentName           Tag = "ui.component_name"
	AttrScriptInvoker           Tag = "browser.script.invoker"
	AttrScriptInvokerType       Tag = "browser.script.invoker_type"
	AttrScriptCharPosition      Tag = "browser.script.source_char_position"
	AttrCodeFilepath            Tag = "code.filepath"
	AttrCodeFunction            Tag = "code.function"
	AttrTimeOrigin              Tag = "performance.timeOrigin"
	AttrActivationStart         Tag = "performance.activationStart"
	AttrEffectiveConnectionType Tag = "effectiveConnectionType"
	AttrConnectionType          Tag = "connectionType"
	AttrDeviceMemory            Tag = "deviceMemory"
	AttrHardwareConcurrency     Tag = "hardwareConcurrency"
	AttrLCPElement              Tag = "lcp.element"
	AttrLCPID                   Tag = "lcp.id"
	AttrLCPURL                  Tag = "lcp.url"
	AttrLCPSize                 Tag = "lcp.size"
	AttrCLSSourcePrefix         Tag = "cls.source."
)
