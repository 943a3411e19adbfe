package vitalz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeFirstInputDelaySpan(t *testing.T) {
	h := newHarness(t, 9.0)
	h.start(t)
	root := h.root(OpPageload, 9.0)

	h.vitals.emit(VitalFID, 50, &FirstInputEntry{EntryBase: EntryBase{Name: "mousedown", StartTime: 1000}, ProcessingStart: 1050})
	h.tracker.Finalize(root)

	pageload, spans := h.finish(t, root, 12)
	fid := byOp(spans, "ui.action")
	require.Len(t, fid, 1)
	assert.Equal(t, "first input delay", fid[0].Name)
	assert.Equal(t, OriginUI, fid[0].Attributes[AttrOrigin])
	assert.InDelta(t, 10.0, TimeToSeconds(fid[0].StartTime), 1e-6)
	assert.InDelta(t, 10.05, TimeToSeconds(fid[0].EndTime), 1e-6)

	assert.Equal(t, Measurement{Value: 50, Unit: UnitMillisecond}, pageload.Measurements[MeasurementFID])
	assert.NotContains(t, pageload.Measurements, MeasurementFIDMark)
}

func TestFinalizeCLSRequiresFCP(t *testing.T) {
	shiftEntry := &LayoutShiftEntry{EntryBase: EntryBase{StartTime: 800}, Value: 0.12}

	t.Run("no paint", func(t *testing.T) {
		h := newHarness(t, testTimeOrigin)
		h.start(t)
		root := h.root(OpPageload, testTimeOrigin)

		h.vitals.emit(VitalCLS, 0.12, shiftEntry)
		h.tracker.Finalize(root)

		pageload, _ := h.finish(t, root, testTimeOrigin+2)
		assert.NotContains(t, pageload.Measurements, MeasurementCLS)
	})

	t.Run("painted", func(t *testing.T) {
		h := newHarness(t, testTimeOrigin)
		h.start(t)
		root := h.root(OpPageload, testTimeOrigin)

		h.host.Append(&PaintEntry{EntryBase{Name: "first-contentful-paint", StartTime: 300}})
		h.vitals.emit(VitalCLS, 0.12, shiftEntry)
		h.tracker.Finalize(root)

		pageload, _ := h.finish(t, root, testTimeOrigin+2)
		assert.Equal(t, Measurement{Value: 0.12, Unit: UnitNone}, pageload.Measurements[MeasurementCLS])
		assert.Equal(t, 300.0, pageload.Measurements[MeasurementFCP].Value)
	})

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, testTimeOrigin, WithRecordCLSOnPageloadSpan(false))
		h.start(t)
		root := h.root(OpPageload, testTimeOrigin)

		h.host.Append(&PaintEntry{EntryBase{Name: "first-contentful-paint", StartTime: 300}})
		h.vitals.emit(VitalCLS, 0.12, shiftEntry)
		h.tracker.Finalize(root)

		pageload, _ := h.finish(t, root, testTimeOrigin+2)
		assert.NotContains(t, pageload.Measurements, MeasurementCLS)
	})
}

func TestFinalizePaintWhileHidden(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.host.SetFirstHiddenTime(200)
	h.start(t)
	root := h.root(OpPageload, testTimeOrigin)

	h.host.Append(
		&PaintEntry{EntryBase{Name: "first-paint", StartTime: 150}},
		&PaintEntry{EntryBase{Name: "first-contentful-paint", StartTime: 250}},
	)
	h.tracker.Finalize(root)

	pageload, spans := h.finish(t, root, testTimeOrigin+1)
	assert.Contains(t, pageload.Measurements, MeasurementFP)
	assert.NotContains(t, pageload.Measurements, MeasurementFCP)
	assert.Len(t, byOp(spans, "paint"), 2, "spans are emitted regardless of visibility")
}

func TestFinalizePageload(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.host.SetOrigin("https://example.com")
	h.host.SetNetworkInformation(NetworkInformation{EffectiveType: "4g", Type: "wifi", RTT: 50, HasRTT: true})
	h.host.SetDeviceMemory(8)
	h.host.SetHardwareConcurrency(4)
	h.start(t)
	root := h.root(OpPageload, testTimeOrigin+0.01)

	nav := fullNavigation()
	nav.ActivationStart = 0
	h.host.Append(
		nav,
		&ResourceEntry{EntryBase: EntryBase{Name: "https://example.com/app.js", StartTime: 160, Duration: 40}, InitiatorType: "script"},
		&ResourceEntry{EntryBase: EntryBase{Name: "https://example.com/api", StartTime: 170, Duration: 40}, InitiatorType: "fetch"},
		&PaintEntry{EntryBase{Name: "first-contentful-paint", StartTime: 300}},
	)

	longURL := " https://example.com/" + strings.Repeat("a", 300)
	h.vitals.emit(VitalLCP, 1200, &LargestContentfulPaintEntry{
		EntryBase: EntryBase{StartTime: 1200},
		Element:   &Node{Tag: "img", ID: "hero"},
		ID:        "hero",
		URL:       longURL,
		Size:      5000,
	})
	h.vitals.emit(VitalCLS, 0.02, &LayoutShiftEntry{
		Value:   0.02,
		Sources: []LayoutShiftSource{{Node: &Node{Tag: "p"}}},
	})
	h.vitals.emit(VitalTTFB, 100, nav)

	h.tracker.Finalize(root)
	pageload, spans := h.finish(t, root, testTimeOrigin+2)

	assert.Len(t, byOp(spans, "browser.request"), 1)
	assert.Len(t, byOp(spans, "resource.script"), 1)
	assert.Empty(t, byOp(spans, "resource.fetch"))
	for _, s := range spans {
		assert.Equal(t, pageload.SpanID, s.ParentID)
	}

	// Child spans begin before the root was started, so its start moved.
	assert.InDelta(t, 1000.001, TimeToSeconds(pageload.StartTime), 1e-6)

	assert.Equal(t, map[string]Measurement{
		MeasurementFCP:             {Value: 300, Unit: UnitMillisecond},
		MeasurementLCP:             {Value: 1200, Unit: UnitMillisecond},
		MeasurementCLS:             {Value: 0.02, Unit: UnitNone},
		MeasurementTTFB:            {Value: 100, Unit: UnitMillisecond},
		MeasurementTTFBRequestTime: {Value: 50, Unit: UnitMillisecond},
		MeasurementConnectionRTT:   {Value: 50, Unit: UnitMillisecond},
	}, pageload.Measurements)

	attrs := pageload.Attributes
	assert.Equal(t, testTimeOrigin, attrs[AttrTimeOrigin])
	assert.Equal(t, 0.0, attrs[AttrActivationStart])
	assert.Equal(t, "4g", attrs[AttrEffectiveConnectionType])
	assert.Equal(t, "wifi", attrs[AttrConnectionType])
	assert.Equal(t, "8 GB", attrs[AttrDeviceMemory])
	assert.Equal(t, "4", attrs[AttrHardwareConcurrency])
	assert.Equal(t, "img#hero", attrs[AttrLCPElement])
	assert.Equal(t, "hero", attrs[AttrLCPID])
	assert.Equal(t, 5000.0, attrs[AttrLCPSize])
	assert.Len(t, attrs[AttrLCPURL], maxLCPURLLength)
	assert.True(t, strings.HasPrefix(attrs[AttrLCPURL].(string), "https://example.com/"))
	assert.Equal(t, "p", attrs[AttrCLSSourcePrefix+"1"])
}

func TestFinalizeRequestTimeSkippedMidFlight(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.start(t)
	root := h.root(OpPageload, testTimeOrigin)

	h.host.Append(&NavigationEntry{RequestStart: 90, ResponseStart: 40})
	h.tracker.Finalize(root)

	pageload, _ := h.finish(t, root, testTimeOrigin+1)
	assert.NotContains(t, pageload.Measurements, MeasurementTTFBRequestTime)
}

func TestFinalizeTwice(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.start(t)
	root := h.root(OpPageload, testTimeOrigin)

	h.host.Append(fullNavigation(), &MarkEntry{EntryBase{Name: "ready", StartTime: 500}})
	h.vitals.emit(VitalLCP, 900, &LargestContentfulPaintEntry{EntryBase: EntryBase{StartTime: 900}})

	h.tracker.Finalize(root)
	first := h.collector.Count()
	require.Positive(t, first)
	assert.Empty(t, h.tracker.Session().Measurements(), "session is reset")
	assert.Nil(t, h.tracker.Session().LCPEntry())

	h.tracker.Finalize(root)
	assert.Equal(t, first, h.collector.Count(), "second finalize emits nothing")

	pageload, _ := h.finish(t, root, testTimeOrigin+1)
	assert.Equal(t, map[string]Measurement{
		MeasurementLCP:             {Value: 900, Unit: UnitMillisecond},
		MeasurementTTFBRequestTime: {Value: 50, Unit: UnitMillisecond},
	}, pageload.Measurements)
}

func TestFinalizeOnlyNewEntries(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.start(t)

	first := h.root(OpPageload, testTimeOrigin)
	h.host.Append(&MarkEntry{EntryBase{Name: "a", StartTime: 10}})
	h.tracker.Finalize(first)
	_, spans := h.finish(t, first, testTimeOrigin+1)
	require.Len(t, byOp(spans, "mark"), 1)

	second := h.root(OpNavigation, testTimeOrigin+1)
	h.host.Append(&MarkEntry{EntryBase{Name: "b", StartTime: 1500}})
	h.tracker.Finalize(second)
	_, spans = h.finish(t, second, testTimeOrigin+2)

	marksSeen := byOp(spans, "mark")
	require.Len(t, marksSeen, 1)
	assert.Equal(t, "b", marksSeen[0].Name)
}

func TestFinalizeNavigationRootFiltersEarlierEntries(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.start(t)
	root := h.root(OpNavigation, testTimeOrigin+5)

	h.host.Append(
		&MarkEntry{EntryBase{Name: "stale", StartTime: 1000}},
		&MarkEntry{EntryBase{Name: "fresh", StartTime: 6000}},
	)
	h.vitals.emit(VitalFID, 20, &FirstInputEntry{EntryBase: EntryBase{StartTime: 5500}})
	h.tracker.Finalize(root)

	navigation, spans := h.finish(t, root, testTimeOrigin+8)
	marksSeen := byOp(spans, "mark")
	require.Len(t, marksSeen, 1)
	assert.Equal(t, "fresh", marksSeen[0].Name)

	// Measurements only ever land on pageload spans.
	assert.Empty(t, navigation.Measurements)
	assert.Empty(t, byOp(spans, "ui.action"))
	assert.Empty(t, h.tracker.Session().Measurements())
}

func TestFinalizeNavigationRootGetsClientAttributes(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	h.host.SetNetworkInformation(NetworkInformation{EffectiveType: "4g", RTT: 80, HasRTT: true})
	h.host.SetDeviceMemory(4)
	h.host.SetHardwareConcurrency(8)
	h.start(t)

	root := h.root(OpNavigation, testTimeOrigin+5)
	h.tracker.Finalize(root)

	navigation, _ := h.finish(t, root, testTimeOrigin+6)
	assert.Equal(t, "4g", navigation.Attributes[AttrEffectiveConnectionType])
	assert.Equal(t, "4 GB", navigation.Attributes[AttrDeviceMemory])
	assert.Equal(t, "8", navigation.Attributes[AttrHardwareConcurrency])
	assert.NotContains(t, navigation.Attributes, AttrTimeOrigin)
	assert.Empty(t, navigation.Measurements, "rtt is a pageload measurement")
}

func TestFinalizeNilAndUnstarted(t *testing.T) {
	h := newHarness(t, testTimeOrigin)
	assert.NotPanics(t, func() { h.tracker.Finalize(nil) })

	root := h.root(OpPageload, testTimeOrigin)
	h.tracker.Finalize(root)
	pageload, spans := h.finish(t, root, testTimeOrigin+1)
	assert.Empty(t, spans)
	assert.Empty(t, pageload.Attributes)
}

// brokenHost panics when the entry log is read.
type brokenHost struct{ *StaticHost }

func (brokenHost) Entries() []Entry { panic("performance buffer unavailable") }

func TestFinalizeRecoversHostPanic(t *testing.T) {
	host := brokenHost{NewStaticHost(testTimeOrigin)}
	tracer := NewTracer()
	defer tracer.Close()
	tracker := NewTracker(host, tracer, WithVitalSource(newManualVitals()))
	require.NoError(t, tracker.Start())
	defer tracker.Stop()

	root := tracer.StartRoot("/", OpPageload, testTimeOrigin)
	assert.NotPanics(t, func() { tracker.Finalize(root) })
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	// Never split a multi-byte rune.
	assert.Equal(t, "a", truncate("aé", 2))
}
