package vitalz

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxLCPURLLength bounds the lcp.url attribute.
const maxLCPURLLength = 200

// finalization is what Finalize computed under the session lock, applied to
// the root span after the lock is released.
type finalization struct {
	spans        []SyntheticSpan
	measurements []NamedMeasurement
	lcp          *LargestContentfulPaintEntry
	cls          *LayoutShiftEntry
	timeOrigin   float64
	pageload     bool
}

// Finalize drains every new entry, classifies it against root, emits the
// resulting spans and tags root with the client's network and device
// attributes. On a pageload root it also writes the session's
// measurements and web vital attributes onto root. The session is reset
// afterwards, so a second call produces no spans and no measurements.
// A panicking host is treated as having no performance data.
func (t *Tracker) Finalize(root Span) {
	if root == nil {
		return
	}
	defer t.guard("finalize")

	session := t.Session()
	if session == nil {
		return
	}

	info := rootInfo(root)
	logger := t.logger.With(zap.String("session", session.ID()), zap.String("op", info.Op))
	f := t.collect(session, info, logger)

	t.emit(root, f.spans)
	t.setClientAttributes(root)
	if f.pageload {
		t.applyPageload(root, f)
	}
	t.opts.Metrics.finalized(info.Op)
	logger.Debug("finalized",
		zap.Int("spans", len(f.spans)),
		zap.Int("measurements", len(f.measurements)),
	)
}

// collect does all session reads and writes in one critical section.
func (t *Tracker) collect(s *TrackingSession, root RootInfo, logger *zap.Logger) finalization {
	entries := t.host.Entries()
	nav := navigationEntry(t.host)
	hidden := firstHiddenTime(t.host)
	network, hasNetwork := networkInformation(t.host)
	skips := t.drainSkips()

	s.mu.Lock()
	defer s.mu.Unlock()

	f := finalization{timeOrigin: s.timeOrigin, pageload: root.Op == OpPageload}
	classifier := NewClassifier(s.timeOrigin, nav, pageOrigin(t.host), t.opts.Describer)

	for _, e := range s.cursor.Drain(entries) {
		if reason, ok := skips[e.EntryType()]; ok {
			t.opts.Metrics.skipped(reason)
			continue
		}
		if root.precedes(absolute(s.timeOrigin, e.Start())) {
			t.opts.Metrics.skipped(SkipBeforeNavigation)
			logger.Debug("entry precedes navigation", zap.String("entryType", string(e.EntryType())))
			continue
		}
		t.opts.Metrics.classified(e.EntryType())
		f.spans = append(f.spans, classifier.Classify(e, root)...)
		recordPaint(s.measurements, e, hidden)
	}

	if f.pageload {
		// 1. Request time, unless the navigation was captured mid-flight.
		// Host-derived values are recorded once per session.
		if !s.clientMeasured {
			if nav != nil && nav.RequestStart <= nav.ResponseStart {
				s.measurements.Set(MeasurementTTFBRequestTime, nav.ResponseStart-nav.RequestStart, UnitMillisecond)
			}
			if hasNetwork && network.HasRTT && isMeasurementValue(network.RTT) {
				s.measurements.Set(MeasurementConnectionRTT, network.RTT, UnitMillisecond)
			}
			s.clientMeasured = true
		}

		// 2. First input delay span; mark.fid is bookkeeping only.
		mark, hasMark := s.measurements.Get(MeasurementFIDMark)
		fid, hasFID := s.measurements.Get(MeasurementFID)
		if hasMark && hasFID {
			f.spans = append(f.spans, SyntheticSpan{
				Name:           "first input delay",
				Op:             "ui.action",
				StartTimestamp: mark.Value,
				EndTimestamp:   mark.Value + msToSec(fid.Value),
				Attributes:     withOrigin(OriginUI),
			})
			s.measurements.Delete(MeasurementFIDMark)
		}

		// 3. CLS only counts once something was painted.
		if !s.measurements.Has(MeasurementFCP) || !t.opts.RecordCLSOnPageloadSpan {
			s.measurements.Delete(MeasurementCLS)
		}

		f.measurements = s.measurements.Snapshot()
		f.lcp = s.lcpEntry
		f.cls = s.clsEntry
	}

	// 8. Nothing survives into the next trace.
	s.resetLocked()
	return f
}

// recordPaint stores fp/fcp for paints that happened while the page was visible.
func recordPaint(m *Measurements, e Entry, hidden float64) {
	if e.EntryType() != EntryPaint && e.EntryType() != EntryMark && e.EntryType() != EntryMeasure {
		return
	}
	if e.Start() >= hidden {
		return
	}
	switch e.EntryName() {
	case "first-paint":
		m.Set(MeasurementFP, e.Start(), UnitMillisecond)
	case "first-contentful-paint":
		m.Set(MeasurementFCP, e.Start(), UnitMillisecond)
	}
}

// applyPageload writes measurements, timing and web vital attribution onto
// the pageload span.
func (t *Tracker) applyPageload(root Span, f finalization) {
	// 4.
	for _, m := range f.measurements {
		root.SetMeasurement(m.Name, m.Value, m.Unit)
	}

	// 5.
	root.SetAttribute(AttrTimeOrigin, f.timeOrigin)
	root.SetAttribute(AttrActivationStart, activationStart(t.host))

	// 7. Client attributes (6) are set by Finalize for every root.
	if f.lcp != nil {
		if f.lcp.Element != nil {
			root.SetAttribute(AttrLCPElement, t.opts.Describer.ElementPath(f.lcp.Element))
		}
		if f.lcp.ID != "" {
			root.SetAttribute(AttrLCPID, f.lcp.ID)
		}
		if f.lcp.URL != "" {
			root.SetAttribute(AttrLCPURL, truncate(strings.TrimSpace(f.lcp.URL), maxLCPURLLength))
		}
		root.SetAttribute(AttrLCPSize, f.lcp.Size)
	}
	if f.cls != nil {
		for i, src := range f.cls.Sources {
			root.SetAttribute(clsSourceKey(i), t.opts.Describer.ElementPath(src.Node))
		}
	}
}

// setClientAttributes records what the host exposes about network and device.
func (t *Tracker) setClientAttributes(root Span) {
	if info, ok := networkInformation(t.host); ok {
		if info.EffectiveType != "" {
			root.SetAttribute(AttrEffectiveConnectionType, info.EffectiveType)
		}
		if info.Type != "" {
			root.SetAttribute(AttrConnectionType, info.Type)
		}
	}
	if p, ok := t.host.(DeviceMemoryProvider); ok {
		if mem, ok := p.DeviceMemory(); ok && isMeasurementValue(mem) {
			root.SetAttribute(AttrDeviceMemory, fmt.Sprintf("%s GB", strconv.FormatFloat(mem, 'f', -1, 64)))
		}
	}
	if p, ok := t.host.(HardwareConcurrencyProvider); ok {
		if n, ok := p.HardwareConcurrency(); ok {
			root.SetAttribute(AttrHardwareConcurrency, strconv.Itoa(n))
		}
	}
}

func networkInformation(p Performance) (NetworkInformation, bool) {
	if np, ok := p.(NetworkInformationProvider); ok {
		return np.NetworkInformation()
	}
	return NetworkInformation{}, false
}

func clsSourceKey(i int) string {
	return AttrCLSSourcePrefix + strconv.Itoa(i+1)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
