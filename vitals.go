package vitalz

import (
	"go.uber.org/zap"
)

// vitalHandler applies one vital report to a session. sub is checked by
// session.mutate before any write.
type vitalHandler func(s *TrackingSession, sub *Subscription, m Metric)

// subscribeVital installs a vital subscriber. A source that cannot provide
// the vital, or that panics while subscribing, yields nil.
func (t *Tracker) subscribeVital(s *TrackingSession, name VitalName, handle vitalHandler) (installed *Subscription) {
	source := "vital." + string(name)
	sub := newSubscription(source, nil)
	defer t.guardSubscribe(source, sub, &installed)

	stop, err := t.opts.VitalSource.Subscribe(name, func(m Metric) {
		defer t.guard(source)
		if !sub.Active() {
			return
		}
		handle(s, sub, m)
	})
	if err != nil {
		sub.Cancel()
		t.logger.Debug("vital unavailable", zap.String("vital", string(name)), zap.Error(err))
		return nil
	}
	sub.stop = stop
	return sub
}

// subscribeEntries installs a streaming subscriber that classifies entries
// of et as they arrive, while a root span is active. Entries of a streamed
// type are skipped by Finalize so each produces at most one span.
func (t *Tracker) subscribeEntries(s *TrackingSession, et EntryType) (installed *Subscription) {
	source := "entries." + string(et)
	sub := newSubscription(source, nil)
	defer t.guardSubscribe(source, sub, &installed)

	obs, ok := t.host.(Observer)
	if !ok {
		t.logger.Debug("entry observation unavailable", zap.String("entryType", string(et)))
		return nil
	}

	stop, err := obs.Observe(et, true, func(entries []Entry) {
		defer t.guard(source)
		if !sub.Active() {
			return
		}
		t.classifyStreamed(s, entries)
	})
	if err != nil {
		sub.Cancel()
		t.logger.Debug("entry type unsupported", zap.String("entryType", string(et)), zap.Error(err))
		return nil
	}
	sub.stop = stop

	t.mu.Lock()
	t.streamed[et] = true
	t.mu.Unlock()
	return sub
}

func (t *Tracker) classifyStreamed(s *TrackingSession, entries []Entry) {
	parent := t.backend.ActiveSpan()
	if parent == nil {
		for range entries {
			t.opts.Metrics.skipped(SkipNoRoot)
		}
		return
	}

	root := rootInfo(parent)
	classifier := t.newClassifier(s.TimeOrigin())
	var spans []SyntheticSpan
	for _, e := range entries {
		if root.precedes(absolute(s.TimeOrigin(), e.Start())) {
			t.opts.Metrics.skipped(SkipBeforeNavigation)
			continue
		}
		t.opts.Metrics.classified(e.EntryType())
		spans = append(spans, classifier.Classify(e, root)...)
	}
	t.emit(parent, spans)
}

func onCLS(s *TrackingSession, sub *Subscription, m Metric) {
	if len(m.Entries) == 0 {
		return
	}
	entry, ok := m.Entries[len(m.Entries)-1].(*LayoutShiftEntry)
	if !ok {
		return
	}
	s.mutate(sub, func() {
		s.measurements.Set(MeasurementCLS, m.Value, UnitNone)
		s.clsEntry = entry
	})
}

func onLCP(s *TrackingSession, sub *Subscription, m Metric) {
	if len(m.Entries) == 0 {
		return
	}
	entry, ok := m.Entries[len(m.Entries)-1].(*LargestContentfulPaintEntry)
	if !ok {
		return
	}
	s.mutate(sub, func() {
		s.measurements.Set(MeasurementLCP, m.Value, UnitMillisecond)
		s.lcpEntry = entry
	})
}

func onFID(s *TrackingSession, sub *Subscription, m Metric) {
	if len(m.Entries) == 0 {
		return
	}
	entry := m.Entries[len(m.Entries)-1]
	s.mutate(sub, func() {
		s.measurements.Set(MeasurementFID, m.Value, UnitMillisecond)
		s.measurements.Set(MeasurementFIDMark, absolute(s.timeOrigin, entry.Start()), UnitSecond)
	})
}

func onTTFB(s *TrackingSession, sub *Subscription, m Metric) {
	if len(m.Entries) == 0 {
		return
	}
	s.mutate(sub, func() {
		s.measurements.Set(MeasurementTTFB, m.Value, UnitMillisecond)
	})
}

// onStandaloneCLS keeps the latest CLS report on the tracker, outside the
// session, so it survives pageload finalization until ReportStandaloneCLS.
func (t *Tracker) onStandaloneCLS(_ *TrackingSession, sub *Subscription, m Metric) {
	var entry *LayoutShiftEntry
	if len(m.Entries) > 0 {
		entry, _ = m.Entries[len(m.Entries)-1].(*LayoutShiftEntry)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !sub.Active() || t.cls.reported {
		return
	}
	t.cls.value = m.Value
	t.cls.entry = entry
	t.cls.seen = true
}

// ReportStandaloneCLS emits the pending CLS span when CLS is reported
// standalone. Emits at most once per session.
func (t *Tracker) ReportStandaloneCLS() {
	t.mu.Lock()
	session := t.session
	if !t.opts.RecordCLSStandaloneSpans || session == nil || !t.cls.seen || t.cls.reported {
		t.mu.Unlock()
		return
	}
	t.cls.reported = true
	value, entry := t.cls.value, t.cls.entry
	t.mu.Unlock()

	start := session.TimeOrigin()
	name := "Layout shift"
	attrs := map[string]any{AttrOrigin: "auto.http.browser.cls"}
	if entry != nil {
		start = absolute(session.TimeOrigin(), entry.StartTime)
		for i, src := range entry.Sources {
			if i == 0 {
				name = t.opts.Describer.ElementPath(src.Node)
			}
			attrs[clsSourceKey(i)] = t.opts.Describer.ElementPath(src.Node)
		}
	}

	span := t.backend.StartInactiveSpan(SpanOptions{
		Name:           name,
		Op:             "ui.webvital.cls",
		StartTimestamp: start,
		Attributes:     attrs,
	})
	if span == nil {
		t.opts.Metrics.skipped(SkipDeclined)
		return
	}
	span.SetMeasurement(MeasurementCLS, value, UnitNone)
	span.End(start)
	t.opts.Metrics.synthesized("ui.webvital.cls")
}

// onINP emits one standalone span for the reported interaction.
func (t *Tracker) onINP(s *TrackingSession, sub *Subscription, m Metric) {
	if len(m.Entries) == 0 || !sub.Active() {
		return
	}
	entry, ok := m.Entries[len(m.Entries)-1].(*EventEntry)
	if !ok {
		return
	}

	attrs := map[string]any{AttrOrigin: "auto.http.browser.inp"}
	if name := t.opts.Describer.ComponentName(entry.Target); name != "" {
		attrs[AttrComponentName] = name
	}

	start := absolute(s.TimeOrigin(), entry.StartTime)
	span := t.backend.StartInactiveSpan(SpanOptions{
		Name:           t.opts.Describer.ElementPath(entry.Target),
		Op:             "ui.interaction." + entry.Name,
		StartTimestamp: start,
		Attributes:     attrs,
	})
	if span == nil {
		t.opts.Metrics.skipped(SkipDeclined)
		return
	}
	span.SetMeasurement(MeasurementINP, m.Value, UnitMillisecond)
	span.End(start + msToSec(m.Value))
	t.opts.Metrics.synthesized("ui.interaction." + entry.Name)
}
