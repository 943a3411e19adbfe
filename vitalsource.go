package vitalz

import (
	"errors"
	"math"
	"sync"
)

// ErrNoObserver is returned when the host cannot push new entries.
var ErrNoObserver = errors.New("host does not support entry observation")

// VitalName names a web vital.
type VitalName string

// Web vitals reported by a VitalSource.
const (
	VitalCLS  VitalName = "cls"
	VitalLCP  VitalName = "lcp"
	VitalFID  VitalName = "fid"
	VitalINP  VitalName = "inp"
	VitalTTFB VitalName = "ttfb"
	VitalFCP  VitalName = "fcp"
)

// Metric is one report of a web vital. Entries are the performance entries
// that produced Value, oldest first.
type Metric struct {
	Name    VitalName
	Entries []Entry
	Value   float64
}

// MetricHandler receives vital reports. It may be called several times;
// the latest report supersedes earlier ones.
type MetricHandler func(m Metric)

// VitalSource computes web vitals and reports them to subscribers.
type VitalSource interface {
	Subscribe(name VitalName, handler MetricHandler) (stop func(), err error)
}

const (
	clsSessionGap    = 1000.0
	clsSessionWindow = 5000.0
)

// EntryVitalSource derives web vitals from a host that pushes entries.
type EntryVitalSource struct {
	host Performance
}

// NewEntryVitalSource creates a vital source backed by host.
func NewEntryVitalSource(host Performance) *EntryVitalSource {
	return &EntryVitalSource{host: host}
}

// Subscribe starts computing name and reports each change to handler.
func (s *EntryVitalSource) Subscribe(name VitalName, handler MetricHandler) (func(), error) {
	obs, ok := s.host.(Observer)
	if !ok {
		return nil, ErrNoObserver
	}

	switch name {
	case VitalCLS:
		return obs.Observe(EntryLayoutShift, true, s.cls(handler))
	case VitalLCP:
		return obs.Observe(EntryLargestContentfulPaint, true, s.lcp(handler))
	case VitalFID:
		return obs.Observe(EntryFirstInput, true, s.fid(handler))
	case VitalINP:
		return obs.Observe(EntryEvent, true, s.inp(handler))
	case VitalFCP:
		return obs.Observe(EntryPaint, true, s.fcp(handler))
	case VitalTTFB:
		return obs.Observe(EntryNavigation, true, s.ttfb(handler))
	default:
		return nil, errors.New("unknown vital: " + string(name))
	}
}

// cls groups shifts into session windows and reports the largest window.
func (*EntryVitalSource) cls(handler MetricHandler) EntryHandler {
	var (
		mu             sync.Mutex
		sessionValue   float64
		sessionEntries []Entry
		value          = -1.0
	)
	return func(entries []Entry) {
		mu.Lock()
		var report *Metric
		for _, e := range entries {
			shift, ok := e.(*LayoutShiftEntry)
			if !ok || shift.HadRecentInput {
				continue
			}
			if n := len(sessionEntries); n > 0 && sessionValue > 0 &&
				shift.StartTime-sessionEntries[n-1].Start() < clsSessionGap &&
				shift.StartTime-sessionEntries[0].Start() < clsSessionWindow {
				sessionValue += shift.Value
				sessionEntries = append(sessionEntries, shift)
			} else {
				sessionValue = shift.Value
				sessionEntries = []Entry{shift}
			}
			if sessionValue > value {
				value = sessionValue
				report = &Metric{
					Name:    VitalCLS,
					Value:   value,
					Entries: append([]Entry(nil), sessionEntries...),
				}
			}
		}
		mu.Unlock()
		if report != nil {
			handler(*report)
		}
	}
}

func (s *EntryVitalSource) lcp(handler MetricHandler) EntryHandler {
	return func(entries []Entry) {
		hidden := firstHiddenTime(s.host)
		var last *LargestContentfulPaintEntry
		for _, e := range entries {
			if l, ok := e.(*LargestContentfulPaintEntry); ok && l.StartTime < hidden {
				last = l
			}
		}
		if last == nil {
			return
		}
		handler(Metric{
			Name:    VitalLCP,
			Value:   math.Max(last.StartTime-activationStart(s.host), 0),
			Entries: []Entry{last},
		})
	}
}

func (s *EntryVitalSource) fid(handler MetricHandler) EntryHandler {
	var once sync.Once
	return func(entries []Entry) {
		hidden := firstHiddenTime(s.host)
		for _, e := range entries {
			fi, ok := e.(*FirstInputEntry)
			if !ok || fi.StartTime >= hidden {
				continue
			}
			once.Do(func() {
				handler(Metric{
					Name:    VitalFID,
					Value:   fi.ProcessingStart - fi.StartTime,
					Entries: []Entry{fi},
				})
			})
			return
		}
	}
}

// inp reports the slowest interaction seen so far.
func (*EntryVitalSource) inp(handler MetricHandler) EntryHandler {
	var (
		mu      sync.Mutex
		longest = -1.0
	)
	return func(entries []Entry) {
		mu.Lock()
		var report *Metric
		for _, e := range entries {
			ev, ok := e.(*EventEntry)
			if !ok || ev.InteractionID == 0 {
				continue
			}
			if ev.Duration > longest {
				longest = ev.Duration
				report = &Metric{Name: VitalINP, Value: ev.Duration, Entries: []Entry{ev}}
			}
		}
		mu.Unlock()
		if report != nil {
			handler(*report)
		}
	}
}

func (s *EntryVitalSource) fcp(handler MetricHandler) EntryHandler {
	var once sync.Once
	return func(entries []Entry) {
		hidden := firstHiddenTime(s.host)
		for _, e := range entries {
			p, ok := e.(*PaintEntry)
			if !ok || p.Name != "first-contentful-paint" || p.StartTime >= hidden {
				continue
			}
			once.Do(func() {
				handler(Metric{
					Name:    VitalFCP,
					Value:   math.Max(p.StartTime-activationStart(s.host), 0),
					Entries: []Entry{p},
				})
			})
			return
		}
	}
}

func (*EntryVitalSource) ttfb(handler MetricHandler) EntryHandler {
	var once sync.Once
	return func(entries []Entry) {
		for _, e := range entries {
			nav, ok := e.(*NavigationEntry)
			if !ok || nav.ResponseStart == 0 {
				continue
			}
			once.Do(func() {
				handler(Metric{
					Name:    VitalTTFB,
					Value:   math.Max(nav.ResponseStart-nav.ActivationStart, 0),
					Entries: []Entry{nav},
				})
			})
			return
		}
	}
}
