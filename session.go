package vitalz

import (
	"sync"

	"github.com/google/uuid"
)

// TrackingSession is the mutable state of one top-level trace: the time
// origin, how far the entry log has been drained, the measurement
// accumulator, and the raw LCP/CLS entries kept for attribution.
// Safe for concurrent use; one mutex guards cursor and accumulator together.
//
//nolint:govet // Field order groups immutable fields before guarded state
type TrackingSession struct {
	id         string
	timeOrigin float64

	mu           sync.Mutex
	cursor       EntryCursor
	measurements *Measurements
	lcpEntry     *LargestContentfulPaintEntry
	clsEntry     *LayoutShiftEntry

	clientMeasured bool
}

// NewTrackingSession creates a session anchored at timeOrigin (epoch seconds).
func NewTrackingSession(timeOrigin float64) *TrackingSession {
	return &TrackingSession{
		id:           uuid.NewString(),
		timeOrigin:   timeOrigin,
		measurements: NewMeasurements(),
	}
}

// ID returns the session identifier used for log correlation.
func (s *TrackingSession) ID() string {
	return s.id
}

// TimeOrigin returns the session time origin in epoch seconds.
func (s *TrackingSession) TimeOrigin() float64 {
	return s.timeOrigin
}

// Measurements returns a sorted copy of the accumulated measurements.
func (s *TrackingSession) Measurements() []NamedMeasurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measurements.Snapshot()
}

// Measurement returns one accumulated measurement.
func (s *TrackingSession) Measurement(name string) (Measurement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measurements.Get(name)
}

// CursorPosition returns how many log entries have been consumed.
func (s *TrackingSession) CursorPosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Position()
}

// LCPEntry returns the retained largest-contentful-paint entry, if any.
func (s *TrackingSession) LCPEntry() *LargestContentfulPaintEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lcpEntry
}

// CLSEntry returns the retained layout-shift entry, if any.
func (s *TrackingSession) CLSEntry() *LayoutShiftEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clsEntry
}

// mutate runs fn under the session lock unless sub has been canceled.
// A nil sub always runs.
func (s *TrackingSession) mutate(sub *Subscription, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub != nil && !sub.Active() {
		return false
	}
	fn()
	return true
}

// resetLocked clears every piece of session-scoped state except the cursor
// and the once-per-session client flag.
// Caller must hold s.mu.
func (s *TrackingSession) resetLocked() {
	s.measurements.Reset()
	s.lcpEntry = nil
	s.clsEntry = nil
}
