package vitalz

import (
	"math"
	"time"
)

// msToSec converts host milliseconds to seconds.
func msToSec(ms float64) float64 {
	return ms / 1000
}

// absolute converts a time-origin relative millisecond value to epoch seconds.
func absolute(timeOrigin, ms float64) float64 {
	return timeOrigin + msToSec(ms)
}

// clampDuration returns the duration in seconds, never negative.
func clampDuration(ms float64) float64 {
	return msToSec(math.Max(0, ms))
}

// SecondsToTime converts epoch seconds to a time.Time.
func SecondsToTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// TimeToSeconds converts a time.Time to epoch seconds.
func TimeToSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// isMeasurementValue reports whether v is usable as a measurement.
func isMeasurementValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
