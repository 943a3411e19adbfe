package vitalz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logOnlyHost has an entry log but cannot push new entries.
type logOnlyHost struct {
	entries []Entry
}

func (h *logOnlyHost) TimeOrigin() float64 { return testTimeOrigin }
func (h *logOnlyHost) Entries() []Entry    { return h.entries }

func subscribeMetrics(t *testing.T, host Performance, name VitalName) *[]Metric {
	t.Helper()
	var got []Metric
	stop, err := NewEntryVitalSource(host).Subscribe(name, func(m Metric) { got = append(got, m) })
	require.NoError(t, err)
	t.Cleanup(stop)
	return &got
}

func values(ms []Metric) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func shift(start, value float64, recentInput bool) *LayoutShiftEntry {
	return &LayoutShiftEntry{EntryBase: EntryBase{StartTime: start}, Value: value, HadRecentInput: recentInput}
}

func TestEntryVitalSourceNoObserver(t *testing.T) {
	_, err := NewEntryVitalSource(&logOnlyHost{}).Subscribe(VitalLCP, func(Metric) {})
	assert.True(t, errors.Is(err, ErrNoObserver))
}

func TestEntryVitalSourceUnknownVital(t *testing.T) {
	_, err := NewEntryVitalSource(NewStaticHost(testTimeOrigin)).Subscribe("tbt", func(Metric) {})
	assert.Error(t, err)
}

func TestEntryVitalSourceCLSSessionWindows(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	got := subscribeMetrics(t, h, VitalCLS)

	h.Append(shift(100, 0.1, false))
	h.Append(shift(500, 0.05, false))
	h.Append(shift(600, 0.5, true)) // caused by input
	h.Append(shift(3000, 0.02, false))
	h.Append(shift(3200, 0.2, false))

	require.Len(t, *got, 3)
	assert.InDeltaSlice(t, []float64{0.1, 0.15, 0.22}, values(*got), 1e-9)

	last := (*got)[2]
	assert.Len(t, last.Entries, 2, "entries of the largest window")
	assert.Equal(t, 3200.0, last.Entries[1].Start())
}

func TestEntryVitalSourceCLSWindowCap(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	got := subscribeMetrics(t, h, VitalCLS)

	// Gaps under a second, but the window closes after five seconds.
	for i := 0; i < 7; i++ {
		h.Append(shift(float64(i)*900, 0.1, false))
	}

	assert.InDelta(t, 0.6, (*got)[len(*got)-1].Value, 1e-9)
}

func TestEntryVitalSourceLCP(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	h.Append(&NavigationEntry{ActivationStart: 100})
	h.SetFirstHiddenTime(5000)
	got := subscribeMetrics(t, h, VitalLCP)

	h.Append(&LargestContentfulPaintEntry{EntryBase: EntryBase{StartTime: 1200}, Size: 100})
	h.Append(&LargestContentfulPaintEntry{EntryBase: EntryBase{StartTime: 2500}, Size: 900})
	h.Append(&LargestContentfulPaintEntry{EntryBase: EntryBase{StartTime: 6000}, Size: 9000})

	assert.Equal(t, []float64{1100, 2400}, values(*got))
	lcp := (*got)[1].Entries[0].(*LargestContentfulPaintEntry)
	assert.Equal(t, 900.0, lcp.Size)
}

func TestEntryVitalSourceFIDOnce(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	h.Append(&FirstInputEntry{EntryBase: EntryBase{Name: "click", StartTime: 1000}, ProcessingStart: 1050})
	got := subscribeMetrics(t, h, VitalFID)

	h.Append(&FirstInputEntry{EntryBase: EntryBase{StartTime: 3000}, ProcessingStart: 3500})

	require.Len(t, *got, 1)
	assert.Equal(t, 50.0, (*got)[0].Value)
}

func TestEntryVitalSourceFIDWhileHidden(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	h.SetFirstHiddenTime(500)
	got := subscribeMetrics(t, h, VitalFID)

	h.Append(&FirstInputEntry{EntryBase: EntryBase{StartTime: 1000}, ProcessingStart: 1050})
	assert.Empty(t, *got)
}

func TestEntryVitalSourceINP(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	got := subscribeMetrics(t, h, VitalINP)

	h.Append(
		&EventEntry{EntryBase: EntryBase{Name: "click", Duration: 80}, InteractionID: 1},
		&EventEntry{EntryBase: EntryBase{Name: "mousemove", Duration: 500}},
	)
	h.Append(&EventEntry{EntryBase: EntryBase{Name: "keydown", Duration: 40}, InteractionID: 2})
	h.Append(&EventEntry{EntryBase: EntryBase{Name: "click", Duration: 200}, InteractionID: 3})

	assert.Equal(t, []float64{80, 200}, values(*got))
}

func TestEntryVitalSourceFCP(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	got := subscribeMetrics(t, h, VitalFCP)

	h.Append(&PaintEntry{EntryBase{Name: "first-paint", StartTime: 90}})
	h.Append(&PaintEntry{EntryBase{Name: "first-contentful-paint", StartTime: 120}})

	assert.Equal(t, []float64{120}, values(*got))
}

func TestEntryVitalSourceTTFB(t *testing.T) {
	h := NewStaticHost(testTimeOrigin)
	got := subscribeMetrics(t, h, VitalTTFB)

	h.Append(&NavigationEntry{ResponseStart: 0})
	h.Append(&NavigationEntry{ResponseStart: 180, ActivationStart: 30})

	assert.Equal(t, []float64{150}, values(*got))
}
