package vitalz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurementsLastWriteWins(t *testing.T) {
	m := NewMeasurements()
	m.Set(MeasurementLCP, 1000, UnitMillisecond)
	m.Set(MeasurementLCP, 1500, UnitMillisecond)

	got, ok := m.Get(MeasurementLCP)
	require.True(t, ok)
	assert.Equal(t, Measurement{Value: 1500, Unit: UnitMillisecond}, got)
	assert.Equal(t, 1, m.Len())
}

func TestMeasurementsDeleteAndHas(t *testing.T) {
	m := NewMeasurements()
	m.Set(MeasurementFIDMark, 10, UnitSecond)
	assert.True(t, m.Has(MeasurementFIDMark))

	m.Delete(MeasurementFIDMark)
	m.Delete("never-set")
	assert.False(t, m.Has(MeasurementFIDMark))
	_, ok := m.Get(MeasurementFIDMark)
	assert.False(t, ok)
}

func TestMeasurementsSnapshotSorted(t *testing.T) {
	m := NewMeasurements()
	m.Set(MeasurementTTFB, 3, UnitMillisecond)
	m.Set(MeasurementCLS, 0.2, UnitNone)
	m.Set(MeasurementFCP, 1, UnitMillisecond)

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"cls", "fcp", "ttfb"}, []string{snap[0].Name, snap[1].Name, snap[2].Name})

	// The snapshot is detached from the accumulator.
	m.Reset()
	assert.Len(t, snap, 3)
	assert.Zero(t, m.Len())
	assert.Nil(t, m.Snapshot())
}

func TestMeasurementsZeroValue(t *testing.T) {
	var m Measurements
	m.Set(MeasurementFP, 5, UnitMillisecond)
	assert.True(t, m.Has(MeasurementFP))
}
