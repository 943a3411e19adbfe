package vitalz

import "sort"

// Unit is the unit a measurement value is expressed in.
type Unit string

// Measurement units.
const (
	UnitNone        Unit = ""
	UnitMillisecond Unit = "millisecond"
	UnitSecond      Unit = "second"
)

// Measurement names written by the subscribers and the finalizer.
const (
	MeasurementCLS             = "cls"
	MeasurementLCP             = "lcp"
	MeasurementFID             = "fid"
	MeasurementINP             = "inp"
	MeasurementTTFB            = "ttfb"
	MeasurementFP              = "fp"
	MeasurementFCP             = "fcp"
	MeasurementFIDMark         = "mark.fid"
	MeasurementTTFBRequestTime = "ttfb.requestTime"
	MeasurementConnectionRTT   = "connection.rtt"
)

// Measurement is a single aggregate value.
type Measurement struct {
	Unit  Unit    `json:"unit" yaml:"unit"`
	Value float64 `json:"value" yaml:"value"`
}

// NamedMeasurement pairs a measurement with its name.
type NamedMeasurement struct {
	Name string
	Measurement
}

// Measurements accumulates named measurements for one session.
// Last write wins per name. Not safe for concurrent use on its own; the
// owning TrackingSession serializes access.
type Measurements struct {
	values map[string]Measurement
}

// NewMeasurements creates an empty accumulator.
func NewMeasurements() *Measurements {
	return &Measurements{values: make(map[string]Measurement)}
}

// Set stores a measurement, replacing any previous value.
func (m *Measurements) Set(name string, value float64, unit Unit) {
	if m.values == nil {
		m.values = make(map[string]Measurement)
	}
	m.values[name] = Measurement{Value: value, Unit: unit}
}

// Get returns the measurement stored under name.
func (m *Measurements) Get(name string) (Measurement, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Has reports whether name is present.
func (m *Measurements) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Delete removes name.
func (m *Measurements) Delete(name string) {
	delete(m.values, name)
}

// Len returns the number of stored measurements.
func (m *Measurements) Len() int {
	return len(m.values)
}

// Snapshot returns a copy of all measurements sorted by name.
func (m *Measurements) Snapshot() []NamedMeasurement {
	if len(m.values) == 0 {
		return nil
	}
	out := make([]NamedMeasurement, 0, len(m.values))
	for name, v := range m.values {
		out = append(out, NamedMeasurement{Name: name, Measurement: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset drops every measurement.
func (m *Measurements) Reset() {
	m.values = make(map[string]Measurement)
}
