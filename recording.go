package vitalz

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRecording is returned by LoadRecording for input with no document.
var ErrEmptyRecording = errors.New("recording is empty")

// Recording is a captured page session: the host state at finalization
// time and every entry the host observed, in order. JSON recordings load
// too, since JSON is valid YAML.
type Recording struct {
	Navigator       *RecordingNavigator `json:"navigator,omitempty" yaml:"navigator,omitempty"`
	FirstHiddenTime *float64            `json:"firstHiddenTime,omitempty" yaml:"firstHiddenTime,omitempty"`
	Origin          string              `json:"origin" yaml:"origin"`
	Root            RecordingRoot       `json:"root" yaml:"root"`
	Entries         []map[string]any    `json:"entries" yaml:"entries"`
	TimeOrigin      float64             `json:"timeOrigin" yaml:"timeOrigin"`
}

// RecordingRoot is the top-level span the recording is finalized against.
// Zero timestamps are derived from the entries.
type RecordingRoot struct {
	Name           string  `json:"name" yaml:"name"`
	Op             string  `json:"op" yaml:"op"`
	StartTimestamp float64 `json:"startTimestamp" yaml:"startTimestamp"`
	EndTimestamp   float64 `json:"endTimestamp" yaml:"endTimestamp"`
}

// RecordingNavigator is what the host exposed about network and device.
type RecordingNavigator struct {
	RTT                 *float64 `json:"rtt,omitempty" yaml:"rtt,omitempty"`
	DeviceMemory        *float64 `json:"deviceMemory,omitempty" yaml:"deviceMemory,omitempty"`
	HardwareConcurrency *int     `json:"hardwareConcurrency,omitempty" yaml:"hardwareConcurrency,omitempty"`
	EffectiveType       string   `json:"effectiveType,omitempty" yaml:"effectiveType,omitempty"`
	Type                string   `json:"type,omitempty" yaml:"type,omitempty"`
}

// LoadRecording reads one recording document from r.
func LoadRecording(r io.Reader) (*Recording, error) {
	rec := &Recording{}
	if err := yaml.NewDecoder(r).Decode(rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRecording
		}
		return nil, fmt.Errorf("parsing recording: %w", err)
	}
	if rec.Root.Op == "" {
		rec.Root.Op = OpPageload
	}
	if rec.Root.Name == "" {
		rec.Root.Name = "/"
	}
	return rec, nil
}

// Host builds an empty StaticHost carrying the recording's page state,
// plus the decoded entries to append to it.
func (rec *Recording) Host() (*StaticHost, []Entry, error) {
	entries, err := DecodeEntries(rec.Entries)
	if err != nil {
		return nil, nil, err
	}

	host := NewStaticHost(rec.TimeOrigin)
	host.SetOrigin(rec.Origin)
	if rec.FirstHiddenTime != nil {
		host.SetFirstHiddenTime(*rec.FirstHiddenTime)
	}
	if nav := rec.Navigator; nav != nil {
		if nav.EffectiveType != "" || nav.Type != "" || nav.RTT != nil {
			info := NetworkInformation{EffectiveType: nav.EffectiveType, Type: nav.Type}
			if nav.RTT != nil {
				info.RTT = *nav.RTT
				info.HasRTT = true
			}
			host.SetNetworkInformation(info)
		}
		if nav.DeviceMemory != nil {
			host.SetDeviceMemory(*nav.DeviceMemory)
		}
		if nav.HardwareConcurrency != nil {
			host.SetHardwareConcurrency(*nav.HardwareConcurrency)
		}
	}
	return host, entries, nil
}

// Replay runs a recording through a Tracker: it starts tracking, opens the
// root span, feeds every entry to the host, finalizes the root and ends it.
func Replay(rec *Recording, backend RootStarter, opts ...Option) error {
	host, entries, err := rec.Host()
	if err != nil {
		return err
	}

	tracker := NewTracker(host, backend, opts...)
	if err := tracker.Start(); err != nil {
		return fmt.Errorf("starting tracker: %w", err)
	}
	defer tracker.Stop()

	start := rec.Root.StartTimestamp
	if start == 0 {
		start = rec.TimeOrigin
	}
	end := rec.Root.EndTimestamp
	if end == 0 {
		end = math.Max(start, absolute(rec.TimeOrigin, lastEntryEnd(entries)))
	}

	root := backend.StartRoot(rec.Root.Name, rec.Root.Op, start)
	if root == nil {
		return errors.New("backend declined the root span")
	}
	host.Append(entries...)
	tracker.Finalize(root)
	root.End(end)
	return nil
}

// lastEntryEnd returns the latest start+duration of entries, in ms.
func lastEntryEnd(entries []Entry) float64 {
	var last float64
	for _, e := range entries {
		last = math.Max(last, e.Start()+math.Max(0, e.Length()))
	}
	return last
}
