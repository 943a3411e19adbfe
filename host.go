package vitalz

import (
	"errors"
	"math"
)

// ErrUnsupportedEntryType is returned by observers that cannot deliver an
// entry type.
var ErrUnsupportedEntryType = errors.New("entry type not supported")

// Performance is the minimal host capability: a time origin and the
// cumulative entry log. Everything else is optional and discovered by
// type assertion.
type Performance interface {
	// TimeOrigin returns the session time origin in epoch seconds.
	// Zero means the host has no usable time origin.
	TimeOrigin() float64
	// Entries returns every entry recorded so far, in observation order.
	Entries() []Entry
}

// EntryHandler receives a batch of newly observed entries.
type EntryHandler func(entries []Entry)

// Observer is implemented by hosts that push new entries as they arrive.
// The returned function detaches the handler.
type Observer interface {
	Observe(entryType EntryType, buffered bool, handler EntryHandler) (stop func(), err error)
}

// NavigationProvider exposes the navigation entry directly.
type NavigationProvider interface {
	NavigationEntry() (*NavigationEntry, bool)
}

// VisibilityProvider reports when the page was first hidden, in
// milliseconds relative to the time origin.
type VisibilityProvider interface {
	FirstHiddenTime() float64
}

// NetworkInformation is the host's view of the connection.
type NetworkInformation struct {
	EffectiveType string  `json:"effectiveType" mapstructure:"effectiveType"`
	Type          string  `json:"type" mapstructure:"type"`
	RTT           float64 `json:"rtt" mapstructure:"rtt"`
	HasRTT        bool    `json:"-" mapstructure:"-"`
}

// NetworkInformationProvider exposes connection details.
type NetworkInformationProvider interface {
	NetworkInformation() (NetworkInformation, bool)
}

// DeviceMemoryProvider exposes approximate device memory in gigabytes.
type DeviceMemoryProvider interface {
	DeviceMemory() (float64, bool)
}

// HardwareConcurrencyProvider exposes the number of logical processors.
type HardwareConcurrencyProvider interface {
	HardwareConcurrency() (int, bool)
}

// LocationProvider exposes the page origin, e.g. "https://example.com".
type LocationProvider interface {
	Origin() string
}

// ElementDescriber renders interaction targets.
type ElementDescriber interface {
	ElementPath(n *Node) string
	ComponentName(n *Node) string
}

// navigationEntry finds the navigation entry through the provider when
// available, otherwise by scanning the log.
func navigationEntry(p Performance) *NavigationEntry {
	if np, ok := p.(NavigationProvider); ok {
		if nav, ok := np.NavigationEntry(); ok {
			return nav
		}
		return nil
	}
	for _, e := range p.Entries() {
		if nav, ok := e.(*NavigationEntry); ok {
			return nav
		}
	}
	return nil
}

// firstHiddenTime returns +Inf when the host cannot tell.
func firstHiddenTime(p Performance) float64 {
	if vp, ok := p.(VisibilityProvider); ok {
		return vp.FirstHiddenTime()
	}
	return math.Inf(1)
}

func pageOrigin(p Performance) string {
	if lp, ok := p.(LocationProvider); ok {
		return lp.Origin()
	}
	return ""
}

func activationStart(p Performance) float64 {
	if nav := navigationEntry(p); nav != nil {
		return nav.ActivationStart
	}
	return 0
}
