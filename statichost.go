package vitalz

import (
	"fmt"
	"math"
	"sync"
)

type observerEntry struct {
	handler   EntryHandler
	entryType EntryType
	id        uint64
}

// StaticHost is an in-memory host. Entries are appended by the caller and
// pushed to observers of their type as they arrive. Used by the replay
// command and tests.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order groups capabilities after the log
type StaticHost struct {
	mu          sync.Mutex
	entries     []Entry
	observers   []observerEntry
	nextID      uint64
	unsupported map[EntryType]bool

	timeOrigin      float64
	origin          string
	firstHidden     float64
	network         *NetworkInformation
	deviceMemory    *float64
	hardwareThreads *int
}

// NewStaticHost creates a host with the given time origin (epoch seconds).
func NewStaticHost(timeOrigin float64) *StaticHost {
	return &StaticHost{
		timeOrigin:  timeOrigin,
		firstHidden: math.Inf(1),
		unsupported: make(map[EntryType]bool),
	}
}

// TimeOrigin implements Performance.
func (h *StaticHost) TimeOrigin() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timeOrigin
}

// Entries implements Performance.
func (h *StaticHost) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Append records entries and pushes them to matching observers.
func (h *StaticHost) Append(entries ...Entry) {
	h.mu.Lock()
	h.entries = append(h.entries, entries...)
	observers := append([]observerEntry(nil), h.observers...)
	h.mu.Unlock()

	for _, o := range observers {
		if batch := filterEntries(entries, o.entryType); len(batch) > 0 {
			o.handler(batch)
		}
	}
}

// Clear empties the entry log, as when the host clears its buffers.
func (h *StaticHost) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Observe implements Observer. With buffered set, entries already in the log
// are delivered before Observe returns.
func (h *StaticHost) Observe(entryType EntryType, buffered bool, handler EntryHandler) (func(), error) {
	h.mu.Lock()
	if h.unsupported[entryType] {
		h.mu.Unlock()
		return nil, fmt.Errorf("entry type %q: %w", entryType, ErrUnsupportedEntryType)
	}
	h.nextID++
	id := h.nextID
	h.observers = append(h.observers, observerEntry{id: id, entryType: entryType, handler: handler})
	var backlog []Entry
	if buffered {
		backlog = filterEntries(h.entries, entryType)
	}
	h.mu.Unlock()

	if len(backlog) > 0 {
		handler(backlog)
	}

	return func() { h.removeObserver(id) }, nil
}

// ObserverCount returns the number of attached observers.
func (h *StaticHost) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

func (h *StaticHost) removeObserver(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, o := range h.observers {
		if o.id == id {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			return
		}
	}
}

// SetUnsupported makes Observe fail for the given entry types.
func (h *StaticHost) SetUnsupported(types ...EntryType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range types {
		h.unsupported[t] = true
	}
}

// SetOrigin sets the page origin.
func (h *StaticHost) SetOrigin(origin string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.origin = origin
}

// Origin implements LocationProvider.
func (h *StaticHost) Origin() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.origin
}

// SetFirstHiddenTime sets when the page was first hidden (ms).
func (h *StaticHost) SetFirstHiddenTime(ms float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.firstHidden = ms
}

// FirstHiddenTime implements VisibilityProvider.
func (h *StaticHost) FirstHiddenTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.firstHidden
}

// SetNetworkInformation sets the connection details.
func (h *StaticHost) SetNetworkInformation(info NetworkInformation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.network = &info
}

// NetworkInformation implements NetworkInformationProvider.
func (h *StaticHost) NetworkInformation() (NetworkInformation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.network == nil {
		return NetworkInformation{}, false
	}
	return *h.network, true
}

// SetDeviceMemory sets device memory in gigabytes.
func (h *StaticHost) SetDeviceMemory(gb float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deviceMemory = &gb
}

// DeviceMemory implements DeviceMemoryProvider.
func (h *StaticHost) DeviceMemory() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deviceMemory == nil {
		return 0, false
	}
	return *h.deviceMemory, true
}

// SetHardwareConcurrency sets the logical processor count.
func (h *StaticHost) SetHardwareConcurrency(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hardwareThreads = &n
}

// HardwareConcurrency implements HardwareConcurrencyProvider.
func (h *StaticHost) HardwareConcurrency() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hardwareThreads == nil {
		return 0, false
	}
	return *h.hardwareThreads, true
}

func filterEntries(entries []Entry, et EntryType) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.EntryType() == et {
			out = append(out, e)
		}
	}
	return out
}
