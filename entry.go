package vitalz

// EntryType identifies the kind of performance entry reported by the host.
type EntryType string

// Entry types understood by the classifier and the vital sources.
const (
	EntryNavigation             EntryType = "navigation"
	EntryMark                   EntryType = "mark"
	EntryPaint                  EntryType = "paint"
	EntryMeasure                EntryType = "measure"
	EntryResource               EntryType = "resource"
	EntryEvent                  EntryType = "event"
	EntryFirstInput             EntryType = "first-input"
	EntryLongTask               EntryType = "longtask"
	EntryLongAnimationFrame     EntryType = "long-animation-frame"
	EntryLayoutShift            EntryType = "layout-shift"
	EntryLargestContentfulPaint EntryType = "largest-contentful-paint"
)

// Entry is a single host-reported timing record.
// Entries are immutable once observed. Times are milliseconds relative to
// the session's time origin.
type Entry interface {
	EntryType() EntryType
	EntryName() string
	Start() float64
	Length() float64
}

// EntryBase carries the fields every entry shares.
type EntryBase struct {
	Name      string  `json:"name" yaml:"name" mapstructure:"name"`
	StartTime float64 `json:"startTime" yaml:"startTime" mapstructure:"startTime"`
	Duration  float64 `json:"duration" yaml:"duration" mapstructure:"duration"`
}

// EntryName returns the entry name.
func (b EntryBase) EntryName() string { return b.Name }

// Start returns the start time in milliseconds.
func (b EntryBase) Start() float64 { return b.StartTime }

// Length returns the reported duration in milliseconds. May be negative.
func (b EntryBase) Length() float64 { return b.Duration }

// NavigationEntry is the navigation timing record of the current document.
// Zero means "not reached" for every field.
//
//nolint:govet // Field order mirrors the navigation timeline
type NavigationEntry struct {
	EntryBase                  `mapstructure:",squash"`
	UnloadEventStart           float64 `json:"unloadEventStart" mapstructure:"unloadEventStart"`
	UnloadEventEnd             float64 `json:"unloadEventEnd" mapstructure:"unloadEventEnd"`
	RedirectStart              float64 `json:"redirectStart" mapstructure:"redirectStart"`
	RedirectEnd                float64 `json:"redirectEnd" mapstructure:"redirectEnd"`
	FetchStart                 float64 `json:"fetchStart" mapstructure:"fetchStart"`
	DomainLookupStart          float64 `json:"domainLookupStart" mapstructure:"domainLookupStart"`
	DomainLookupEnd            float64 `json:"domainLookupEnd" mapstructure:"domainLookupEnd"`
	ConnectStart               float64 `json:"connectStart" mapstructure:"connectStart"`
	SecureConnectionStart      float64 `json:"secureConnectionStart" mapstructure:"secureConnectionStart"`
	ConnectEnd                 float64 `json:"connectEnd" mapstructure:"connectEnd"`
	RequestStart               float64 `json:"requestStart" mapstructure:"requestStart"`
	ResponseStart              float64 `json:"responseStart" mapstructure:"responseStart"`
	ResponseEnd                float64 `json:"responseEnd" mapstructure:"responseEnd"`
	DomContentLoadedEventStart float64 `json:"domContentLoadedEventStart" mapstructure:"domContentLoadedEventStart"`
	DomContentLoadedEventEnd   float64 `json:"domContentLoadedEventEnd" mapstructure:"domContentLoadedEventEnd"`
	LoadEventStart             float64 `json:"loadEventStart" mapstructure:"loadEventStart"`
	LoadEventEnd               float64 `json:"loadEventEnd" mapstructure:"loadEventEnd"`
	ActivationStart            float64 `json:"activationStart" mapstructure:"activationStart"`
}

// EntryType implements Entry.
func (*NavigationEntry) EntryType() EntryType { return EntryNavigation }

// MarkEntry is a user timing mark.
type MarkEntry struct {
	EntryBase `mapstructure:",squash"`
}

// EntryType implements Entry.
func (*MarkEntry) EntryType() EntryType { return EntryMark }

// MeasureEntry is a user timing measure.
type MeasureEntry struct {
	EntryBase `mapstructure:",squash"`
}

// EntryType implements Entry.
func (*MeasureEntry) EntryType() EntryType { return EntryMeasure }

// PaintEntry is a first-paint or first-contentful-paint record.
type PaintEntry struct {
	EntryBase `mapstructure:",squash"`
}

// EntryType implements Entry.
func (*PaintEntry) EntryType() EntryType { return EntryPaint }

// ResourceEntry is a resource timing record. Size fields are pointers
// because an absent size is distinct from a zero size.
type ResourceEntry struct {
	EntryBase            `mapstructure:",squash"`
	InitiatorType        string   `json:"initiatorType" mapstructure:"initiatorType"`
	TransferSize         *float64 `json:"transferSize,omitempty" mapstructure:"transferSize"`
	EncodedBodySize      *float64 `json:"encodedBodySize,omitempty" mapstructure:"encodedBodySize"`
	DecodedBodySize      *float64 `json:"decodedBodySize,omitempty" mapstructure:"decodedBodySize"`
	DeliveryType         *string  `json:"deliveryType,omitempty" mapstructure:"deliveryType"`
	RenderBlockingStatus string   `json:"renderBlockingStatus,omitempty" mapstructure:"renderBlockingStatus"`
}

// EntryType implements Entry.
func (*ResourceEntry) EntryType() EntryType { return EntryResource }

// EventEntry is an event timing record for a user interaction.
type EventEntry struct {
	EntryBase       `mapstructure:",squash"`
	Target          *Node   `json:"target,omitempty" mapstructure:"target"`
	ProcessingStart float64 `json:"processingStart" mapstructure:"processingStart"`
	InteractionID   int64   `json:"interactionId" mapstructure:"interactionId"`
}

// EntryType implements Entry.
func (*EventEntry) EntryType() EntryType { return EntryEvent }

// FirstInputEntry is the first user input of the page.
type FirstInputEntry struct {
	EntryBase       `mapstructure:",squash"`
	Target          *Node   `json:"target,omitempty" mapstructure:"target"`
	ProcessingStart float64 `json:"processingStart" mapstructure:"processingStart"`
}

// EntryType implements Entry.
func (*FirstInputEntry) EntryType() EntryType { return EntryFirstInput }

// LongTaskEntry marks a main thread block beyond the long task threshold.
type LongTaskEntry struct {
	EntryBase `mapstructure:",squash"`
}

// EntryType implements Entry.
func (*LongTaskEntry) EntryType() EntryType { return EntryLongTask }

// ScriptTiming attributes part of a long animation frame to a script.
type ScriptTiming struct {
	Invoker            string `json:"invoker" mapstructure:"invoker"`
	InvokerType        string `json:"invokerType" mapstructure:"invokerType"`
	SourceURL          string `json:"sourceURL" mapstructure:"sourceURL"`
	SourceFunctionName string `json:"sourceFunctionName" mapstructure:"sourceFunctionName"`
	// SourceCharPosition is nil when the host did not report it; -1 also
	// means unknown.
	SourceCharPosition *int64 `json:"sourceCharPosition,omitempty" mapstructure:"sourceCharPosition"`
}

// LongAnimationFrameEntry is a frame that took longer than the threshold to render.
type LongAnimationFrameEntry struct {
	EntryBase `mapstructure:",squash"`
	Scripts   []ScriptTiming `json:"scripts,omitempty" mapstructure:"scripts"`
}

// EntryType implements Entry.
func (*LongAnimationFrameEntry) EntryType() EntryType { return EntryLongAnimationFrame }

// LayoutShiftSource is one element that moved during a layout shift.
type LayoutShiftSource struct {
	Node *Node `json:"node,omitempty" mapstructure:"node"`
}

// LayoutShiftEntry is a single layout shift.
type LayoutShiftEntry struct {
	EntryBase      `mapstructure:",squash"`
	Value          float64             `json:"value" mapstructure:"value"`
	HadRecentInput bool                `json:"hadRecentInput" mapstructure:"hadRecentInput"`
	Sources        []LayoutShiftSource `json:"sources,omitempty" mapstructure:"sources"`
}

// EntryType implements Entry.
func (*LayoutShiftEntry) EntryType() EntryType { return EntryLayoutShift }

// LargestContentfulPaintEntry is an LCP candidate.
type LargestContentfulPaintEntry struct {
	EntryBase  `mapstructure:",squash"`
	Element    *Node   `json:"element,omitempty" mapstructure:"element"`
	ID         string  `json:"id" mapstructure:"id"`
	URL        string  `json:"url" mapstructure:"url"`
	Size       float64 `json:"size" mapstructure:"size"`
	RenderTime float64 `json:"renderTime" mapstructure:"renderTime"`
	LoadTime   float64 `json:"loadTime" mapstructure:"loadTime"`
}

// EntryType implements Entry.
func (*LargestContentfulPaintEntry) EntryType() EntryType { return EntryLargestContentfulPaint }

// Node is the host's description of a DOM element.
//
//nolint:govet // Field order follows how the path is rendered
type Node struct {
	Tag        string            `json:"tag" mapstructure:"tag"`
	ID         string            `json:"id,omitempty" mapstructure:"id"`
	Classes    []string          `json:"classes,omitempty" mapstructure:"classes"`
	Attributes map[string]string `json:"attributes,omitempty" mapstructure:"attributes"`
	Component  string            `json:"component,omitempty" mapstructure:"component"`
	Parent     *Node             `json:"parent,omitempty" mapstructure:"parent"`
}
