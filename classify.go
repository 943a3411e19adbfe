package vitalz

// SyntheticSpan is a span built directly from timing data.
// It is always complete: both timestamps are known (epoch seconds).
type SyntheticSpan struct {
	Attributes     map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Name           string         `json:"name" yaml:"name"`
	Op             string         `json:"op" yaml:"op"`
	StartTimestamp float64        `json:"start_timestamp" yaml:"start_timestamp"`
	EndTimestamp   float64        `json:"timestamp" yaml:"timestamp"`
}

// RootInfo describes the root span entries are classified against.
type RootInfo struct {
	Op             string
	StartTimestamp float64
	Active         bool
}

// rootInfo reads op and start from span, tolerating nil.
func rootInfo(span Span) RootInfo {
	if span == nil {
		return RootInfo{}
	}
	j := span.JSON()
	return RootInfo{Op: j.Op, StartTimestamp: j.StartTimestamp, Active: true}
}

// precedes reports whether an entry starting at start (epoch seconds) began
// before a navigation root. Protects against clock skew producing spans
// ahead of the navigation itself.
func (r RootInfo) precedes(start float64) bool {
	return r.Op == OpNavigation && r.StartTimestamp != 0 && start < r.StartTimestamp
}

// Classifier applies per-entry-type policy and synthesizes finished spans.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	describer  ElementDescriber
	navigation *NavigationEntry
	origin     string
	timeOrigin float64
}

// NewClassifier creates a classifier for one session. nav may be nil.
// origin is the page origin stripped from same-origin resource names.
func NewClassifier(timeOrigin float64, nav *NavigationEntry, origin string, describer ElementDescriber) *Classifier {
	if describer == nil {
		describer = NodeDescriber{}
	}
	return &Classifier{
		timeOrigin: timeOrigin,
		navigation: nav,
		origin:     origin,
		describer:  describer,
	}
}

// Classify turns one entry into zero or more finished spans.
func (c *Classifier) Classify(entry Entry, root RootInfo) []SyntheticSpan {
	switch e := entry.(type) {
	case *NavigationEntry:
		return c.navigationSpans(e)
	case *MarkEntry, *PaintEntry, *MeasureEntry:
		if s, ok := c.measureSpan(e); ok {
			return []SyntheticSpan{s}
		}
		return nil
	case *ResourceEntry:
		return c.resourceSpans(e)
	case *EventEntry:
		return c.interactionSpans(e)
	case *LongTaskEntry:
		return c.longTaskSpans(e, root)
	case *LongAnimationFrameEntry:
		return c.longAnimationFrameSpans(e, root)
	case *FirstInputEntry, *LayoutShiftEntry, *LargestContentfulPaintEntry:
		// Vital inputs only; the subscribers consume these.
		return nil
	default:
		return nil
	}
}

// startOf returns the absolute start of an entry in epoch seconds.
func (c *Classifier) startOf(e Entry) float64 {
	return absolute(c.timeOrigin, e.Start())
}

func withOrigin(origin string) map[string]any {
	return map[string]any{AttrOrigin: origin}
}
