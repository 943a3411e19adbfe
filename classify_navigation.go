package vitalz

import "math"

// navigationInterval names one sub-interval of the navigation timeline.
type navigationInterval struct {
	start func(*NavigationEntry) float64
	end   func(*NavigationEntry) float64
	label string
}

// navigationIntervals are emitted in this order.
var navigationIntervals = []navigationInterval{
	{
		label: "unloadEvent",
		start: func(n *NavigationEntry) float64 { return n.UnloadEventStart },
		end:   func(n *NavigationEntry) float64 { return n.UnloadEventEnd },
	},
	{
		label: "redirect",
		start: func(n *NavigationEntry) float64 { return n.RedirectStart },
		end:   func(n *NavigationEntry) float64 { return n.RedirectEnd },
	},
	{
		label: "domContentLoadedEvent",
		start: func(n *NavigationEntry) float64 { return n.DomContentLoadedEventStart },
		end:   func(n *NavigationEntry) float64 { return n.DomContentLoadedEventEnd },
	},
	{
		label: "loadEvent",
		start: func(n *NavigationEntry) float64 { return n.LoadEventStart },
		end:   func(n *NavigationEntry) float64 { return n.LoadEventEnd },
	},
	{
		label: "connect",
		start: func(n *NavigationEntry) float64 { return n.ConnectStart },
		end:   func(n *NavigationEntry) float64 { return n.ConnectEnd },
	},
	{
		label: "TLS/SSL",
		start: func(n *NavigationEntry) float64 { return n.SecureConnectionStart },
		end:   func(n *NavigationEntry) float64 { return n.ConnectEnd },
	},
	{
		label: "cache",
		start: func(n *NavigationEntry) float64 { return n.FetchStart },
		end:   func(n *NavigationEntry) float64 { return n.DomainLookupStart },
	},
	{
		label: "DNS",
		start: func(n *NavigationEntry) float64 { return n.DomainLookupStart },
		end:   func(n *NavigationEntry) float64 { return n.DomainLookupEnd },
	},
}

func (c *Classifier) navigationSpans(nav *NavigationEntry) []SyntheticSpan {
	spans := make([]SyntheticSpan, 0, len(navigationIntervals)+2)

	for _, iv := range navigationIntervals {
		start, end := iv.start(nav), iv.end(nav)
		if !present(start) || !present(end) {
			continue
		}
		spans = append(spans, SyntheticSpan{
			Name:           nav.Name,
			Op:             "browser." + iv.label,
			StartTimestamp: absolute(c.timeOrigin, start),
			EndTimestamp:   absolute(c.timeOrigin, end),
			Attributes:     withOrigin(OriginUI),
		})
	}

	// An in-flight navigation has no responseEnd yet; emitting request and
	// response then would produce spans that end before they start.
	if nav.ResponseEnd != 0 {
		responseEnd := absolute(c.timeOrigin, nav.ResponseEnd)
		spans = append(spans,
			SyntheticSpan{
				Name:           nav.Name,
				Op:             "browser.request",
				StartTimestamp: absolute(c.timeOrigin, nav.RequestStart),
				EndTimestamp:   responseEnd,
				Attributes:     withOrigin(OriginUI),
			},
			SyntheticSpan{
				Name:           nav.Name,
				Op:             "browser.response",
				StartTimestamp: absolute(c.timeOrigin, nav.ResponseStart),
				EndTimestamp:   responseEnd,
				Attributes:     withOrigin(OriginUI),
			},
		)
	}

	return spans
}

// present reports whether a navigation timestamp was reached.
func present(ms float64) bool {
	return ms != 0 && !math.IsNaN(ms)
}

// measureSpan covers mark, paint and measure entries. The start is pinned
// to the navigation request so framework marks recorded before the page's
// own request do not precede it; the end is computed from the unpinned
// start. An entry that ends before the pinned start yields no span.
func (c *Classifier) measureSpan(e Entry) (SyntheticSpan, bool) {
	startTime := msToSec(e.Start())
	duration := clampDuration(e.Length())

	requestTime := 0.0
	if c.navigation != nil {
		requestTime = msToSec(c.navigation.RequestStart)
	}

	rawStart := c.timeOrigin + startTime
	pinnedStart := c.timeOrigin + math.Max(startTime, requestTime)
	// Compared in milliseconds so an entry ending at the request is kept.
	if c.navigation != nil && c.navigation.RequestStart > e.Start()+math.Max(0, e.Length()) {
		return SyntheticSpan{}, false
	}

	attrs := withOrigin(OriginResource)
	if pinnedStart != rawStart {
		attrs[AttrMeasureBeforeRequest] = true
		attrs[AttrMeasureStartTime] = rawStart
	}

	return SyntheticSpan{
		Name:           e.EntryName(),
		Op:             string(e.EntryType()),
		StartTimestamp: pinnedStart,
		EndTimestamp:   rawStart + duration,
		Attributes:     attrs,
	}, true
}
