package vitalz

import (
	"net/url"
	"strings"
)

// maxIntAsBytes is the sanity ceiling for reported resource sizes.
const maxIntAsBytes = 2147483647

func (c *Classifier) resourceSpans(e *ResourceEntry) []SyntheticSpan {
	// Fetch and XHR have their own instrumentation.
	if e.InitiatorType == "xmlhttprequest" || e.InitiatorType == "fetch" {
		return nil
	}

	attrs := withOrigin(OriginResource)
	setSize(attrs, AttrTransferSize, e.TransferSize)
	setSize(attrs, AttrContentLength, e.EncodedBodySize)
	setSize(attrs, AttrDecodedContentLength, e.DecodedBodySize)

	if e.DeliveryType != nil {
		dt := *e.DeliveryType
		if dt == "" {
			dt = "default"
		}
		attrs[AttrDeliveryType] = dt
	}
	if e.RenderBlockingStatus != "" {
		attrs[AttrRenderBlockingStatus] = e.RenderBlockingStatus
	}

	if u, err := url.Parse(e.Name); err == nil {
		if u.Scheme != "" {
			attrs[AttrURLScheme] = u.Scheme
		}
		if u.Host != "" {
			attrs[AttrServerAddress] = u.Host
		}
	}
	attrs[AttrSameOrigin] = c.origin != "" && strings.Contains(e.Name, c.origin)

	name := e.Name
	if c.origin != "" {
		name = strings.Replace(name, c.origin, "", 1)
	}

	op := "resource.other"
	if e.InitiatorType != "" {
		op = "resource." + e.InitiatorType
	}

	start := c.startOf(e)
	return []SyntheticSpan{{
		Name:           name,
		Op:             op,
		StartTimestamp: start,
		EndTimestamp:   start + clampDuration(e.Duration),
		Attributes:     attrs,
	}}
}

func setSize(attrs map[string]any, key string, v *float64) {
	if v != nil && *v < maxIntAsBytes {
		attrs[key] = *v
	}
}
