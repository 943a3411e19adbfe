package vitalz

// longTaskName is shared by long task and long animation frame spans.
const longTaskName = "Main UI thread blocked"

func (c *Classifier) interactionSpans(e *EventEntry) []SyntheticSpan {
	if e.Name != "click" {
		return nil
	}

	attrs := withOrigin(OriginUI)
	if name := c.describer.ComponentName(e.Target); name != "" {
		attrs[AttrComponentName] = name
	}

	start := c.startOf(e)
	return []SyntheticSpan{{
		Name:           c.describer.ElementPath(e.Target),
		Op:             "ui.interaction." + e.Name,
		StartTimestamp: start,
		EndTimestamp:   start + clampDuration(e.Duration),
		Attributes:     attrs,
	}}
}

func (c *Classifier) longTaskSpans(e *LongTaskEntry, root RootInfo) []SyntheticSpan {
	if !root.Active {
		return nil
	}
	start := c.startOf(e)
	return []SyntheticSpan{{
		Name:           longTaskName,
		Op:             "ui.long-task",
		StartTimestamp: start,
		EndTimestamp:   start + clampDuration(e.Duration),
		Attributes:     withOrigin(OriginUI),
	}}
}

func (c *Classifier) longAnimationFrameSpans(e *LongAnimationFrameEntry, root RootInfo) []SyntheticSpan {
	if !root.Active || len(e.Scripts) == 0 {
		return nil
	}

	script := e.Scripts[0]
	attrs := withOrigin(OriginUI)
	attrs[AttrScriptInvoker] = script.Invoker
	attrs[AttrScriptInvokerType] = script.InvokerType
	if script.SourceURL != "" {
		attrs[AttrCodeFilepath] = script.SourceURL
	}
	if script.SourceFunctionName != "" {
		attrs[AttrCodeFunction] = script.SourceFunctionName
	}
	if pos := script.SourceCharPosition; pos != nil && *pos >= 0 {
		attrs[AttrScriptCharPosition] = *pos
	}

	start := c.startOf(e)
	return []SyntheticSpan{{
		Name:           longTaskName,
		Op:             "ui.long-animation-frame",
		StartTimestamp: start,
		EndTimestamp:   start + clampDuration(e.Duration),
		Attributes:     attrs,
	}}
}
