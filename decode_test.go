package vitalz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntryNavigation(t *testing.T) {
	e, err := DecodeEntry(map[string]any{
		"entryType":     "navigation",
		"name":          "https://example.com/",
		"startTime":     0,
		"requestStart":  50,
		"responseStart": "100", // weakly typed
		"responseEnd":   150.5,
	})
	require.NoError(t, err)

	nav, ok := e.(*NavigationEntry)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/", nav.Name)
	assert.Equal(t, 50.0, nav.RequestStart)
	assert.Equal(t, 100.0, nav.ResponseStart)
	assert.Equal(t, 150.5, nav.ResponseEnd)
}

func TestDecodeEntryNested(t *testing.T) {
	e, err := DecodeEntry(map[string]any{
		"entryType": "layout-shift",
		"startTime": 800,
		"value":     0.1,
		"sources": []any{
			map[string]any{"node": map[string]any{
				"tag":     "div",
				"classes": []any{"banner"},
				"parent":  map[string]any{"tag": "body"},
			}},
		},
	})
	require.NoError(t, err)

	shift := e.(*LayoutShiftEntry)
	require.Len(t, shift.Sources, 1)
	node := shift.Sources[0].Node
	assert.Equal(t, "div", node.Tag)
	assert.Equal(t, []string{"banner"}, node.Classes)
	assert.Equal(t, "body", node.Parent.Tag)
	assert.Equal(t, "body > div.banner", NodeDescriber{}.ElementPath(node))
}

func TestDecodeEntryScriptCharPosition(t *testing.T) {
	e, err := DecodeEntry(map[string]any{
		"entryType": "long-animation-frame",
		"startTime": 400,
		"duration":  80,
		"scripts": []any{
			map[string]any{"invoker": "BUTTON.onclick", "sourceCharPosition": 42},
			map[string]any{"invoker": "TimerHandler:setTimeout"},
		},
	})
	require.NoError(t, err)

	frame := e.(*LongAnimationFrameEntry)
	require.Len(t, frame.Scripts, 2)
	require.NotNil(t, frame.Scripts[0].SourceCharPosition)
	assert.Equal(t, int64(42), *frame.Scripts[0].SourceCharPosition)
	assert.Nil(t, frame.Scripts[1].SourceCharPosition, "absent stays unknown")

	frame.Scripts = frame.Scripts[1:]
	spans := NewClassifier(testTimeOrigin, nil, "", nil).Classify(frame, RootInfo{Op: OpPageload, Active: true})
	require.Len(t, spans, 1)
	assert.NotContains(t, spans[0].Attributes, AttrScriptCharPosition)
}

func TestDecodeEntryResourceSizes(t *testing.T) {
	e, err := DecodeEntry(map[string]any{
		"entryType":     "resource",
		"name":          "https://cdn.example.com/a.css",
		"initiatorType": "link",
		"transferSize":  0,
		"deliveryType":  "",
	})
	require.NoError(t, err)

	res := e.(*ResourceEntry)
	require.NotNil(t, res.TransferSize)
	assert.Equal(t, 0.0, *res.TransferSize)
	assert.Nil(t, res.EncodedBodySize, "absent size stays nil")
	require.NotNil(t, res.DeliveryType)
	assert.Equal(t, "", *res.DeliveryType)
}

func TestDecodeEntryUnknown(t *testing.T) {
	_, err := DecodeEntry(map[string]any{"entryType": "visibility-state"})
	assert.True(t, errors.Is(err, ErrUnknownEntryType))

	_, err = DecodeEntry(map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, ErrUnknownEntryType))
}

func TestDecodeEntryBadField(t *testing.T) {
	_, err := DecodeEntry(map[string]any{"entryType": "mark", "startTime": "soon"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownEntryType))
}

func TestDecodeEntries(t *testing.T) {
	entries, err := DecodeEntries([]map[string]any{
		{"entryType": "mark", "name": "a", "startTime": 1},
		{"entryType": "element", "name": "hero"},
		{"entryType": "paint", "name": "first-paint", "startTime": 2},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, EntryMark, entries[0].EntryType())
	assert.Equal(t, EntryPaint, entries[1].EntryType())

	_, err = DecodeEntries([]map[string]any{
		{"entryType": "mark", "name": "a"},
		{"entryType": "mark", "startTime": "later"},
	})
	assert.ErrorContains(t, err, "entry 1")
}
