package vitalz

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownEntryType is returned by DecodeEntry for an entryType it does
// not model.
var ErrUnknownEntryType = errors.New("unknown entry type")

// entryTypeKey is the discriminator field of a raw entry.
const entryTypeKey = "entryType"

// newEntry returns an empty entry of type et, or nil for unknown types.
func newEntry(et EntryType) Entry {
	switch et {
	case EntryNavigation:
		return &NavigationEntry{}
	case EntryMark:
		return &MarkEntry{}
	case EntryPaint:
		return &PaintEntry{}
	case EntryMeasure:
		return &MeasureEntry{}
	case EntryResource:
		return &ResourceEntry{}
	case EntryEvent:
		return &EventEntry{}
	case EntryFirstInput:
		return &FirstInputEntry{}
	case EntryLongTask:
		return &LongTaskEntry{}
	case EntryLongAnimationFrame:
		return &LongAnimationFrameEntry{}
	case EntryLayoutShift:
		return &LayoutShiftEntry{}
	case EntryLargestContentfulPaint:
		return &LargestContentfulPaintEntry{}
	default:
		return nil
	}
}

// DecodeEntry converts one raw entry (as produced by a JSON or YAML decoder)
// into its typed variant, selected by the "entryType" field.
func DecodeEntry(raw map[string]any) (Entry, error) {
	name, _ := raw[entryTypeKey].(string)
	if name == "" {
		return nil, fmt.Errorf("missing %s: %w", entryTypeKey, ErrUnknownEntryType)
	}

	entry := newEntry(EntryType(name))
	if entry == nil {
		return nil, fmt.Errorf("entry type %q: %w", name, ErrUnknownEntryType)
	}

	body := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != entryTypeKey {
			body[k] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           entry,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(body); err != nil {
		return nil, fmt.Errorf("decoding %s entry: %w", name, err)
	}
	return entry, nil
}

// DecodeEntries decodes a list of raw entries in order. Entries of an
// unknown type are skipped; any other error aborts decoding.
func DecodeEntries(raw []map[string]any) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))
	for i, r := range raw {
		entry, err := DecodeEntry(r)
		if errors.Is(err, ErrUnknownEntryType) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
