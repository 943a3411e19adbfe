package vitalz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marks(names ...string) []Entry {
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = &MarkEntry{EntryBase{Name: n, StartTime: float64(i)}}
	}
	return out
}

func TestEntryCursorDrain(t *testing.T) {
	var c EntryCursor
	log := marks("a", "b", "c")

	got := c.Drain(log)
	require.Len(t, got, 3)
	assert.Equal(t, 3, c.Position())

	// Nothing new: nothing returned, however often it is called.
	assert.Empty(t, c.Drain(log))
	assert.Empty(t, c.Drain(log))

	log = append(log, marks("d", "e")...)
	got = c.Drain(log)
	require.Len(t, got, 2)
	assert.Equal(t, "e", got[1].EntryName())
	assert.Equal(t, 5, c.Position())
}

func TestEntryCursorDrainCopies(t *testing.T) {
	var c EntryCursor
	log := marks("a", "b")

	got := c.Drain(log)
	got[0] = nil
	assert.NotNil(t, log[0])
}

func TestEntryCursorEmptyLog(t *testing.T) {
	var c EntryCursor
	assert.Nil(t, c.Drain(nil))
	assert.Zero(t, c.Position())
}

func TestEntryCursorClearedLog(t *testing.T) {
	var c EntryCursor
	c.Drain(marks("a", "b", "c", "d"))

	// The host cleared its buffer and recorded one new entry.
	assert.Empty(t, c.Drain(marks("x")))
	assert.Equal(t, 1, c.Position())

	got := c.Drain(marks("x", "y"))
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].EntryName())
}

func TestEntryCursorReset(t *testing.T) {
	var c EntryCursor
	log := marks("a", "b")
	c.Drain(log)
	c.Reset()

	assert.Len(t, c.Drain(log), 2)
}
