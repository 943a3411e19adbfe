package vitalz

// EntryCursor remembers how much of the host's cumulative entry log has
// been consumed so each entry is classified exactly once.
type EntryCursor struct {
	pos int
}

// Drain returns the entries appended to log since the previous call and
// advances the cursor past them. A cursor beyond the end of log (the host
// cleared its buffer) yields nothing and is clamped to the new length.
func (c *EntryCursor) Drain(log []Entry) []Entry {
	if c.pos >= len(log) {
		c.pos = len(log)
		return nil
	}
	fresh := make([]Entry, len(log)-c.pos)
	copy(fresh, log[c.pos:])
	c.pos = len(log)
	return fresh
}

// Position returns the index of the next unconsumed entry.
func (c *EntryCursor) Position() int {
	return c.pos
}

// Reset rewinds the cursor to the start of the log.
func (c *EntryCursor) Reset() {
	c.pos = 0
}
