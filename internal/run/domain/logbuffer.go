package domain

import "sync"

// LogBuffer is the append-only log stream of a run. Lines are only ever
// appended, so a reader resuming from an offset never sees truncation or
// reordering; concurrent appends and reads are safe.
type LogBuffer struct {
	mu    sync.RWMutex
	lines []string
}

// NewLogBuffer returns an empty buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

// Append adds lines to the end of the stream.
func (b *LogBuffer) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	b.mu.Lock()
	b.lines = append(b.lines, lines...)
	b.mu.Unlock()
}

// ReadFrom returns the lines at and after offset plus the offset to resume
// from. A negative or beyond-end offset yields no lines and the current end,
// so pollers simply pass back what they received.
func (b *LogBuffer) ReadFrom(offset int) (lines []string, next int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(b.lines) {
		return []string{}, len(b.lines)
	}
	out := make([]string, len(b.lines)-offset)
	copy(out, b.lines[offset:])
	return out, len(b.lines)
}

// Len returns the number of lines written so far.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}
