package logs

import (
	"fmt"
	"sync"
	"time"
)

// Layout of timestamps prefixed to log lines.
const Layout = "2006-01-02T15:04:05"

// Buffer is a user-facing log of one payload.
//
// Lines are "YYYY-MM-DDTHH:MM:SS message" for pipeline messages,
// or lines of the worker as they are.
//
// Buffer is safe for concurrent use.
type Buffer struct {
	mu    sync.Mutex
	tz    *time.Location
	now   func() time.Time
	lines []string
}

type Option func(*Buffer)

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		b.now = now
	}
}

// New creates an empty Buffer writing timestamps in tz.
//
// When tz is nil, UTC is used.
func New(tz *time.Location, options ...Option) *Buffer {
	if tz == nil {
		tz = time.UTC
	}
	b := &Buffer{tz: tz, now: time.Now, lines: []string{}}
	for _, o := range options {
		o(b)
	}
	return b
}

// Add appends a timestamped message.
func (b *Buffer) Add(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, Stamp(b.now().In(b.tz), message))
}

// Addf is Add with formatting.
func (b *Buffer) Addf(format string, args ...any) {
	b.Add(fmt.Sprintf(format, args...))
}

// Append appends lines as they are.
func (b *Buffer) Append(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, lines...)
}

// Lines returns a snapshot of lines.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Stamp formats a log line.
func Stamp(t time.Time, message string) string {
	return t.Format(Layout) + " " + message
}
