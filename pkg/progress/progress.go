// Package progress converts byte counts into a monotonically increasing
// percentage. Progress is measured in bytes, not rows, because file sizes
// vary widely; bytes are counted in chunks whose unit grows until the chunk
// count fits a 32-bit counter.
package progress

import (
	"math"
	"sync"
)

// DefaultChunkUnit is the base chunk size in bytes
const DefaultChunkUnit int64 = 1_000_000

// maxChunks bounds the chunk count of a batch to a thousandth of the int32 range
const maxChunks = math.MaxInt32 / 1000

// ChunkUnit returns the chunk size for a batch of totalBytes: baseUnit,
// multiplied by 1000 while totalBytes/unit exceeds maxChunks.
func ChunkUnit(totalBytes, baseUnit int64) int64 {
	if baseUnit <= 0 {
		baseUnit = DefaultChunkUnit
	}
	unit := baseUnit
	for totalBytes/unit > maxChunks {
		unit *= 1000
	}
	return unit
}

// Chunks returns the number of whole chunks in n bytes
func Chunks(n, unit int64) int32 {
	return int32(n / unit)
}

// Update is one progress report
type Update struct {
	Percent   int
	Done      int64
	Total     int64
	Row       int
	RowSource string
}

// Tracker accumulates processed bytes and reports percentage changes
type Tracker struct {
	mu       sync.Mutex
	total    int64
	unit     int64
	done     int64
	percent  int
	report   func(Update)
	finished bool
}

// NewTracker creates a tracker for totalBytes; report may be nil
func NewTracker(totalBytes, baseUnit int64, report func(Update)) *Tracker {
	return &Tracker{
		total:  totalBytes,
		unit:   ChunkUnit(totalBytes, baseUnit),
		report: report,
	}
}

// Unit returns the chunk size in use
func (t *Tracker) Unit() int64 { return t.unit }

// TotalChunks returns the chunk count of the whole batch
func (t *Tracker) TotalChunks() int32 { return Chunks(t.total, t.unit) }

// Add records n more bytes processed for row. The reported percentage never
// decreases and never exceeds 100.
func (t *Tracker) Add(n int64, row int, source string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > 0 {
		t.done += n
	}
	t.emit(row, source)
}

// Finish reports 100%
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}
	t.finished = true
	if t.percent < 100 {
		t.percent = 100
		if t.report != nil {
			t.report(Update{Percent: 100, Done: t.done, Total: t.total, Row: -1})
		}
	}
}

// Percent returns the last reported percentage
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Done returns the bytes recorded so far
func (t *Tracker) Done() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Tracker) emit(row int, source string) {
	p := t.compute()
	if p <= t.percent {
		return
	}
	t.percent = p
	if t.report != nil {
		t.report(Update{Percent: p, Done: t.done, Total: t.total, Row: row, RowSource: source})
	}
}

// compute works in chunks so the arithmetic stays within the counter range
func (t *Tracker) compute() int {
	total := int64(Chunks(t.total, t.unit))
	if total == 0 {
		if t.total == 0 || t.done >= t.total {
			return 100
		}
		return 0
	}
	done := int64(Chunks(t.done, t.unit))
	if done > total {
		done = total
	}
	return int(done * 100 / total)
}
