package embed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports embedding progress to a writer, typically
// os.Stderr. A nil writer disables output. Safe for concurrent workers.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	startedAt time.Time

	mu   sync.Mutex
	done int
}

// NewProgressTracker starts tracking progress toward total chunks.
func NewProgressTracker(w io.Writer, total int) *ProgressTracker {
	if w == nil {
		w = io.Discard
	}
	return &ProgressTracker{
		writer:    w,
		total:     total,
		startedAt: time.Now(),
	}
}

// Increment advances progress by delta chunks and reports.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done += delta
	if p.done > p.total {
		p.done = p.total
	}
	p.report()
}

// Finish reports final progress followed by a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since tracking started.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.startedAt)
}

// report prints current progress. Must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startedAt).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rEmbedding: %d/%d (%.1f%%) - %.1f chunks/s",
		p.done, p.total, percentage, rate)
}
