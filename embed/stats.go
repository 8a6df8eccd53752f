package embed

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Stats are the counters accumulated over one embedding run. At the end of
// a run TotalChunks == CachedChunks + EmbeddedChunks + FailedChunks. The
// JSON field names match the statistics file written for observability.
type Stats struct {
	TotalChunks    int     `json:"total_chunks"`
	EmbeddedChunks int     `json:"embedded_chunks"`
	CachedChunks   int     `json:"cached_chunks"`
	FailedChunks   int     `json:"failed_chunks"`
	TotalTokens    int     `json:"total_tokens"`
	TotalCost      float64 `json:"total_cost"`
	TotalTime      float64 `json:"total_time"`
	APICalls       int     `json:"api_calls"`
	Retries        int     `json:"retries"`
}

// WriteFile dumps the stats as indented JSON for audit.
func (s Stats) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stats: write %s: %w", path, err)
	}
	return nil
}

// StatsRecorder owns the run counters. All mutation goes through its
// methods, which are safe to call from concurrent batch workers.
type StatsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

// NewStatsRecorder creates an empty recorder.
func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{}
}

// Reset zeroes all counters.
func (r *StatsRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = Stats{}
}

// AddTotal records chunks presented to the run.
func (r *StatsRecorder) AddTotal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalChunks += n
}

// AddCached records chunks satisfied from cache.
func (r *StatsRecorder) AddCached(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.CachedChunks += n
}

// AddEmbedded records chunks newly embedded.
func (r *StatsRecorder) AddEmbedded(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.EmbeddedChunks += n
}

// AddFailed records chunks that permanently failed this run.
func (r *StatsRecorder) AddFailed(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.FailedChunks += n
}

// AddTokens records estimated tokens consumed.
func (r *StatsRecorder) AddTokens(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalTokens += n
}

// AddCall records one completed remote call.
func (r *StatsRecorder) AddCall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.APICalls++
}

// AddRetry records one retry performed by the backoff driver.
func (r *StatsRecorder) AddRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Retries++
}

// Finalize computes the derived cost and wall-clock fields.
func (r *StatsRecorder) Finalize(pricePerToken float64, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalCost = float64(r.stats.TotalTokens) * pricePerToken
	r.stats.TotalTime = elapsed.Seconds()
}

// Snapshot returns a copy of the current counters.
func (r *StatsRecorder) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
