package embed

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRecorder_Accounting(t *testing.T) {
	r := NewStatsRecorder()
	r.AddTotal(10)
	r.AddCached(4)
	r.AddEmbedded(5)
	r.AddFailed(1)
	r.AddTokens(1200)
	r.AddCall()
	r.AddCall()
	r.AddRetry()
	r.Finalize(0.0001, 2*time.Second)

	s := r.Snapshot()
	assert.Equal(t, 10, s.TotalChunks)
	assert.Equal(t, s.TotalChunks, s.CachedChunks+s.EmbeddedChunks+s.FailedChunks)
	assert.Equal(t, 1200, s.TotalTokens)
	assert.Equal(t, 2, s.APICalls)
	assert.Equal(t, 1, s.Retries)
	assert.InDelta(t, 0.12, s.TotalCost, 1e-9)
	assert.InDelta(t, 2.0, s.TotalTime, 1e-9)
}

func TestStatsRecorder_Reset(t *testing.T) {
	r := NewStatsRecorder()
	r.AddTotal(3)
	r.AddRetry()
	r.Reset()
	assert.Equal(t, Stats{}, r.Snapshot())
}

func TestStatsRecorder_ConcurrentAdds(t *testing.T) {
	r := NewStatsRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.AddEmbedded(1)
			r.AddTokens(10)
			r.AddCall()
		}()
	}
	wg.Wait()

	s := r.Snapshot()
	assert.Equal(t, 50, s.EmbeddedChunks)
	assert.Equal(t, 500, s.TotalTokens)
	assert.Equal(t, 50, s.APICalls)
}

func TestStats_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	s := Stats{TotalChunks: 7, EmbeddedChunks: 5, CachedChunks: 2, TotalTokens: 900, APICalls: 3}
	require.NoError(t, s.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Stats
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s, got)

	// Field names are part of the on-disk contract.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"total_chunks", "embedded_chunks", "cached_chunks", "failed_chunks", "total_tokens", "total_cost", "total_time", "api_calls", "retries"} {
		assert.Contains(t, raw, key)
	}
}
