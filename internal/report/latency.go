package report

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// LatencyTracker records query durations and reports percentiles. Safe for
// concurrent use.
type LatencyTracker struct {
	mu        sync.Mutex
	durations []time.Duration
}

// Observe records one query duration.
func (t *LatencyTracker) Observe(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.durations = append(t.durations, d)
}

// Count returns how many durations were recorded.
func (t *LatencyTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.durations)
}

// Percentile returns the p-th percentile (0 < p <= 100) by
// nearest-rank over the recorded durations. Zero when nothing was recorded.
func (t *LatencyTracker) Percentile(p float64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.durations)
	if n == 0 {
		return 0
	}

	sorted := make([]time.Duration, n)
	copy(sorted, t.durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(p/100*float64(n)+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}

// Render formats the standard percentile summary.
func (t *LatencyTracker) Render() string {
	return fmt.Sprintf("queries: %d, p50: %s, p90: %s, p99: %s",
		t.Count(),
		t.Percentile(50).Round(time.Millisecond),
		t.Percentile(90).Round(time.Millisecond),
		t.Percentile(99).Round(time.Millisecond))
}
