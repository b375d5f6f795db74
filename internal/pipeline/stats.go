package pipeline

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates the classification samples of the window.
type StatsSnapshot struct {
	Count    int            `json:"count"`
	ByStatus map[Status]int `json:"by_status"`
	MinMs    int64          `json:"min_ms"`
	MaxMs    int64          `json:"max_ms"`
	AvgMs    float64        `json:"avg_ms"`
	P50Ms    float64        `json:"p50_ms"`
	P95Ms    float64        `json:"p95_ms"`
	P99Ms    float64        `json:"p99_ms"`
}

type sample struct {
	at     time.Time
	ms     int64
	status Status
}

// Stats keeps classification latencies of the last window, e.g. one hour.
type Stats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []sample // ordered by at
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, samples: make([]sample, 0, 256)}
}

// Record adds one classification outcome. Negative durations count as zero.
func (s *Stats) Record(status Status, d time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(now)
	s.samples = append(s.samples, sample{at: now, ms: max(d.Milliseconds(), 0), status: status})
}

func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{ByStatus: make(map[Status]int)}

	s.mu.Lock()
	s.expire(time.Now())
	ms := make([]int64, len(s.samples))
	var total int64
	for i, sm := range s.samples {
		ms[i] = sm.ms
		total += sm.ms
		snap.ByStatus[sm.status]++
	}
	s.mu.Unlock()

	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)
	snap.Count = len(ms)
	snap.MinMs, snap.MaxMs = ms[0], ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expire drops samples older than the window. Samples are appended in time
// order, so the expired ones are a prefix.
func (s *Stats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	n, _ := slices.BinarySearchFunc(s.samples, cutoff, func(sm sample, t time.Time) int {
		return sm.at.Compare(t)
	})
	s.samples = slices.Delete(s.samples, 0, n)
}

// percentile interpolates between the two closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	pos := (float64(len(sorted)-1) * pct) / 100
	lo := int(pos)
	hi := min(lo+1, len(sorted)-1)
	frac := pos - float64(lo)
	return float64(sorted[lo]) + float64(sorted[hi]-sorted[lo])*frac
}
