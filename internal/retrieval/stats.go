package retrieval

import (
	"sort"
	"sync"
	"time"
)

type querySample struct {
	timestamp  time.Time
	durationMs int64
	topScore   float64
	selected   int
}

// StatsSnapshot is a point-in-time aggregate of recent retrieval
// queries.
type StatsSnapshot struct {
	Count       int     `json:"count"`
	AvgMs       float64 `json:"avg_ms"`
	P50Ms       float64 `json:"p50_ms"`
	P95Ms       float64 `json:"p95_ms"`
	AvgTopScore float64 `json:"avg_top_score"`
	AvgSelected float64 `json:"avg_selected"`
	EmptyRate   float64 `json:"empty_rate"`
}

// QueryStats tracks retrieval latency and result quality within a
// rolling window.
type QueryStats struct {
	mu      sync.Mutex
	samples []querySample
	maxAge  time.Duration
}

func NewQueryStats(maxAge time.Duration) *QueryStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &QueryStats{
		samples: make([]querySample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one query's outcome.
func (s *QueryStats) Record(duration time.Duration, result Result) {
	sample := querySample{
		timestamp:  time.Now(),
		durationMs: duration.Milliseconds(),
		selected:   len(result.Chunks),
	}
	if len(result.Chunks) > 0 {
		sample.topScore = result.Chunks[0].Score
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(sample.timestamp)
	s.samples = append(s.samples, sample)
}

// Snapshot aggregates the current window.
func (s *QueryStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	durations := make([]int64, 0, len(s.samples))
	var durSum int64
	var scoreSum, selectedSum float64
	empty := 0
	for _, sm := range s.samples {
		durations = append(durations, sm.durationMs)
		durSum += sm.durationMs
		scoreSum += sm.topScore
		selectedSum += float64(sm.selected)
		if sm.selected == 0 {
			empty++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	n := float64(len(s.samples))
	return StatsSnapshot{
		Count:       len(s.samples),
		AvgMs:       float64(durSum) / n,
		P50Ms:       percentile(durations, 50),
		P95Ms:       percentile(durations, 95),
		AvgTopScore: scoreSum / n,
		AvgSelected: selectedSum / n,
		EmptyRate:   float64(empty) / n,
	}
}

func (s *QueryStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}
	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
