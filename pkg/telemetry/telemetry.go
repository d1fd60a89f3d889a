// Package telemetry keeps lightweight in-process counters for the health
// endpoint. No external sink; everything is exposed through Snapshot.
package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the gateway's runtime counters.
type Metrics struct {
	started time.Time

	analysesTotal    atomic.Int64
	imageAnalyses    atomic.Int64
	textAnalyses     atomic.Int64
	syntheticCount   atomic.Int64
	analyzerFailures atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	historyErrors    atomic.Int64
}

var (
	global     *Metrics
	globalOnce sync.Once
)

// Global returns the process-wide metrics instance.
func Global() *Metrics {
	globalOnce.Do(func() {
		global = &Metrics{started: time.Now()}
	})
	return global
}

// RecordAnalysis counts one completed analysis.
func (m *Metrics) RecordAnalysis(contentType string, synthetic bool) {
	m.analysesTotal.Add(1)
	switch contentType {
	case "image":
		m.imageAnalyses.Add(1)
	case "text":
		m.textAnalyses.Add(1)
	}
	if synthetic {
		m.syntheticCount.Add(1)
	}
}

// RecordAnalyzerFailures counts failed analyzer outputs within a request.
func (m *Metrics) RecordAnalyzerFailures(n int) {
	if n > 0 {
		m.analyzerFailures.Add(int64(n))
	}
}

// RecordCacheHit counts a cached result being served.
func (m *Metrics) RecordCacheHit() { m.cacheHits.Add(1) }

// RecordCacheMiss counts a full pipeline run.
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Add(1) }

// RecordHistoryError counts a failed history write.
func (m *Metrics) RecordHistoryError() { m.historyErrors.Add(1) }

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	UptimeSeconds    int64 `json:"uptime_seconds"`
	AnalysesTotal    int64 `json:"analyses_total"`
	ImageAnalyses    int64 `json:"image_analyses"`
	TextAnalyses     int64 `json:"text_analyses"`
	SyntheticCount   int64 `json:"synthetic_count"`
	AnalyzerFailures int64 `json:"analyzer_failures"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	HistoryErrors    int64 `json:"history_errors"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:    int64(time.Since(m.started).Seconds()),
		AnalysesTotal:    m.analysesTotal.Load(),
		ImageAnalyses:    m.imageAnalyses.Load(),
		TextAnalyses:     m.textAnalyses.Load(),
		SyntheticCount:   m.syntheticCount.Load(),
		AnalyzerFailures: m.analyzerFailures.Load(),
		CacheHits:        m.cacheHits.Load(),
		CacheMisses:      m.cacheMisses.Load(),
		HistoryErrors:    m.historyErrors.Load(),
	}
}
