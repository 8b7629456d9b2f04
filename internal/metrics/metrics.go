package metrics

import (
	"sync"
	"time"
)

// Metrics tracks counters for a collection run. Exposed over the optional
// monitoring HTTP endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	CandidatesDiscovered  int64
	DuplicatesFiltered    int64
	ExtractionsSucceeded  int64
	ExtractionsFailed     int64
	FeedsFailed           int64
	SitemapsFailed        int64
	ArticlesCollected     int64
	SummariesGenerated    int64
	SummaryFallbacks      int64

	// Timings
	LastRunDuration  time.Duration
	TotalRunDuration time.Duration
	RunCount         int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddCandidatesDiscovered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesDiscovered += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementExtractionsSucceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionsSucceeded++
}

func (m *Metrics) IncrementExtractionsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionsFailed++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) IncrementSitemapsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SitemapsFailed++
}

func (m *Metrics) AddArticlesCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesCollected += int64(n)
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummaryFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFallbacks++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"candidates_discovered": m.CandidatesDiscovered,
		"duplicates_filtered":   m.DuplicatesFiltered,
		"extractions_succeeded": m.ExtractionsSucceeded,
		"extractions_failed":    m.ExtractionsFailed,
		"feeds_failed":          m.FeedsFailed,
		"sitemaps_failed":       m.SitemapsFailed,
		"articles_collected":    m.ArticlesCollected,
		"summaries_generated":   m.SummariesGenerated,
		"summary_fallbacks":     m.SummaryFallbacks,
		"last_run_duration_ms":  m.LastRunDuration.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
