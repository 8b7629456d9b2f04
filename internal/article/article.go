// Package article holds the shared data model for the collection pipeline.
package article

import "time"

// Candidate is a prospective article: discovered via feed or sitemap, not
// necessarily fully fetched yet. FullContent stays empty until the content
// extractor has succeeded for it.
type Candidate struct {
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Publication    string    `json:"publication"`
	PublishedAt    time.Time `json:"published_date"`
	Summary        string    `json:"summary"`
	Author         string    `json:"author"`
	RelevanceScore float64   `json:"relevance_score"`
	KeywordsFound  []string  `json:"keywords_found"`
	FullContent    string    `json:"full_content"`
	DigestSummary  string    `json:"digest_summary,omitempty"`
}

// NewCandidate builds a candidate with the defaults the rest of the pipeline
// relies on (author unknown until resolved, published date best-effort now).
func NewCandidate(publication, url string) Candidate {
	return Candidate{
		URL:         url,
		Publication: publication,
		PublishedAt: time.Now(),
		Author:      "Unknown",
	}
}

// PublicationResult is the bounded per-publication outcome of one run.
type PublicationResult struct {
	Publication string
	Articles    []Candidate
}

// Result is the outcome of a full collection run, grouped by publication in
// configured iteration order. Immutable once the orchestrator returns it.
type Result struct {
	Publications []PublicationResult
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Articles flattens the per-publication groups preserving their order.
func (r *Result) Articles() []Candidate {
	var all []Candidate
	for _, pub := range r.Publications {
		all = append(all, pub.Articles...)
	}
	return all
}

// Covered counts publications that yielded at least one article.
func (r *Result) Covered() int {
	n := 0
	for _, pub := range r.Publications {
		if len(pub.Articles) > 0 {
			n++
		}
	}
	return n
}
