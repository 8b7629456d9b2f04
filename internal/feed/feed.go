// Package feed turns one RSS/Atom feed into scored article candidates.
// Every failure mode here is soft: a dead feed, a blocked request or a
// malformed document all come back as an empty list.
package feed

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"readingroundup/internal/article"
	"readingroundup/internal/fetch"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/score"
)

// Reader parses syndication feeds via an injected fetch capability.
type Reader struct {
	fetcher       fetch.Fetcher
	parser        *gofeed.Parser
	recencyWindow time.Duration
	minScore      float64
	entryCap      int
	timeout       time.Duration

	now func() time.Time // injectable clock for recency boundary tests
}

func NewReader(fetcher fetch.Fetcher, recencyWindow time.Duration, minScore float64, entryCap int, timeout time.Duration) *Reader {
	return &Reader{
		fetcher:       fetcher,
		parser:        gofeed.NewParser(),
		recencyWindow: recencyWindow,
		minScore:      minScore,
		entryCap:      entryCap,
		timeout:       timeout,
		now:           time.Now,
	}
}

// Read fetches and parses one feed. It never returns an error: network and
// parse failures degrade to an empty candidate list.
func (r *Reader) Read(ctx context.Context, publication, feedURL string) []article.Candidate {
	if feedURL == "" {
		return nil
	}

	resp, err := r.fetcher.Fetch(ctx, feedURL, r.timeout)
	if err != nil {
		logger.Debug("feed fetch failed", "publication", publication, "url", feedURL, "error", err)
		metrics.Global.IncrementFeedsFailed()
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Global.IncrementFeedsFailed()
		return nil
	}

	parsed, err := r.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		logger.Debug("feed parse failed", "publication", publication, "url", feedURL, "error", err)
		metrics.Global.IncrementFeedsFailed()
		return nil
	}

	cutoff := r.now().Add(-r.recencyWindow)

	var candidates []article.Candidate
	entries := parsed.Items
	if len(entries) > r.entryCap {
		entries = entries[:r.entryCap]
	}

	for _, item := range entries {
		published := r.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		// Inclusive boundary: an entry dated exactly at the window edge stays.
		if published.Before(cutoff) {
			continue
		}

		if item.Title == "" || item.Link == "" {
			continue
		}

		relevance, keywords := score.Score(item.Title, item.Description)
		if relevance < r.minScore {
			continue
		}

		candidate := article.NewCandidate(publication, item.Link)
		candidate.Title = item.Title
		candidate.Summary = item.Description
		candidate.PublishedAt = published
		candidate.RelevanceScore = relevance
		candidate.KeywordsFound = keywords
		candidates = append(candidates, candidate)
	}

	metrics.Global.AddCandidatesDiscovered(len(candidates))
	return candidates
}

// ReadAll queries several feeds for one publication and unions the results.
// The returned count reports how many feeds yielded at least one candidate.
func (r *Reader) ReadAll(ctx context.Context, publication string, feedURLs []string) ([]article.Candidate, int) {
	var all []article.Candidate
	successful := 0

	for _, feedURL := range feedURLs {
		candidates := r.Read(ctx, publication, feedURL)
		if len(candidates) > 0 {
			successful++
			all = append(all, candidates...)
		}
	}

	if len(all) > 0 {
		logger.Info("feeds yielded candidates", "publication", publication,
			"candidates", len(all), "feeds_ok", successful, "feeds_total", len(feedURLs))
	} else if len(feedURLs) > 0 {
		logger.Info("no candidates from feeds", "publication", publication, "feeds_total", len(feedURLs))
	}

	return all, successful
}
