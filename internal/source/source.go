// Package source combines a publication's sitemap and feeds into one
// candidate pool, preferring the sitemap and falling back to feeds when it
// yields too little.
package source

import (
	"context"

	"readingroundup/internal/article"
	"readingroundup/internal/config"
	"readingroundup/internal/feed"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/sitemap"
)

// FallbackPolicy controls when feeds supplement the sitemap pool.
type FallbackPolicy struct {
	// SitemapFirst tries the sitemap before any feed.
	SitemapFirst bool
	// MinSitemapCandidates is the sitemap yield below which feeds are read.
	MinSitemapCandidates int
}

// Aggregator gathers candidates for a single publication from both source
// kinds and dedupes them by URL.
type Aggregator struct {
	feeds    *feed.Reader
	sitemaps *sitemap.Reader
	policy   FallbackPolicy
}

func NewAggregator(feeds *feed.Reader, sitemaps *sitemap.Reader, policy FallbackPolicy) *Aggregator {
	return &Aggregator{feeds: feeds, sitemaps: sitemaps, policy: policy}
}

// Gather returns a publication's deduplicated candidate pool. A publication
// with a sitemap uses it as primary source; feeds fill in when the sitemap is
// dead or thin. A publication with no sitemap goes straight to its feeds.
// Individual source failures never fail the pool, they only shrink it.
func (a *Aggregator) Gather(ctx context.Context, pub config.PublicationSource) []article.Candidate {
	var pool []article.Candidate

	sitemapTried := false
	if a.policy.SitemapFirst && pub.SitemapURL != "" {
		sitemapTried = true
		pool = a.sitemaps.ReadArticles(ctx, pub.Name, pub.SitemapURL, pub.ExcludedURLs)
		if len(pool) >= a.policy.MinSitemapCandidates {
			return dedupe(pool)
		}
		if len(pool) > 0 {
			logger.Info("sitemap thin, supplementing from feeds",
				"publication", pub.Name, "sitemap_candidates", len(pool))
		}
	}

	if len(pub.FeedURLs) > 0 {
		fromFeeds, successes := a.feeds.ReadAll(ctx, pub.Name, pub.FeedURLs)
		pool = append(pool, fromFeeds...)
		if successes == 0 && len(pub.FeedURLs) > 0 {
			logger.Warn("all feeds failed", "publication", pub.Name, "feeds", len(pub.FeedURLs))
		}
	}

	if !sitemapTried && pub.SitemapURL != "" {
		pool = append(pool, a.sitemaps.ReadArticles(ctx, pub.Name, pub.SitemapURL, pub.ExcludedURLs)...)
	}

	return dedupe(pool)
}

// FeedPool reads only the publication's feeds, skipping URLs already seen.
// The collector uses it to widen the pool after its primary batch runs dry.
func (a *Aggregator) FeedPool(ctx context.Context, pub config.PublicationSource, seen map[string]bool) []article.Candidate {
	if len(pub.FeedURLs) == 0 {
		return nil
	}
	fromFeeds, _ := a.feeds.ReadAll(ctx, pub.Name, pub.FeedURLs)
	var fresh []article.Candidate
	for _, c := range fromFeeds {
		if seen[c.URL] {
			continue
		}
		fresh = append(fresh, c)
	}
	return dedupe(fresh)
}

// dedupe keeps the first occurrence of each URL. Order within the pool is
// otherwise preserved.
func dedupe(candidates []article.Candidate) []article.Candidate {
	if len(candidates) < 2 {
		return candidates
	}
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if seen[c.URL] {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}
