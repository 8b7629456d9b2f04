// Package collector orchestrates a collection run: gather candidates per
// publication, extract the most promising ones, and keep the top scorers up
// to the per-publication quota.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"readingroundup/internal/article"
	"readingroundup/internal/config"
	"readingroundup/internal/extract"
	"readingroundup/internal/feed"
	"readingroundup/internal/fetch"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/ratelimit"
	"readingroundup/internal/retry"
	"readingroundup/internal/sitemap"
	"readingroundup/internal/source"
)

// ErrNoPublications is returned when a run starts with nothing to collect
// from. Unlike every per-source failure this one is not absorbed.
var ErrNoPublications = errors.New("no publications configured")

// Collector drives collection across the configured publications.
type Collector struct {
	cfg        *config.Config
	sources    []config.PublicationSource
	aggregator *source.Aggregator
	extractor  *extract.Extractor
	pacer      ratelimit.Pacer
}

// New wires a collector from configuration: one paced HTTP client shared by
// feed, sitemap and article fetches, readers bound to the configured caps
// and windows.
func New(cfg *config.Config) (*Collector, error) {
	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	pacer := ratelimit.NewRequestPacer(ratelimit.DefaultPolicy())
	retryPolicy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
		MaxJitter:   time.Second,
	}
	client := fetch.NewClient(pacer, retryPolicy)

	feeds := feed.NewReader(client, cfg.RecencyWindow, cfg.MinScore, cfg.FeedEntryCap, cfg.FeedTimeout)
	sitemaps := sitemap.NewReader(client, cfg.RecencyWindow, cfg.SitemapEntryCap, cfg.SitemapChildCap, cfg.SitemapTimeout)
	aggregator := source.NewAggregator(feeds, sitemaps, source.FallbackPolicy{
		SitemapFirst:         true,
		MinSitemapCandidates: cfg.MinSitemapResults,
	})
	extractor := extract.NewExtractor(client, 150, cfg.ArticleTimeout)

	return NewWithDeps(cfg, sources, aggregator, extractor, pacer), nil
}

// NewWithDeps builds a collector from pre-assembled parts.
func NewWithDeps(cfg *config.Config, sources []config.PublicationSource, aggregator *source.Aggregator, extractor *extract.Extractor, pacer ratelimit.Pacer) *Collector {
	return &Collector{
		cfg:        cfg,
		sources:    sources,
		aggregator: aggregator,
		extractor:  extractor,
		pacer:      pacer,
	}
}

// CollectTopN runs a full collection keeping at most n articles per
// publication. An empty subset means all configured publications; a
// non-empty one restricts the run in configured order. Publications that
// yield nothing are reported with an empty group, they never abort the run.
func (c *Collector) CollectTopN(ctx context.Context, n int, subset []string) (*article.Result, error) {
	selected := config.FilterSources(c.sources, subset)
	if len(selected) == 0 {
		return nil, ErrNoPublications
	}

	result := &article.Result{StartedAt: time.Now()}
	for i, pub := range selected {
		articles := c.collectPublication(ctx, pub, n)
		result.Publications = append(result.Publications, article.PublicationResult{
			Publication: pub.Name,
			Articles:    articles,
		})
		metrics.Global.AddArticlesCollected(len(articles))

		if i < len(selected)-1 {
			if err := c.pacer.PublicationPause(ctx); err != nil {
				return nil, err
			}
		}
	}
	result.FinishedAt = time.Now()
	metrics.Global.RecordRun(result.FinishedAt.Sub(result.StartedAt))

	logger.Info("collection run finished",
		"publications", len(selected),
		"covered", result.Covered(),
		"articles", len(result.Articles()),
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Second))
	return result, nil
}

// collectPublication works through one publication's candidate pool in score
// order under a hard attempt budget. When the primary pool runs dry before
// the quota is met, the feeds are re-read for URLs not yet tried.
func (c *Collector) collectPublication(ctx context.Context, pub config.PublicationSource, quota int) []article.Candidate {
	pool := c.aggregator.Gather(ctx, pub)
	sortByScore(pool)

	logger.Info("candidate pool ready", "publication", pub.Name, "candidates", len(pool))

	var kept []article.Candidate
	tried := make(map[string]bool)
	attempts := 0
	widened := false

	for len(kept) < quota && attempts < c.cfg.MaxExtractTries {
		if len(pool) == 0 {
			if widened {
				break
			}
			widened = true
			pool = c.aggregator.FeedPool(ctx, pub, tried)
			sortByScore(pool)
			if len(pool) == 0 {
				break
			}
			logger.Debug("widened pool from feeds", "publication", pub.Name, "candidates", len(pool))
			continue
		}

		candidate := pool[0]
		pool = pool[1:]
		if tried[candidate.URL] {
			continue
		}
		tried[candidate.URL] = true
		attempts++

		extracted := c.extractor.Extract(ctx, candidate)
		if extracted == nil {
			continue
		}
		if c.cfg.EnforceMinScore && extracted.RelevanceScore < c.cfg.MinScore {
			logger.Debug("extracted article below threshold",
				"url", extracted.URL, "score", extracted.RelevanceScore)
			continue
		}
		kept = append(kept, *extracted)
	}

	sortByScore(kept)
	if len(kept) > quota {
		kept = kept[:quota]
	}

	if len(kept) == 0 {
		logger.Warn("publication yielded no articles", "publication", pub.Name, "attempts", attempts)
	}
	return kept
}

// sortByScore orders best-first; ties keep their discovery order.
func sortByScore(candidates []article.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})
}
