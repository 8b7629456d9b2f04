// Package extract turns a discovered candidate into a fully-populated
// article: body text via readability, metadata backfill from the page head,
// author resolution, and a definitive relevance score over the full content.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"readingroundup/internal/article"
	"readingroundup/internal/fetch"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/score"
)

// bylineRe matches "By First Last" style credits near the top of a page.
var bylineRe = regexp.MustCompile(`\b[Bb]y\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)

// bylineScanWindow bounds how deep into the page text the byline regex looks.
const bylineScanWindow = 800

// Extractor fetches article pages and fills in candidate fields.
type Extractor struct {
	fetcher       fetch.Fetcher
	minBodyLength int
	timeout       time.Duration
}

func NewExtractor(fetcher fetch.Fetcher, minBodyLength int, timeout time.Duration) *Extractor {
	return &Extractor{fetcher: fetcher, minBodyLength: minBodyLength, timeout: timeout}
}

// Extract fetches the candidate's page and returns the enriched copy, or nil
// when the page is unreachable, unparseable, or too thin to score honestly.
// The input candidate is never mutated.
func (e *Extractor) Extract(ctx context.Context, c article.Candidate) *article.Candidate {
	resp, err := e.fetcher.Fetch(ctx, c.URL, e.timeout)
	if err != nil {
		logger.Debug("article fetch failed", "url", c.URL, "error", err)
		metrics.Global.IncrementExtractionsFailed()
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		logger.Debug("article fetch non-200", "url", c.URL, "status", resp.StatusCode)
		metrics.Global.IncrementExtractionsFailed()
		return nil
	}

	pageURL, err := url.Parse(c.URL)
	if err != nil {
		metrics.Global.IncrementExtractionsFailed()
		return nil
	}

	parsed, err := readability.FromReader(bytes.NewReader(resp.Body), pageURL)
	if err != nil {
		logger.Debug("readability parse failed", "url", c.URL, "error", err)
		metrics.Global.IncrementExtractionsFailed()
		return nil
	}

	body := strings.TrimSpace(parsed.TextContent)
	if len(body) < e.minBodyLength {
		logger.Debug("article body too short", "url", c.URL, "length", len(body))
		metrics.Global.IncrementExtractionsFailed()
		return nil
	}

	enriched := c
	enriched.FullContent = body

	if enriched.Title == "" {
		enriched.Title = strings.TrimSpace(parsed.Title)
	}

	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if docErr == nil {
		if desc := metaDescription(doc); len(desc) > len(enriched.Summary) {
			enriched.Summary = desc
		}
	}

	enriched.Author = resolveAuthor(doc, parsed.Byline, enriched.Title+" "+enriched.Summary+" "+body)

	// Score over the real content replaces the discovery-time placeholder.
	enriched.RelevanceScore, enriched.KeywordsFound = score.Score(enriched.Title, body)

	metrics.Global.IncrementExtractionsSucceeded()
	return &enriched
}

func metaDescription(doc *goquery.Document) string {
	for _, sel := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
	} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if desc := strings.TrimSpace(content); desc != "" {
				return desc
			}
		}
	}
	return ""
}

// resolveAuthor tries structured data first, then the readability byline,
// then a credit-line regex over the top of the page text, and finally gives
// up with "Unknown".
func resolveAuthor(doc *goquery.Document, byline, pageText string) string {
	if doc != nil {
		if author := jsonLDAuthor(doc); author != "" {
			return author
		}
	}

	if cleaned := cleanByline(byline); cleaned != "" {
		return cleaned
	}

	window := pageText
	if len(window) > bylineScanWindow {
		window = window[:bylineScanWindow]
	}
	if m := bylineRe.FindStringSubmatch(window); m != nil {
		return m[1]
	}

	return "Unknown"
}

// jsonLDAuthor pulls an author name out of any ld+json block on the page.
// The author field shows up as a bare string, an object, or a list of
// either, depending on the CMS.
func jsonLDAuthor(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if name := authorName(data["author"]); name != "" {
			found = name
			return false
		}
		return true
	})
	return found
}

func authorName(v interface{}) string {
	switch author := v.(type) {
	case string:
		return strings.TrimSpace(author)
	case map[string]interface{}:
		if name, ok := author["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	case []interface{}:
		for _, item := range author {
			if name := authorName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

func cleanByline(byline string) string {
	cleaned := strings.TrimSpace(byline)
	cleaned = strings.TrimPrefix(cleaned, "By ")
	cleaned = strings.TrimPrefix(cleaned, "by ")
	return strings.TrimSpace(cleaned)
}
