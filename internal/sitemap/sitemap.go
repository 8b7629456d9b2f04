// Package sitemap reads XML sitemaps into article candidates. Publishers
// serve these in wildly inconsistent shapes and encodings, so parsing runs
// through a cascade of decoding strategies and recognizes both the
// sitemap-index and URL-set document forms. All failures are soft.
package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"readingroundup/internal/article"
	"readingroundup/internal/fetch"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/score"
)

// Entry is one page reference from a URL set.
type Entry struct {
	URL        string
	LastMod    time.Time
	HasLastMod bool
}

// Sections that never contain jewellery coverage; URLs mentioning them are
// skipped before any fetch happens.
var blockedTerms = []string{
	"recipe", "food", "travel", "politics", "sports", "health", "weather",
	"football", "soccer", "cricket", "tennis",
}

// Reader fetches and parses sitemaps via an injected fetch capability.
type Reader struct {
	fetcher       fetch.Fetcher
	recencyWindow time.Duration
	entryCap      int
	childCap      int
	timeout       time.Duration
	keywords      []string

	now func() time.Time
}

func NewReader(fetcher fetch.Fetcher, recencyWindow time.Duration, entryCap, childCap int, timeout time.Duration) *Reader {
	return &Reader{
		fetcher:       fetcher,
		recencyWindow: recencyWindow,
		entryCap:      entryCap,
		childCap:      childCap,
		timeout:       timeout,
		keywords:      score.Keywords(),
		now:           time.Now,
	}
}

// Read fetches one sitemap and returns its page entries. A sitemap index is
// followed into its first childCap children; nested indexes below that are
// not descended further. Errors degrade to an empty slice.
func (r *Reader) Read(ctx context.Context, sitemapURL string) []Entry {
	doc := r.fetchDoc(ctx, sitemapURL)
	if doc == nil {
		return nil
	}

	if doc.index != nil {
		var entries []Entry
		children := doc.index.Sitemaps
		if len(children) > r.childCap {
			children = children[:r.childCap]
		}
		for _, child := range children {
			if child.Loc == "" {
				continue
			}
			childDoc := r.fetchDoc(ctx, strings.TrimSpace(child.Loc))
			if childDoc == nil || childDoc.urlset == nil {
				continue
			}
			entries = append(entries, r.entriesFrom(childDoc.urlset)...)
		}
		return entries
	}

	return r.entriesFrom(doc.urlset)
}

// ReadArticles reads a sitemap and turns qualifying entries into candidates.
// Entries pass a recency filter (when dated) and a URL pre-filter; survivors
// carry a placeholder score until full content is extracted.
func (r *Reader) ReadArticles(ctx context.Context, publication, sitemapURL string, excludedURLs []string) []article.Candidate {
	entries := r.Read(ctx, sitemapURL)
	if len(entries) == 0 {
		return nil
	}

	if len(entries) > r.entryCap {
		entries = entries[:r.entryCap]
	}

	cutoff := r.now().Add(-r.recencyWindow)
	excluded := make(map[string]bool, len(excludedURLs))
	for _, u := range excludedURLs {
		excluded[strings.TrimRight(u, "/")] = true
	}

	var candidates []article.Candidate
	for _, entry := range entries {
		// Undated entries are treated as fresh; dated ones must fall inside
		// the window, boundary inclusive.
		if entry.HasLastMod && entry.LastMod.Before(cutoff) {
			continue
		}
		if !r.relevantURL(entry.URL, excluded) {
			continue
		}

		candidate := article.NewCandidate(publication, entry.URL)
		if entry.HasLastMod {
			candidate.PublishedAt = entry.LastMod
		}
		candidate.RelevanceScore = 1.0 // placeholder until full-content scoring
		candidates = append(candidates, candidate)
	}

	if len(candidates) > 0 {
		logger.Info("sitemap yielded candidates", "publication", publication, "candidates", len(candidates))
	}
	metrics.Global.AddCandidatesDiscovered(len(candidates))
	return candidates
}

// relevantURL requires at least one taxonomy keyword in the URL, no blocked
// section term, and no match against the publication's static exclusions.
func (r *Reader) relevantURL(rawURL string, excluded map[string]bool) bool {
	if excluded[strings.TrimRight(rawURL, "/")] {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	for _, keyword := range r.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (r *Reader) entriesFrom(us *urlSet) []Entry {
	if us == nil {
		return nil
	}
	entries := make([]Entry, 0, len(us.URLs))
	for _, u := range us.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		entry := Entry{URL: loc}
		if lm := strings.TrimSpace(u.LastMod); lm != "" {
			if t, err := dateparse.ParseAny(lm); err == nil {
				entry.LastMod = t
				entry.HasLastMod = true
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func (r *Reader) fetchDoc(ctx context.Context, sitemapURL string) *document {
	resp, err := r.fetcher.Fetch(ctx, sitemapURL, r.timeout)
	if err != nil {
		logger.Debug("sitemap fetch failed", "url", sitemapURL, "error", err)
		metrics.Global.IncrementSitemapsFailed()
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Global.IncrementSitemapsFailed()
		return nil
	}

	doc := parseWithFallbacks(resp.Body)
	if doc == nil {
		logger.Warn("sitemap undecodable", "url", sitemapURL)
		metrics.Global.IncrementSitemapsFailed()
	}
	return doc
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []urlSetItem `xml:"url"`
}

type urlSetItem struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

type document struct {
	urlset *urlSet
	index  *sitemapIndex
}

// parseWithFallbacks tries each decoding strategy in order and stops at the
// first one producing well-formed XML: auto-detected charset, raw UTF-8,
// ISO-8859-1, then manual gzip decompression followed by UTF-8.
func parseWithFallbacks(body []byte) *document {
	for _, decode := range []func([]byte) ([]byte, error){
		decodeDetected,
		decodeUTF8,
		decodeLatin1,
		decodeGzip,
	} {
		data, err := decode(body)
		if err != nil {
			continue
		}
		if doc := parseDocument(data); doc != nil {
			return doc
		}
	}
	return nil
}

func decodeDetected(body []byte) ([]byte, error) {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil {
		return nil, err
	}
	enc, err := ianaindex.IANA.Encoding(result.Charset)
	if err != nil || enc == nil {
		return body, nil
	}
	return enc.NewDecoder().Bytes(body)
}

func decodeUTF8(body []byte) ([]byte, error) {
	return body, nil
}

func decodeLatin1(body []byte) ([]byte, error) {
	return charmap.ISO8859_1.NewDecoder().Bytes(body)
}

func decodeGzip(body []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func parseDocument(data []byte) *document {
	var us urlSet
	if err := unmarshalLoose(data, &us); err == nil {
		return &document{urlset: &us}
	}

	var idx sitemapIndex
	if err := unmarshalLoose(data, &idx); err == nil {
		return &document{index: &idx}
	}

	return nil
}

// unmarshalLoose parses XML whose bytes were already transcoded to UTF-8,
// regardless of the charset the document declares.
func unmarshalLoose(data []byte, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec.Decode(v)
}
