package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"readingroundup/internal/fetch"
)

// stubFetcher serves canned responses keyed by URL.
type stubFetcher struct {
	responses map[string]*fetch.Response
	err       error
}

func (s *stubFetcher) Fetch(_ context.Context, url string, _ time.Duration) (*fetch.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	if resp, ok := s.responses[url]; ok {
		return resp, nil
	}
	return &fetch.Response{StatusCode: 404}, nil
}

var testNow = time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
		<title>%s</title>
		<link>%s</link>
		<description>Coverage of the latest pieces.</description>
		<pubDate>%s</pubDate>
	</item>`, title, link, published.Format(time.RFC1123Z))
}

func rssDoc(items ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>
` + strings.Join(items, "\n") + `
</channel></rss>`)
}

func newTestReader(f fetch.Fetcher) *Reader {
	r := NewReader(f, 14*24*time.Hour, 1.0, 20, time.Second)
	r.now = func() time.Time { return testNow }
	return r
}

func TestReadKeepsRecentRelevantEntries(t *testing.T) {
	doc := rssDoc(
		rssItem("Cartier unveils diamond necklace", "https://example.com/a", testNow.Add(-24*time.Hour)),
		rssItem("Tiffany opens flagship", "https://example.com/b", testNow.Add(-48*time.Hour)),
	)
	r := newTestReader(&stubFetcher{responses: map[string]*fetch.Response{
		"https://example.com/feed": {StatusCode: 200, Body: doc},
	}})

	got := r.Read(context.Background(), "Example", "https://example.com/feed")
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Publication != "Example" {
		t.Errorf("publication = %q", got[0].Publication)
	}
	if got[0].RelevanceScore < 1.0 {
		t.Errorf("score = %v, want >= threshold", got[0].RelevanceScore)
	}
}

func TestReadRecencyBoundaryInclusive(t *testing.T) {
	atBoundary := testNow.Add(-14 * 24 * time.Hour)
	doc := rssDoc(
		rssItem("Jewellery at the boundary", "https://example.com/edge", atBoundary),
		rssItem("Jewellery too old", "https://example.com/old", atBoundary.Add(-time.Hour)),
	)
	r := newTestReader(&stubFetcher{responses: map[string]*fetch.Response{
		"https://example.com/feed": {StatusCode: 200, Body: doc},
	}})

	got := r.Read(context.Background(), "Example", "https://example.com/feed")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].URL != "https://example.com/edge" {
		t.Errorf("kept %q, want the boundary entry", got[0].URL)
	}
}

func TestReadDropsIrrelevantAndIncomplete(t *testing.T) {
	doc := rssDoc(
		rssItem("Council debates parking", "https://example.com/dull", testNow.Add(-time.Hour)),
		rssItem("", "https://example.com/untitled", testNow.Add(-time.Hour)),
		rssItem("Bulgari serpenti jewellery", "https://example.com/keep", testNow.Add(-time.Hour)),
	)
	r := newTestReader(&stubFetcher{responses: map[string]*fetch.Response{
		"https://example.com/feed": {StatusCode: 200, Body: doc},
	}})

	got := r.Read(context.Background(), "Example", "https://example.com/feed")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].URL != "https://example.com/keep" {
		t.Errorf("kept %q", got[0].URL)
	}
}

func TestReadEntryCap(t *testing.T) {
	var items []string
	for i := 0; i < 5; i++ {
		items = append(items, rssItem("Diamond jewellery news", fmt.Sprintf("https://example.com/%d", i), testNow.Add(-time.Hour)))
	}
	r := newTestReader(&stubFetcher{responses: map[string]*fetch.Response{
		"https://example.com/feed": {StatusCode: 200, Body: rssDoc(items...)},
	}})
	r.entryCap = 3

	got := r.Read(context.Background(), "Example", "https://example.com/feed")
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want cap of 3", len(got))
	}
}

func TestReadSoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fetch.Fetcher
	}{
		{"transport error", &stubFetcher{err: errors.New("connection refused")}},
		{"non-200 status", &stubFetcher{responses: map[string]*fetch.Response{
			"https://example.com/feed": {StatusCode: 403, Body: []byte("blocked")},
		}}},
		{"malformed document", &stubFetcher{responses: map[string]*fetch.Response{
			"https://example.com/feed": {StatusCode: 200, Body: []byte("not a feed at all")},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.fetcher)
			if got := r.Read(context.Background(), "Example", "https://example.com/feed"); len(got) != 0 {
				t.Errorf("got %d candidates, want none", len(got))
			}
		})
	}
}

func TestReadAllCountsSuccessfulFeeds(t *testing.T) {
	doc := rssDoc(rssItem("Chanel jewellery show", "https://example.com/a", testNow.Add(-time.Hour)))
	r := newTestReader(&stubFetcher{responses: map[string]*fetch.Response{
		"https://example.com/ok": {StatusCode: 200, Body: doc},
	}})

	got, successes := r.ReadAll(context.Background(), "Example", []string{
		"https://example.com/ok",
		"https://example.com/dead",
	})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if successes != 1 {
		t.Errorf("successes = %d, want 1", successes)
	}
}
