package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"readingroundup/internal/config"
	"readingroundup/internal/extract"
	"readingroundup/internal/feed"
	"readingroundup/internal/fetch"
	"readingroundup/internal/ratelimit"
	"readingroundup/internal/sitemap"
	"readingroundup/internal/source"
)

type stubFetcher struct {
	responses map[string]*fetch.Response
}

func (s *stubFetcher) Fetch(_ context.Context, url string, _ time.Duration) (*fetch.Response, error) {
	if resp, ok := s.responses[url]; ok {
		return resp, nil
	}
	return &fetch.Response{StatusCode: 404}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		QuotaPerSource:    3,
		RecencyWindow:     14 * 24 * time.Hour,
		MinScore:          1.0,
		MaxExtractTries:   20,
		FeedEntryCap:      20,
		SitemapEntryCap:   50,
		SitemapChildCap:   3,
		MinSitemapResults: 3,
	}
}

func newTestCollector(cfg *config.Config, sources []config.PublicationSource, fetcher fetch.Fetcher) *Collector {
	feeds := feed.NewReader(fetcher, cfg.RecencyWindow, cfg.MinScore, cfg.FeedEntryCap, time.Second)
	sitemaps := sitemap.NewReader(fetcher, cfg.RecencyWindow, cfg.SitemapEntryCap, cfg.SitemapChildCap, time.Second)
	aggregator := source.NewAggregator(feeds, sitemaps, source.FallbackPolicy{
		SitemapFirst:         true,
		MinSitemapCandidates: cfg.MinSitemapResults,
	})
	extractor := extract.NewExtractor(fetcher, 150, time.Second)
	return NewWithDeps(cfg, sources, aggregator, extractor, &ratelimit.NopPacer{})
}

const filler = "The pieces were shown to private clients ahead of the public opening, " +
	"and several have already been reserved according to people at the presentation. " +
	"Prices were not disclosed but are understood to start in the six figures."

func articlePage(title, lede string) []byte {
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>%s</title></head>
<body><article><h1>%s</h1><p>%s</p><p>%s</p><p>%s</p></article></body></html>`,
		title, title, lede, filler, filler))
}

func urlsetDoc(locs ...string) []byte {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		doc += fmt.Sprintf("<url><loc>%s</loc></url>", loc)
	}
	return []byte(doc + "</urlset>")
}

func rssDoc(links ...string) []byte {
	doc := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>`
	pub := time.Now().Add(-time.Hour).Format(time.RFC1123Z)
	for _, link := range links {
		doc += fmt.Sprintf("<item><title>Diamond jewellery update</title><link>%s</link><pubDate>%s</pubDate></item>", link, pub)
	}
	return []byte(doc + "</channel></rss>")
}

func TestCollectTopNKeepsBestUpToQuota(t *testing.T) {
	responses := map[string]*fetch.Response{
		"https://example.com/sitemap.xml": {StatusCode: 200, Body: urlsetDoc(
			"https://example.com/jewellery-1",
			"https://example.com/jewellery-2",
			"https://example.com/jewellery-3",
			"https://example.com/jewellery-4",
			"https://example.com/jewellery-5",
		)},
	}
	// Page 1 carries far more taxonomy terms than the rest so it must rank
	// first after extraction.
	responses["https://example.com/jewellery-1"] = &fetch.Response{StatusCode: 200, Body: articlePage(
		"Cartier luxury jewellery triumph",
		"Cartier showed luxury fine jewellery with diamond, gold and emerald necklace pieces built on craftsmanship.")}
	for i := 2; i <= 5; i++ {
		responses[fmt.Sprintf("https://example.com/jewellery-%d", i)] = &fetch.Response{StatusCode: 200, Body: articlePage(
			fmt.Sprintf("Silver piece number %d", i),
			"A single silver bangle was the quiet star of the presentation.")}
	}

	sources := []config.PublicationSource{{Name: "Example", SitemapURL: "https://example.com/sitemap.xml"}}
	c := newTestCollector(testConfig(), sources, &stubFetcher{responses: responses})

	result, err := c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	articles := result.Articles()
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want quota of 3", len(articles))
	}
	for i := 1; i < len(articles); i++ {
		if articles[i].RelevanceScore > articles[i-1].RelevanceScore {
			t.Errorf("articles not sorted: %v before %v",
				articles[i-1].RelevanceScore, articles[i].RelevanceScore)
		}
	}
	if articles[0].URL != "https://example.com/jewellery-1" {
		t.Errorf("top article = %q, want the keyword-dense one", articles[0].URL)
	}
}

func TestCollectFallsBackToFeedsWhenSitemapDead(t *testing.T) {
	responses := map[string]*fetch.Response{
		"https://example.com/feed": {StatusCode: 200, Body: rssDoc(
			"https://example.com/a", "https://example.com/b")},
		"https://example.com/a": {StatusCode: 200, Body: articlePage(
			"Diamond necklace on show", "A diamond necklace drew a jewellery crowd at the gallery.")},
		"https://example.com/b": {StatusCode: 200, Body: articlePage(
			"Gold bracelet revival", "Gold bracelet designs are back with the jewellery houses.")},
	}

	sources := []config.PublicationSource{{
		Name:       "Example",
		FeedURLs:   []string{"https://example.com/feed"},
		SitemapURL: "https://example.com/sitemap.xml", // 404s
	}}
	c := newTestCollector(testConfig(), sources, &stubFetcher{responses: responses})

	result, err := c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(result.Articles()); got != 2 {
		t.Fatalf("got %d articles, want 2 via the feed fallback", got)
	}
}

func TestCollectIsolatesFailingPublications(t *testing.T) {
	responses := map[string]*fetch.Response{
		"https://two.example/sitemap.xml": {StatusCode: 200, Body: urlsetDoc("https://two.example/jewellery-hit")},
		"https://two.example/jewellery-hit": {StatusCode: 200, Body: articlePage(
			"Jewellery auction record", "A jewellery auction set a diamond price record in Geneva.")},
	}

	sources := []config.PublicationSource{
		{Name: "Dead", SitemapURL: "https://one.example/sitemap.xml"},
		{Name: "Alive", SitemapURL: "https://two.example/sitemap.xml"},
	}
	c := newTestCollector(testConfig(), sources, &stubFetcher{responses: responses})

	result, err := c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Publications) != 2 {
		t.Fatalf("got %d publication groups, want both reported", len(result.Publications))
	}
	if len(result.Publications[0].Articles) != 0 {
		t.Error("dead publication produced articles")
	}
	if len(result.Publications[1].Articles) != 1 {
		t.Errorf("alive publication got %d articles, want 1", len(result.Publications[1].Articles))
	}
	if result.Covered() != 1 {
		t.Errorf("Covered() = %d, want 1", result.Covered())
	}
}

func TestCollectRespectsAttemptBudget(t *testing.T) {
	// Every article page 404s, so each candidate burns one attempt.
	responses := map[string]*fetch.Response{
		"https://example.com/sitemap.xml": {StatusCode: 200, Body: urlsetDoc(
			"https://example.com/jewellery-1",
			"https://example.com/jewellery-2",
			"https://example.com/jewellery-3",
			"https://example.com/jewellery-4",
		)},
	}

	cfg := testConfig()
	cfg.MaxExtractTries = 2
	sources := []config.PublicationSource{{Name: "Example", SitemapURL: "https://example.com/sitemap.xml"}}

	fetcher := &stubFetcher{responses: responses}
	c := newTestCollector(cfg, sources, fetcher)

	result, err := c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(result.Articles()); got != 0 {
		t.Fatalf("got %d articles from dead pages", got)
	}
}

func TestCollectSubsetSelection(t *testing.T) {
	responses := map[string]*fetch.Response{
		"https://two.example/sitemap.xml": {StatusCode: 200, Body: urlsetDoc("https://two.example/jewellery-hit")},
		"https://two.example/jewellery-hit": {StatusCode: 200, Body: articlePage(
			"Jewellery headline", "The jewellery world gathered for a diamond showcase this week.")},
	}

	sources := []config.PublicationSource{
		{Name: "First", SitemapURL: "https://one.example/sitemap.xml"},
		{Name: "Second", SitemapURL: "https://two.example/sitemap.xml"},
	}
	c := newTestCollector(testConfig(), sources, &stubFetcher{responses: responses})

	result, err := c.CollectTopN(context.Background(), 3, []string{"Second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Publications) != 1 || result.Publications[0].Publication != "Second" {
		t.Fatalf("subset run covered %v", result.Publications)
	}
}

func TestCollectNoPublicationsIsAnError(t *testing.T) {
	c := newTestCollector(testConfig(), nil, &stubFetcher{})
	if _, err := c.CollectTopN(context.Background(), 3, nil); !errors.Is(err, ErrNoPublications) {
		t.Fatalf("err = %v, want ErrNoPublications", err)
	}

	sources := []config.PublicationSource{{Name: "Example", SitemapURL: "https://example.com/sitemap.xml"}}
	c = newTestCollector(testConfig(), sources, &stubFetcher{})
	if _, err := c.CollectTopN(context.Background(), 3, []string{"NoSuchName"}); !errors.Is(err, ErrNoPublications) {
		t.Fatalf("err = %v, want ErrNoPublications for an empty subset match", err)
	}
}

func TestCollectEnforceMinScoreDropsWeakArticles(t *testing.T) {
	responses := map[string]*fetch.Response{
		"https://example.com/sitemap.xml": {StatusCode: 200, Body: urlsetDoc("https://example.com/jewellery-weak")},
		// The page body scores zero: the URL qualified it, the content does not.
		"https://example.com/jewellery-weak": {StatusCode: 200, Body: articlePage(
			"Quiet opening downtown", "The new space opened quietly with a small crowd and short speeches.")},
	}

	cfg := testConfig()
	cfg.EnforceMinScore = true
	sources := []config.PublicationSource{{Name: "Example", SitemapURL: "https://example.com/sitemap.xml"}}
	c := newTestCollector(cfg, sources, &stubFetcher{responses: responses})

	result, err := c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(result.Articles()); got != 0 {
		t.Fatalf("got %d articles below the threshold", got)
	}

	// Default policy keeps the same article.
	cfg2 := testConfig()
	c = newTestCollector(cfg2, sources, &stubFetcher{responses: responses})
	result, err = c.CollectTopN(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(result.Articles()); got != 1 {
		t.Fatalf("got %d articles, want 1 when the threshold is advisory", got)
	}
}
