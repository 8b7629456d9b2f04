// Package summarize produces short digest summaries for collected articles,
// preferring Gemini and degrading to an extractive fallback when the API is
// unavailable, over budget, or failing.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"readingroundup/internal/article"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
)

const (
	modelName = "gemini-1.5-flash"

	// maxContentChars bounds how much article body goes into the prompt.
	maxContentChars = 4000

	// fallbackMaxChars caps the extractive fallback summary.
	fallbackMaxChars = 160
)

// Summarizer holds the Gemini client and the per-run request budget.
type Summarizer struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	maxRequests int // 0 = unlimited
	requests    int
}

// New connects to Gemini. An empty API key yields a fallback-only
// summarizer rather than an error, so collection still produces a digest.
func New(ctx context.Context, apiKey string, maxRequests int) (*Summarizer, error) {
	if apiKey == "" {
		logger.Warn("no Gemini API key set, using fallback summaries only")
		return &Summarizer{maxRequests: maxRequests}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)

	return &Summarizer{client: client, model: model, maxRequests: maxRequests}, nil
}

// Close releases the underlying API client.
func (s *Summarizer) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// SummarizeAll fills DigestSummary for every article in the result, in
// place. Per-article failures fall back silently; they never fail the run.
func (s *Summarizer) SummarizeAll(ctx context.Context, result *article.Result) {
	for pi := range result.Publications {
		pub := &result.Publications[pi]
		for ai := range pub.Articles {
			a := &pub.Articles[ai]
			a.DigestSummary = s.Summarize(ctx, a)
		}
	}
}

// Summarize returns a two-sentence digest summary for one article.
func (s *Summarizer) Summarize(ctx context.Context, a *article.Candidate) string {
	if s.model != nil && (s.maxRequests == 0 || s.requests < s.maxRequests) {
		s.requests++
		summary, err := s.generate(ctx, a)
		if err == nil && summary != "" {
			metrics.Global.IncrementSummariesGenerated()
			return summary
		}
		logger.Debug("Gemini summary failed, falling back", "url", a.URL, "error", err)
	}

	metrics.Global.IncrementSummaryFallbacks()
	return FallbackSummary(a)
}

func (s *Summarizer) generate(ctx context.Context, a *article.Candidate) (string, error) {
	content := a.FullContent
	if content == "" {
		content = a.Summary
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	prompt := fmt.Sprintf(
		"Summarize this jewellery industry article in two sentences for a trade digest. "+
			"Keep brand names, materials and figures exact.\n\nTitle: %s\n\n%s",
		a.Title, content)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// FallbackSummary builds an extractive summary from the article's own text:
// the first two substantial sentences, truncated to a digest-friendly
// length.
func FallbackSummary(a *article.Candidate) string {
	text := a.FullContent
	if text == "" {
		text = a.Summary
	}
	if text == "" {
		return a.Title
	}

	var picked []string
	for _, sentence := range strings.Split(text, ". ") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 25 {
			continue
		}
		picked = append(picked, sentence)
		if len(picked) == 2 {
			break
		}
	}

	summary := strings.Join(picked, ". ")
	if summary == "" {
		summary = text
	}
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	if len(summary) > fallbackMaxChars {
		summary = summary[:fallbackMaxChars-3] + "..."
	}
	return summary
}
