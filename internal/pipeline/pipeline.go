// Package pipeline runs the end-to-end flow: collect, summarize, write the
// digest outputs, sync to Google. Each stage after collection is optional
// and degrades with a logged warning instead of aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"readingroundup/internal/article"
	"readingroundup/internal/collector"
	"readingroundup/internal/config"
	"readingroundup/internal/digest"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/sheets"
	"readingroundup/internal/summarize"
)

// Pipeline owns one configured run flow.
type Pipeline struct {
	cfg       *config.Config
	collector *collector.Collector
	subset    []string
}

func New(cfg *config.Config, subset []string) (*Pipeline, error) {
	col, err := collector.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, collector: col, subset: subset}, nil
}

// Run executes one full pass and returns the collection result. Only the
// collection stage can fail the run.
func (p *Pipeline) Run(ctx context.Context) (*article.Result, error) {
	start := time.Now()
	logger.Info("pipeline run starting", "quota", p.cfg.QuotaPerSource)

	result, err := p.collector.CollectTopN(ctx, p.cfg.QuotaPerSource, p.subset)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("collection failed: %w", err)
	}
	p.logStep("collect", start)

	stepStart := time.Now()
	p.summarizeStep(ctx, result)
	p.logStep("summarize", stepStart)

	stepStart = time.Now()
	outputs, err := digest.Write(p.cfg.OutputDir, result)
	if err != nil {
		logger.Warn("digest output failed", "error", err)
	}
	p.logStep("digest", stepStart)

	if p.cfg.SheetID != "" && outputs != nil {
		stepStart = time.Now()
		p.syncStep(ctx, result, outputs)
		p.logStep("sync", stepStart)
	}

	logger.Info("pipeline run complete",
		"articles", len(result.Articles()),
		"duration", time.Since(start).Round(time.Second))
	return result, nil
}

func (p *Pipeline) summarizeStep(ctx context.Context, result *article.Result) {
	s, err := summarize.New(ctx, p.cfg.GeminiAPIKey, p.cfg.MaxGeminiRequests)
	if err != nil {
		logger.Warn("summarizer unavailable, using fallbacks", "error", err)
		for pi := range result.Publications {
			for ai := range result.Publications[pi].Articles {
				a := &result.Publications[pi].Articles[ai]
				a.DigestSummary = summarize.FallbackSummary(a)
			}
		}
		return
	}
	defer s.Close()
	s.SummarizeAll(ctx, result)
}

func (p *Pipeline) syncStep(ctx context.Context, result *article.Result, outputs *digest.Outputs) {
	client, err := sheets.New(ctx, p.cfg.CredentialsPath, p.cfg.SheetID, p.cfg.DriveFolderID)
	if err != nil {
		logger.Warn("sheet sync unavailable", "error", err)
		return
	}
	if err := client.AppendRun(ctx, result); err != nil {
		logger.Warn("sheet sync failed", "error", err)
	}
	if _, err := client.UploadPDF(ctx, outputs.PDFPath); err != nil {
		logger.Warn("PDF upload failed", "error", err)
	}
}

func (p *Pipeline) logStep(name string, start time.Time) {
	logger.Info("pipeline step done", "step", name, "took", time.Since(start).Round(time.Millisecond))
}
