// Package digest writes a collection run to disk: a JSON archive, a plain
// text report, and a formatted PDF.
package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"readingroundup/internal/article"
	"readingroundup/internal/collector"
	"readingroundup/internal/logger"
)

// Outputs lists the files one Write produced.
type Outputs struct {
	JSONPath   string
	ReportPath string
	PDFPath    string
}

type jsonEnvelope struct {
	CollectionDate string              `json:"collection_date"`
	TotalArticles  int                 `json:"total_articles"`
	Articles       []article.Candidate `json:"articles"`
}

// Write renders all three output files into dir, named by run date. The
// directory is created if missing.
func Write(dir string, result *article.Result) (*Outputs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	stamp := result.StartedAt.Format("2006-01-02")
	out := &Outputs{
		JSONPath:   filepath.Join(dir, fmt.Sprintf("articles_%s.json", stamp)),
		ReportPath: filepath.Join(dir, fmt.Sprintf("report_%s.txt", stamp)),
		PDFPath:    filepath.Join(dir, fmt.Sprintf("digest_%s.pdf", stamp)),
	}

	if err := writeJSON(out.JSONPath, result); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out.ReportPath, []byte(collector.ReportText(result)), 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	if err := WritePDF(out.PDFPath, result); err != nil {
		return nil, err
	}

	logger.Info("digest written", "json", out.JSONPath, "report", out.ReportPath, "pdf", out.PDFPath)
	return out, nil
}

func writeJSON(path string, result *article.Result) error {
	articles := result.Articles()
	envelope := jsonEnvelope{
		CollectionDate: result.StartedAt.Format(time.RFC3339),
		TotalArticles:  len(articles),
		Articles:       articles,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding articles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing articles JSON: %w", err)
	}
	return nil
}
