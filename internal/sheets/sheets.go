// Package sheets mirrors a collection run into a Google spreadsheet and
// uploads the PDF digest to Drive. Sync is best effort at the run level but
// surfaces errors so the pipeline can log them.
package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"readingroundup/internal/article"
	"readingroundup/internal/logger"
)

const (
	articlesRange = "Articles!A:G"
	runsRange     = "Runs!A:E"
)

// Client wraps the Sheets and Drive services for one spreadsheet.
type Client struct {
	sheets  *sheets.Service
	drive   *drive.Service
	sheetID string
	folder  string
}

// New authenticates with a service-account credentials file and binds to the
// given spreadsheet. folderID may be empty; PDF uploads then land in the
// service account's root.
func New(ctx context.Context, credentialsPath, sheetID, folderID string) (*Client, error) {
	if sheetID == "" {
		return nil, fmt.Errorf("no sheet ID configured")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("credentials file: %w", err)
	}

	opts := option.WithCredentialsFile(credentialsPath)
	sheetsSvc, err := sheets.NewService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	return &Client{sheets: sheetsSvc, drive: driveSvc, sheetID: sheetID, folder: folderID}, nil
}

// AppendRun appends every collected article to the Articles worksheet and a
// run summary row to the Runs worksheet.
func (c *Client) AppendRun(ctx context.Context, result *article.Result) error {
	articles := result.Articles()
	runID := result.StartedAt.Format("20060102-150405")
	now := time.Now().Format(time.RFC3339)

	var rows [][]interface{}
	for i, a := range articles {
		summary := a.DigestSummary
		if summary == "" {
			summary = a.Summary
		}
		rows = append(rows, []interface{}{
			fmt.Sprintf("%s-%03d", runID, i+1),
			a.Title,
			a.URL,
			a.Publication,
			a.Author,
			summary,
			now,
		})
	}

	if len(rows) > 0 {
		_, err := c.sheets.Spreadsheets.Values.
			Append(c.sheetID, articlesRange, &sheets.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("appending articles: %w", err)
		}
	}

	runRow := [][]interface{}{{
		runID,
		result.StartedAt.Format(time.RFC3339),
		result.FinishedAt.Format(time.RFC3339),
		len(articles),
		result.Covered(),
	}}
	_, err := c.sheets.Spreadsheets.Values.
		Append(c.sheetID, runsRange, &sheets.ValueRange{Values: runRow}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending run metadata: %w", err)
	}

	logger.Info("sheet updated", "articles", len(rows), "run", runID)
	return nil
}

// UploadPDF pushes the digest PDF to Drive and returns the file ID.
func (c *Client) UploadPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	meta := &drive.File{
		Name:     filepath.Base(path),
		MimeType: "application/pdf",
	}
	if c.folder != "" {
		meta.Parents = []string{c.folder}
	}

	created, err := c.drive.Files.Create(meta).Media(f).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("uploading PDF: %w", err)
	}

	logger.Info("digest PDF uploaded", "file", meta.Name, "id", created.Id)
	return created.Id, nil
}
