package digest

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"readingroundup/internal/article"
)

// WritePDF renders the run as an A4 digest grouped by publication: a header
// page block, then per publication a section heading and each article's
// title, credit line and summary.
func WritePDF(path string, result *article.Result) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 22)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Jewellery Reading Roundup", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, result.StartedAt.Format("Monday, 2 January 2006"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6,
		fmt.Sprintf("%d articles from %d publications", len(result.Articles()), result.Covered()),
		"", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, pub := range result.Publications {
		if len(pub.Articles) == 0 {
			continue
		}

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 9, tr(pub.Publication), "", 1, "L", true, 0, "")
		pdf.Ln(2)

		for _, a := range pub.Articles {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 5.5, tr(a.Title), "", "L", false)

			pdf.SetFont("Helvetica", "I", 9)
			credit := fmt.Sprintf("%s  |  %s  |  score %.1f",
				a.Author, a.PublishedAt.Format("2 Jan 2006"), a.RelevanceScore)
			pdf.MultiCell(0, 4.5, tr(credit), "", "L", false)

			summary := a.DigestSummary
			if summary == "" {
				summary = a.Summary
			}
			if summary != "" {
				pdf.SetFont("Helvetica", "", 10)
				pdf.MultiCell(0, 5, tr(strings.TrimSpace(summary)), "", "L", false)
			}

			pdf.SetFont("Helvetica", "", 8)
			pdf.SetTextColor(80, 80, 150)
			pdf.MultiCell(0, 4, a.URL, "", "L", false)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(4)
		}
		pdf.Ln(2)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}
