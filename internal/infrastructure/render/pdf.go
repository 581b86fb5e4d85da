package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"quantumdaily/internal/domain"
)

// IssuePDF renders the daily issue as a single-column A4 document.
func IssuePDF(issue domain.DailyIssue) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Quantum Daily — %s", issue.Date)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(issue.Items) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No items found.", "", "L", false)
	}

	for i, item := range issue.Items {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, item.Title)), "", "L", false)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		meta := fmt.Sprintf("%s | %s | %s", item.Category, item.Source, formatPublished(item.PublishedAt))
		pdf.MultiCell(0, 5, tr(meta), "", "L", false)
		pdf.SetTextColor(0, 0, 0)

		summary := item.PlainSummary
		if summary == "" {
			summary = item.Summary
		}
		if summary != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(summary), "", "L", false)
		}
		for _, bullet := range item.TLDRBullets {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("  - "+bullet), "", "L", false)
		}

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 200)
		pdf.MultiCell(0, 5, tr(item.URL), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render issue pdf: %w", err)
	}
	return buf.Bytes(), nil
}
