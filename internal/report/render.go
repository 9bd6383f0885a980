package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const (
	ExcelSheetName = "Report Data"

	pdfFont        = "Helvetica"
	pdfMarginX     = 50.0
	pdfColumnWidth = 100.0
	pdfTableTop    = 200.0
	pdfRowHeight   = 20.0
	pdfPageBottom  = 700.0
	pdfNextPageTop = 50.0
)

// RenderPDF lays the rows out as a simple table under the report title and description.
func RenderPDF(cfg *domain.ReportConfig, rows []Row) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(cfg.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pdfMarginX

	pdf.SetFont(pdfFont, "B", 24)
	pdf.SetXY(pdfMarginX, 60)
	pdf.CellFormat(contentWidth, 30, tr(cfg.Name), "", 1, "C", false, 0, "")

	pdf.SetFont(pdfFont, "", 14)
	pdf.SetX(pdfMarginX)
	pdf.MultiCell(contentWidth, 18, tr(cfg.Description), "", "C", false)

	colWidth := pdfColumnWidth
	if n := float64(len(cfg.Columns)); n > 0 && n*colWidth > contentWidth {
		colWidth = contentWidth / n
	}

	y := pdfTableTop
	pdf.SetFont(pdfFont, "B", 12)
	for i, column := range cfg.Columns {
		pdf.SetXY(pdfMarginX+float64(i)*colWidth, y)
		pdf.CellFormat(colWidth, pdfRowHeight, fitText(pdf, tr(column), colWidth), "", 0, "L", false, 0, "")
	}
	y += pdfRowHeight

	pdf.SetFont(pdfFont, "", 10)
	for _, row := range rows {
		if y > pdfPageBottom {
			pdf.AddPage()
			y = pdfNextPageTop
		}

		for i, column := range cfg.Columns {
			pdf.SetXY(pdfMarginX+float64(i)*colWidth, y)
			text := fitText(pdf, tr(FormatValue(row[column])), colWidth)
			pdf.CellFormat(colWidth, pdfRowHeight, text, "", 0, "L", false, 0, "")
		}
		y += pdfRowHeight
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

// fitText shortens s with an ellipsis until it fits in width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	const ellipsis = "..."
	limit := width - 4
	if pdf.GetStringWidth(s) <= limit {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+ellipsis) > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

// RenderExcel writes a single "Report Data" sheet: a header row then one row per record.
func RenderExcel(cfg *domain.ReportConfig, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ExcelSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(cfg.Columns))
	for i, c := range cfg.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExcelSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		values := make([]any, len(cfg.Columns))
		for i, c := range cfg.Columns {
			switch v := row[c].(type) {
			case nil:
				values[i] = ""
			case float64, int, bool, string:
				values[i] = v
			default:
				values[i] = FormatValue(v)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExcelSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render excel: %w", err)
	}

	return buf.Bytes(), nil
}
