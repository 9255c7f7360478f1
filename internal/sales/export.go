package sales

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"erp-backend/internal/apperr"
	"erp-backend/internal/models"

	"github.com/go-pdf/fpdf"
	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", apperr.Invalid("INVALID_FORMAT", "format must be csv, pdf or xlsx")
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Document is a rendered export ready to be sent as an attachment.
type Document struct {
	Body        []byte
	ContentType string
	Filename    string
}

type exportRow struct {
	ID        uint   `csv:"id"`
	Date      string `csv:"date"`
	Customer  string `csv:"customer"`
	ItemCount int    `csv:"itemCount"`
	Total     string `csv:"total"`
}

var exportHeader = []string{"id", "date", "customer", "itemCount", "total"}

func toExportRows(sales []models.Sale) []*exportRow {
	rows := make([]*exportRow, 0, len(sales))
	for i := range sales {
		s := &sales[i]
		rows = append(rows, &exportRow{
			ID:        s.ID,
			Date:      s.CreatedAt.Format("2006-01-02 15:04"),
			Customer:  s.Customer.Name,
			ItemCount: len(s.Items),
			Total:     s.ComputedTotal().StringFixed(2),
		})
	}
	return rows
}

// Export renders every sale matching f in the requested format.
func (s *Service) Export(ctx context.Context, format Format, f Filter) (*Document, error) {
	sales, err := s.FindSales(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := toExportRows(sales)

	var body []byte
	switch format {
	case FormatPDF:
		body, err = renderPDF(rows, f)
	case FormatXLSX:
		body, err = renderXLSX(rows)
	default:
		body, err = renderCSV(rows)
	}
	if err != nil {
		return nil, apperr.Internal(err, "render %s export", format)
	}
	return &Document{
		Body:        body,
		ContentType: format.ContentType(),
		Filename:    exportFilename(f, format),
	}, nil
}

func exportFilename(f Filter, format Format) string {
	from, to := "all", "all"
	if f.From != nil {
		from = f.From.Format(dateLayout)
	}
	if f.To != nil {
		to = f.To.Format(dateLayout)
	}
	return fmt.Sprintf("sales_%s_%s.%s", from, to, format)
}

func renderCSV(rows []*exportRow) ([]byte, error) {
	if len(rows) == 0 {
		return []byte(strings.Join(exportHeader, ",") + "\n"), nil
	}
	return gocsv.MarshalBytes(&rows)
}

func renderPDF(rows []*exportRow, f Filter) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Sales report", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Sales report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(periodLabel(f)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{20, 40, 130, 30, 40}
	aligns := []string{"R", "L", "L", "R", "R"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		cells := []string{
			fmt.Sprint(r.ID),
			r.Date,
			tr(r.Customer),
			fmt.Sprint(r.ItemCount),
			r.Total,
		}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 6, v, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func periodLabel(f Filter) string {
	from, to := "start", "today"
	if f.From != nil {
		from = f.From.Format(dateLayout)
	}
	if f.To != nil {
		to = f.To.Format(dateLayout)
	}
	label := "Period: " + from + " to " + to
	if f.Customer != "" {
		label += ", customer: " + f.Customer
	}
	return label
}

func renderXLSX(rows []*exportRow) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	const sheet = "Sales"
	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{r.ID, r.Date, r.Customer, r.ItemCount, r.Total}
		if err := x.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
