package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ChartPage одна страница итогового PDF: заголовок и готовая PNG картинка
type ChartPage struct {
	Title string
	PNG   []byte
}

// ChartsPDF упаковывает графики дашборда в PDF, по странице на график
func ChartsPDF(pages []ChartPage) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoData
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Order Dashboard", false)

	for i, page := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 12, page.Title, "", 1, "C", false, 0, "")

		name := fmt.Sprintf("chart-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.PNG))
		// ширина во всю страницу, высота подбирается по пропорциям картинки
		pdf.ImageOptions(name, 15, 30, 267, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize pdf: %w", err)
	}
	return buf.Bytes(), nil
}
