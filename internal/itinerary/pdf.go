package itinerary

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

type fontSpec struct {
	style string
	size  float64
}

var styleFonts = map[Style]fontSpec{
	StyleTitle:          {"B", 18},
	StyleSectionHeading: {"B", 14},
	StyleDayHeader:      {"B", 12},
	StyleDetail:         {"", 11},
	StyleBullet:         {"", 10},
	StyleBody:           {"", 10},
	StyleFooter:         {"", 8},
}

func fontFor(s Style) fontSpec {
	if f, ok := styleFonts[s]; ok {
		return f
	}
	return styleFonts[StyleBody]
}

// newPDF returns an empty document sized to l. Blocks carry absolute
// positions, so automatic page breaks are off.
func newPDF(l Layout) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(l.MarginLeft, l.TopMargin, l.MarginLeft)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// RenderPDF writes the document with the Helvetica core fonts, one PDF page
// per document page. Text is encoded as cp1252.
func RenderPDF(doc *Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("rendering pdf: empty document")
	}
	pdf := buildPDF(doc, DefaultLayout)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// buildPDF places every block at its baseline position.
func buildPDF(doc *Document, l Layout) *fpdf.Fpdf {
	pdf := newPDF(l)
	pdf.SetTitle(doc.Title, true)
	pdf.SetProducer("TravelBudgetFX", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, p := range doc.Pages {
		pdf.AddPage()
		for _, bl := range p.Blocks {
			f := fontFor(bl.Style)
			pdf.SetFont(fontFamily, f.style, f.size)
			pdf.Text(bl.X, bl.Y, tr(bl.Text))
		}
	}
	return pdf
}

// meter measures text with the fonts RenderPDF uses. Not safe for
// concurrent use.
type meter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newMeter(l Layout) *meter {
	pdf := newPDF(l)
	return &meter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// width returns the rendered width of s in millimetres.
func (m *meter) width(s string, style Style) float64 {
	f := fontFor(style)
	m.pdf.SetFont(fontFamily, f.style, f.size)
	return m.pdf.GetStringWidth(m.tr(s))
}
