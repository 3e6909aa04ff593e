package report

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

const fontFamily = "Helvetica"

// fontMeasurer measures text with the core Helvetica metrics the PDF writer
// prints with, so wrapped lines fit once written.
type fontMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newFontMeasurer() *fontMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &fontMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *fontMeasurer) Width(text string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(fontFamily, fontStyle(bold), size)
	return m.pdf.GetStringWidth(m.tr(text))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// WritePDF renders layout as an A4 PDF.
func WritePDF(w io.Writer, layout Layout) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(layout.Title, true)
	pdf.SetCreator("CurricuForge", true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range layout.Pages {
		pdf.AddPage()
		for _, it := range page.Items {
			pdf.SetFont(fontFamily, fontStyle(it.Bold), it.Size)
			pdf.SetTextColor(it.Color.R, it.Color.G, it.Color.B)
			pdf.Text(it.X, it.Y, tr(it.Text))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderDocument paginates one curriculum and returns the PDF bytes.
func RenderDocument(p *Paginator, doc *curriculum.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, p.Document(doc, 0)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderCollection paginates every curriculum behind a cover page and
// returns the PDF bytes.
func RenderCollection(p *Paginator, docs []*curriculum.Document, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, p.Collection(docs, now)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
