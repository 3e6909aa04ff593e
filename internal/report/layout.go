// Package report lays curricula out on fixed-size pages and writes the
// result as PDF. It also builds the XLSX progress workbook.
package report

import "strings"

// Geometry is a page in millimetres. Lines are placed only while the cursor
// stays within Bottom.
type Geometry struct {
	Width  float64
	Height float64
	Margin float64 // left and right
	Top    float64
	Bottom float64
}

// A4 is portrait A4 with the margins of the printed report.
var A4 = Geometry{Width: 210, Height: 297, Margin: 14, Top: 20, Bottom: 280}

// Color is an RGB text colour.
type Color struct {
	R, G, B int
}

var (
	colorInk     = Color{15, 23, 42}
	colorMuted   = Color{100, 116, 139}
	colorBody    = Color{30, 41, 59}
	colorTopic   = Color{51, 65, 85}
	colorAccent  = Color{2, 132, 199}
	colorSuccess = Color{16, 185, 129}
)

// Item is one line of text placed at a baseline position.
type Item struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Bold  bool    `json:"bold,omitempty"`
	Color Color   `json:"color"`
	Text  string  `json:"text"`
}

// Page is the content of one output page.
type Page struct {
	Items []Item `json:"items"`
}

// Layout is a paginated report, ready to be written.
type Layout struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Text returns the lines of the page, one per line.
func (p Page) Text() string {
	var b strings.Builder
	for _, it := range p.Items {
		b.WriteString(it.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Text returns every line of the layout in reading order.
func (l Layout) Text() string {
	var b strings.Builder
	for _, p := range l.Pages {
		b.WriteString(p.Text())
	}
	return b.String()
}
