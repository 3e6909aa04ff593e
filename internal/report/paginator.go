package report

import (
	"fmt"
	"time"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

// style is the font, colour, indent and line advance of one kind of line.
type style struct {
	size    float64
	bold    bool
	color   Color
	indent  float64 // added to the left margin
	advance float64 // cursor movement per printed line
}

var (
	styleTitle       = style{size: 22, bold: true, color: colorInk, advance: 8}
	styleSeqTitle    = style{size: 16, bold: true, color: colorInk, advance: 8}
	styleDuration    = style{size: 10, color: colorMuted, advance: 10}
	styleDescription = style{size: 11, color: colorBody, advance: 6}
	stylePeriod      = style{size: 14, bold: true, color: colorAccent, advance: 8}
	styleCourse      = style{size: 12, bold: true, color: colorInk, advance: 6}
	styleTopic       = style{size: 10, color: colorTopic, indent: 4, advance: 5}
	styleMarker      = style{size: 10, color: colorSuccess, indent: 8, advance: 5}
	styleQuestion    = style{size: 9, color: colorBody, indent: 11, advance: 4.5}
	styleOption      = style{size: 9, color: colorMuted, indent: 16, advance: 4.5}
	styleCorrect     = style{size: 9, color: colorSuccess, indent: 16, advance: 4.5}
	styleExplanation = style{size: 8, color: colorMuted, indent: 16, advance: 4}
	styleSection     = style{size: 14, bold: true, color: colorInk, advance: 8}
	styleBullet      = style{size: 10, color: colorTopic, indent: 4, advance: 6}

	styleCoverTitle = style{size: 28, bold: true, color: colorInk, advance: 15}
	styleCoverMeta  = style{size: 14, color: colorMuted, advance: 7}
	styleCoverBlurb = style{size: 12, color: colorMuted, advance: 6}
)

// coverTop is where the cover page title sits.
const coverTop = 60

// Paginator turns curricula into page layouts. Lines are placed greedily: a
// line that would move the cursor past the bottom budget starts a new page,
// with no look-ahead to keep related lines together.
type Paginator struct {
	geo     Geometry
	measure Measurer
}

// NewPaginator creates a paginator for geo using m for text widths.
func NewPaginator(geo Geometry, m Measurer) *Paginator {
	return &Paginator{geo: geo, measure: m}
}

// NewA4Paginator creates a paginator sized for the PDF writer.
func NewA4Paginator() *Paginator {
	return NewPaginator(A4, newFontMeasurer())
}

// Document lays out one curriculum. A positive seq prefixes the title with
// its position in a collection.
func (p *Paginator) Document(doc *curriculum.Document, seq int) Layout {
	f := p.newFlow()
	f.document(doc, seq)
	return Layout{Title: doc.Title, Pages: f.pages}
}

// Collection lays out a cover page followed by every document, each starting
// on a new page.
func (p *Paginator) Collection(docs []*curriculum.Document, now time.Time) Layout {
	f := p.newFlow()

	f.y = coverTop
	f.emit(styleCoverTitle, "CurricuForge: Learning Portfolio")
	f.emit(styleCoverMeta, "Generated on: "+now.Format("January 2, 2006"))
	f.emit(styleCoverMeta, fmt.Sprintf("Total Curricula: %d", len(docs)))
	f.y += 11
	f.emit(styleCoverBlurb, "This document contains all curriculum pathways and assessments generated in your session.")

	for i, doc := range docs {
		f.newPage()
		f.document(doc, i+1)
	}
	return Layout{Title: "CurricuForge Learning Portfolio", Pages: f.pages}
}

type flow struct {
	p     *Paginator
	pages []Page
	y     float64
}

func (p *Paginator) newFlow() *flow {
	f := &flow{p: p}
	f.newPage()
	return f
}

func (f *flow) newPage() {
	f.pages = append(f.pages, Page{})
	f.y = f.p.geo.Top
}

// emit wraps text to the space right of the indent and places each line,
// breaking the page before any line that would overrun the budget.
func (f *flow) emit(s style, text string) {
	geo := f.p.geo
	x := geo.Margin + s.indent
	width := geo.Width - x - geo.Margin

	for _, line := range wrap(f.p.measure, text, s.size, s.bold, width) {
		if f.y+s.advance > geo.Bottom {
			f.newPage()
		}
		page := &f.pages[len(f.pages)-1]
		page.Items = append(page.Items, Item{
			X:     x,
			Y:     f.y,
			Size:  s.size,
			Bold:  s.bold,
			Color: s.color,
			Text:  line,
		})
		f.y += s.advance
	}
}

func (f *flow) gap(mm float64) {
	f.y += mm
}

func (f *flow) document(doc *curriculum.Document, seq int) {
	if seq > 0 {
		f.emit(styleSeqTitle, fmt.Sprintf("[%d] %s", seq, doc.Title))
	} else {
		f.emit(styleTitle, doc.Title)
	}
	f.emit(styleDuration, "Duration: "+doc.Duration())
	f.emit(styleDescription, doc.Description)
	f.gap(10)

	for _, period := range doc.Periods {
		f.emit(stylePeriod, period.Label)
		for _, course := range period.Courses {
			heading := course.Name
			if course.Code != "" {
				heading = fmt.Sprintf("%s (%s)", course.Name, course.Code)
			}
			f.emit(styleCourse, heading)
			for i, topic := range course.Topics {
				f.topic(i, topic)
			}
			f.gap(5)
		}
		f.gap(5)
	}

	f.emit(styleSection, "Outcome Based Education (OBE) Goals")
	for _, o := range doc.Outcomes {
		f.emit(styleBullet, "• "+o)
	}
	f.gap(10)
	f.emit(styleSection, "Industry Readiness: Job Roles")
	for _, r := range doc.JobRoles {
		f.emit(styleBullet, "• "+r)
	}
}

func (f *flow) topic(i int, t curriculum.Topic) {
	line := fmt.Sprintf("%d. %s", i+1, t.Title)
	if t.Description != "" {
		line += ": " + t.Description
	}
	f.emit(styleTopic, line)
	f.gap(3)

	if t.Quiz == nil {
		return
	}
	f.gap(2)
	f.emit(styleMarker, "> Assessment Questions Available:")
	for qi, q := range t.Quiz.Questions {
		f.emit(styleQuestion, fmt.Sprintf("Q%d: %s", qi+1, q.Prompt))
		for oi, opt := range q.Options {
			s, suffix := styleOption, ""
			if oi == q.CorrectOption {
				s, suffix = styleCorrect, " [CORRECT]"
			}
			f.emit(s, fmt.Sprintf("%s) %s%s", curriculum.OptionLetter(oi), opt, suffix))
		}
		if q.Explanation != "" {
			f.emit(styleExplanation, "Explanation: "+q.Explanation)
		}
		f.gap(6)
	}
	f.gap(5)
}
