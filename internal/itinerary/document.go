// Package itinerary lays out a finished itinerary reply as a paginated,
// styled document and renders it to PDF.
package itinerary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ziadkadry99/travelbudgetfx/internal/markup"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// Attribution is printed in the footer of every page.
const Attribution = "Generated by TravelBudgetFX AI Travel Assistant"

// SectionTitle heads the itinerary body.
const SectionTitle = "Your Itinerary"

// Style selects the font treatment of a block.
type Style int

const (
	StyleTitle Style = iota
	StyleSectionHeading
	StyleDetail
	StyleDayHeader
	StyleBullet
	StyleBody
	StyleFooter
)

func (s Style) String() string {
	switch s {
	case StyleTitle:
		return "title"
	case StyleSectionHeading:
		return "section-heading"
	case StyleDetail:
		return "detail"
	case StyleDayHeader:
		return "day-header"
	case StyleBullet:
		return "bullet"
	case StyleBody:
		return "body"
	case StyleFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Block is one line of text placed on a page. Coordinates are millimetres
// from the top-left corner.
type Block struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Style Style   `json:"style"`
}

// Page holds the blocks placed on one page, footers included.
type Page struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks"`
}

// Document is a formatted itinerary. Name is the file stem used when the
// document is emitted.
type Document struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Layout holds the page geometry. Lengths are millimetres, widths are
// character columns. Bullet continuation lines hang under the first word,
// so their indent follows the rendered width of the marker.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	MarginLeft float64
	TopMargin  float64
	PageBottom float64
	FooterY    float64

	LineHeight    float64
	HeadingHeight float64
	TitleHeight   float64
	DayHeaderGap  float64
	BlankGap      float64

	BulletIndent  float64
	HeaderColumns int
	BulletColumns int
	BodyColumns   int
}

// DefaultLayout is an A4 portrait page.
var DefaultLayout = Layout{
	PageWidth:  210,
	PageHeight: 297,
	MarginLeft: 20,
	TopMargin:  20,
	PageBottom: 270,
	FooterY:    285,

	LineHeight:    6,
	HeadingHeight: 8,
	TitleHeight:   12,
	DayHeaderGap:  4,
	BlankGap:      3,

	BulletIndent:  5,
	HeaderColumns: 64,
	BulletColumns: 84,
	BodyColumns:   90,
}

// LineKind is the classification of one line of itinerary text.
type LineKind int

const (
	LineBlank LineKind = iota
	LineDayHeader
	LineBullet
	LineText
)

var (
	dayHeaderRe = regexp.MustCompile(`^Day\s+\d+`)
	bulletRe    = regexp.MustCompile(`^(?:[•\-*]|\d+[.)])\s+`)
)

// Classify decides how a line of itinerary text is laid out.
func Classify(line string) LineKind {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return LineBlank
	case dayHeaderRe.MatchString(line):
		return LineDayHeader
	case bulletRe.MatchString(line):
		return LineBullet
	default:
		return LineText
	}
}

// Format lays out an itinerary reply with DefaultLayout.
func Format(text string, p *trip.Parameters) *Document {
	return FormatWithLayout(text, p, DefaultLayout)
}

// FormatWithLayout lays out an itinerary reply. The reply may still carry
// display markup; it is stripped first. It returns nil when there is no
// itinerary text or no trip parameters.
func FormatWithLayout(text string, p *trip.Parameters, l Layout) *Document {
	if p == nil {
		return nil
	}
	body := markup.Strip(text)
	if strings.TrimSpace(body) == "" {
		return nil
	}

	c := newCursor(l)
	m := newMeter(l)

	title := "Travel Itinerary: " + p.Destination
	c.place(l.MarginLeft, title, StyleTitle, l.TitleHeight)
	for _, d := range details(p) {
		c.place(l.MarginLeft, d, StyleDetail, l.LineHeight)
	}
	c.skip(l.BlankGap)
	c.place(l.MarginLeft, SectionTitle, StyleSectionHeading, l.HeadingHeight)

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		switch Classify(line) {
		case LineBlank:
			c.skip(l.BlankGap)
		case LineDayHeader:
			c.skip(l.DayHeaderGap)
			for _, w := range wrap(line, l.HeaderColumns) {
				c.place(l.MarginLeft, w, StyleDayHeader, l.HeadingHeight)
			}
		case LineBullet:
			marker, rest := splitMarker(line)
			x := l.MarginLeft + l.BulletIndent
			hang := x + m.width(marker+" ", StyleBullet)
			for i, w := range wrap(rest, l.BulletColumns) {
				if i == 0 {
					c.place(x, marker+" "+w, StyleBullet, l.LineHeight)
					continue
				}
				c.place(hang, w, StyleBullet, l.LineHeight)
			}
		default:
			for _, w := range wrap(line, l.BodyColumns) {
				c.place(l.MarginLeft, w, StyleBody, l.LineHeight)
			}
		}
	}

	pages := c.finish()
	addFooters(pages, l)

	return &Document{
		Name:  FileStem(p.Destination),
		Title: title,
		Pages: pages,
	}
}

func details(p *trip.Parameters) []string {
	return []string{
		"Destination: " + p.Destination,
		fmt.Sprintf("Duration: %d days", p.DurationDays),
		fmt.Sprintf("Budget: %.2f %s", p.Budget, p.HomeCurrency),
		"Departure: " + p.Departure(),
	}
}

// splitMarker separates a bullet marker from its text. Hyphen and asterisk
// markers are normalised to the bullet glyph; numbered markers are kept.
func splitMarker(line string) (string, string) {
	loc := bulletRe.FindStringIndex(line)
	if loc == nil {
		return markup.BulletMarker, line
	}
	marker := strings.TrimSpace(line[:loc[1]])
	if marker == "-" || marker == "*" {
		marker = markup.BulletMarker
	}
	return marker, line[loc[1]:]
}

// addFooters runs once the page count is final.
func addFooters(pages []Page, l Layout) {
	total := len(pages)
	for i := range pages {
		pages[i].Blocks = append(pages[i].Blocks,
			Block{X: l.MarginLeft, Y: l.FooterY, Text: Attribution, Style: StyleFooter},
			Block{X: l.PageWidth - l.MarginLeft - 25, Y: l.FooterY, Text: fmt.Sprintf("Page %d of %d", i+1, total), Style: StyleFooter},
		)
	}
}

// FileStem turns a destination into a file-safe "<destination>-itinerary" stem.
func FileStem(destination string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(destination)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "trip"
	}
	return slug + "-itinerary"
}

// Text returns the document's blocks one per line, page by page.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		for _, bl := range p.Blocks {
			b.WriteString(bl.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
