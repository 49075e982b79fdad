package itinerary

import "strings"

// cursor accumulates pages while blocks are placed top to bottom.
type cursor struct {
	layout Layout
	pages  []Page
	y      float64
}

func newCursor(l Layout) *cursor {
	c := &cursor{layout: l}
	c.newPage()
	return c
}

func (c *cursor) newPage() {
	c.pages = append(c.pages, Page{Number: len(c.pages) + 1})
	c.y = c.layout.TopMargin
}

// place puts one block at the cursor, breaking the page first when the
// block would cross the page bottom.
func (c *cursor) place(x float64, text string, style Style, height float64) {
	if c.y+height > c.layout.PageBottom && c.y > c.layout.TopMargin {
		c.newPage()
	}
	p := &c.pages[len(c.pages)-1]
	p.Blocks = append(p.Blocks, Block{X: x, Y: c.y, Text: text, Style: style})
	c.y += height
}

// skip advances the cursor without placing anything. A gap never carries
// over to the top of a new page.
func (c *cursor) skip(gap float64) {
	if c.y+gap > c.layout.PageBottom {
		return
	}
	c.y += gap
}

func (c *cursor) finish() []Page {
	return c.pages
}

// wrap breaks text into lines of at most cols runes, preferring word
// boundaries. Words longer than cols are split.
func wrap(text string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur []rune
	for _, w := range words {
		wr := []rune(w)
		for len(wr) > cols {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:cols]))
			wr = wr[cols:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, wr...)
		case len(cur)+1+len(wr) <= cols:
			cur = append(cur, ' ')
			cur = append(cur, wr...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), wr...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
