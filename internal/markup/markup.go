// Package markup converts assistant replies between the markdown the model
// writes, the HTML shown in chat, and the plain structural text used for
// prompts and exported documents.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
)

// BulletMarker prefixes unordered list items in stripped text.
const BulletMarker = "•"

// Raw HTML in replies is never passed through: goldmark drops it unless
// html.WithUnsafe is set.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Sanitize renders a model reply (markdown with bold/italic markers, bullet
// and numbered lists) into display-ready HTML.
func Sanitize(reply string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(reply), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

type listState struct {
	ordered bool
	n       int
}

// Strip turns display HTML back into plain text: inline wrappers are removed,
// list items become "• item" or "N. item" lines, block elements end lines and
// paragraphs are separated by one blank line. Plain text passes through with
// only line-ending normalisation.
func Strip(display string) string {
	z := nethtml.NewTokenizer(strings.NewReader(display))

	var b strings.Builder
	var lists []listState
	var prefix string

	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}

loop:
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			break loop

		case nethtml.TextToken:
			text := string(z.Text())
			if strings.TrimSpace(text) == "" && strings.Contains(text, "\n") {
				continue
			}
			if strings.HasSuffix(b.String(), "\n") {
				text = strings.TrimLeft(text, "\n")
			}
			if prefix != "" {
				b.WriteString(prefix)
				prefix = ""
				text = strings.TrimLeft(text, " \t")
			}
			b.WriteString(text)

		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "ul":
				newline()
				lists = append(lists, listState{})
			case "ol":
				newline()
				lists = append(lists, listState{ordered: true})
			case "li":
				newline()
				if n := len(lists); n > 0 && lists[n-1].ordered {
					lists[n-1].n++
					prefix = fmt.Sprintf("%d. ", lists[n-1].n)
				} else {
					prefix = BulletMarker + " "
				}
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "table", "tr":
				newline()
			case "hr":
				newline()
				b.WriteByte('\n')
			}

		case nethtml.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "table":
				newline()
				b.WriteByte('\n')
			case "li", "div", "tr":
				newline()
			case "ul", "ol":
				if len(lists) > 0 {
					lists = lists[:len(lists)-1]
				}
				newline()
				if len(lists) == 0 {
					b.WriteByte('\n')
				}
			case "td", "th":
				b.WriteByte(' ')
			}
		}
	}

	out := strings.ReplaceAll(b.String(), "\r\n", "\n")
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	out = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.Trim(out, "\n")
}
