package markup

import (
	"strings"
	"testing"
)

func mustSanitize(t *testing.T, in string) string {
	t.Helper()
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	return out
}

func TestSanitizeInlineMarkup(t *testing.T) {
	out := mustSanitize(t, "**Day 1: Arrival**\n- Morning: *Louvre*\n- Evening: cruise\n\n1. Pack light\n2. Carry euros")

	for _, want := range []string{
		"<strong>Day 1: Arrival</strong>",
		"<em>Louvre</em>",
		"<ul>",
		"<ol>",
		"<li>Pack light</li>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSanitizeDropsRawHTML(t *testing.T) {
	out := mustSanitize(t, "Hello <script>alert(1)</script> world")
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML passed through:\n%s", out)
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "sanitized round trip",
			in:   mustSanitize(t, "**Day 1: Arrival**\n- Morning: Louvre\n- Evening: *Seine* cruise\n\n1. Pack light\n2. Carry euros"),
			want: "Day 1: Arrival\n\n• Morning: Louvre\n• Evening: Seine cruise\n\n1. Pack light\n2. Carry euros",
		},
		{
			name: "hard wraps",
			in:   mustSanitize(t, "Line one\nLine two"),
			want: "Line one\nLine two",
		},
		{
			name: "plain text",
			in:   "Day 1: Arrival\r\nCheck in  \n\n\n\nDay 2: Museums",
			want: "Day 1: Arrival\nCheck in\n\nDay 2: Museums",
		},
		{
			name: "entities",
			in:   "<p>Fish &amp; chips</p>",
			want: "Fish & chips",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip() = %q, want %q", got, tt.want)
			}
		})
	}
}
