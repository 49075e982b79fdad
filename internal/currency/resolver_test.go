package currency

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		destination string
		want        string
	}{
		{"Tokyo, Japan", "JPY"},
		{"Narnia", "USD"},
		{"France", "EUR"},
		{"  PARIS  ", "EUR"},
		{"London, England", "GBP"},
		{"Phuket", "THB"},
		{"Bali, Indonesia", "IDR"},
		{"Zurich", "CHF"},
		{"New Zealand", "NZD"},
		{"Hong Kong", "HKD"},
		{"Seoul", "KRW"},
		{"New York", "USD"},
		{"", "USD"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.destination); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.destination, got, tt.want)
		}
	}
}

func TestEveryFragmentResolvesToItsRule(t *testing.T) {
	for _, r := range Rules {
		for _, f := range r.Fragments {
			if got := Resolve(f); got != r.Code {
				t.Errorf("Resolve(%q) = %q, want %q", f, got, r.Code)
			}
		}
	}
}
