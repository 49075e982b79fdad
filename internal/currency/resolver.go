package currency

import "strings"

// DefaultCode is returned for destinations that match no rule.
const DefaultCode = "USD"

// Rule maps a set of lowercase destination fragments to a currency code.
type Rule struct {
	Code      string
	Fragments []string
}

// Rules is the ordered lookup table. The first rule with a fragment contained
// in the destination wins, so specific countries come before broader terms.
var Rules = []Rule{
	{Code: "JPY", Fragments: []string{"japan", "tokyo", "osaka", "kyoto", "hokkaido"}},
	{Code: "GBP", Fragments: []string{"united kingdom", "england", "britain", "scotland", "wales", "london", "edinburgh"}},
	{Code: "INR", Fragments: []string{"india", "delhi", "mumbai", "goa", "bangalore"}},
	{Code: "CAD", Fragments: []string{"canada", "toronto", "vancouver", "montreal"}},
	{Code: "AUD", Fragments: []string{"australia", "sydney", "melbourne", "brisbane", "perth"}},
	{Code: "NZD", Fragments: []string{"new zealand", "auckland", "queenstown"}},
	{Code: "CHF", Fragments: []string{"switzerland", "zurich", "geneva", "lucerne"}},
	{Code: "CNY", Fragments: []string{"china", "beijing", "shanghai"}},
	{Code: "HKD", Fragments: []string{"hong kong"}},
	{Code: "KRW", Fragments: []string{"korea", "seoul", "busan"}},
	{Code: "THB", Fragments: []string{"thailand", "bangkok", "phuket", "chiang mai"}},
	{Code: "SGD", Fragments: []string{"singapore"}},
	{Code: "IDR", Fragments: []string{"indonesia", "bali", "jakarta"}},
	{Code: "VND", Fragments: []string{"vietnam", "hanoi", "ho chi minh"}},
	{Code: "MYR", Fragments: []string{"malaysia", "kuala lumpur"}},
	{Code: "PHP", Fragments: []string{"philippines", "manila"}},
	{Code: "AED", Fragments: []string{"united arab emirates", "dubai", "abu dhabi"}},
	{Code: "TRY", Fragments: []string{"turkey", "istanbul"}},
	{Code: "MXN", Fragments: []string{"mexico", "cancun"}},
	{Code: "BRL", Fragments: []string{"brazil", "rio de janeiro", "sao paulo"}},
	{Code: "ZAR", Fragments: []string{"south africa", "cape town", "johannesburg"}},
	{Code: "SEK", Fragments: []string{"sweden", "stockholm"}},
	{Code: "NOK", Fragments: []string{"norway", "oslo"}},
	{Code: "DKK", Fragments: []string{"denmark", "copenhagen"}},
	{Code: "USD", Fragments: []string{"united states", "america", "new york", "california", "hawaii", "las vegas"}},
	// Eurozone last, so a named country above is never shadowed by a generic term.
	{Code: "EUR", Fragments: []string{
		"france", "paris", "germany", "berlin", "munich", "italy", "rome", "milan", "venice",
		"spain", "madrid", "barcelona", "portugal", "lisbon", "netherlands", "amsterdam",
		"greece", "athens", "austria", "vienna", "belgium", "brussels", "ireland", "dublin",
		"finland", "helsinki", "croatia", "europe",
	}},
}

// Resolve maps a free-text destination to a currency code. It never fails:
// unknown destinations resolve to DefaultCode.
func Resolve(destination string) string {
	d := strings.ToLower(strings.TrimSpace(destination))
	if d == "" {
		return DefaultCode
	}
	for _, r := range Rules {
		for _, f := range r.Fragments {
			if strings.Contains(d, f) {
				return r.Code
			}
		}
	}
	return DefaultCode
}
