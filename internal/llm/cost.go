package llm

import "strings"

// price is USD per million tokens.
type price struct {
	input, output float64
}

var prices = map[string]price{
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"gpt-4o-mini":                {0.15, 0.60},
	"gpt-4o":                     {2.50, 10.00},
	"gemini-2.0-flash":           {0.10, 0.40},
	"MiniMax-M2.5":               {0.30, 1.20},
}

// EstimateCost returns the approximate USD cost of one reply. OpenRouter
// style "vendor/model" names are priced by their model part. Unknown models
// cost 0; local models are free anyway.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := prices[model]
	if !ok {
		if i := strings.LastIndexByte(model, '/'); i >= 0 {
			p, ok = prices[model[i+1:]]
		}
	}
	if !ok {
		return 0
	}
	return (float64(inputTokens)*p.input + float64(outputTokens)*p.output) / 1_000_000
}

// EstimateTokens approximates a token count at four bytes per token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if n := len(text) / 4; n > 0 {
		return n
	}
	return 1
}
