package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// Rating is the set of 1-10 scores summarising how easy and affordable a trip is.
type Rating struct {
	Affordability float64 `json:"affordability"`
	Seasonality   float64 `json:"seasonality"`
	Accessibility float64 `json:"accessibility"`
	Overall       float64 `json:"overall"`
}

// Weights applied to the component scores when computing Overall.
const (
	AffordabilityWeight = 0.3
	SeasonalityWeight   = 0.3
	AccessibilityWeight = 0.4
)

// costBand maps a daily spend ceiling to an affordability score.
type costBand struct {
	maxPerDay float64
	score     float64
}

var costBands = []costBand{
	{maxPerDay: 50, score: 9.0},
	{maxPerDay: 100, score: 7.5},
	{maxPerDay: 200, score: 6.0},
	{maxPerDay: 400, score: 4.5},
}

const expensiveScore = 3.0

// Region describes when a group of destinations is in peak season.
type Region struct {
	Name       string
	Fragments  []string
	PeakMonths []time.Month
	OffSeason  float64
}

const (
	baseSeasonality = 7.0
	peakSeasonality = 9.0
)

// Regions are checked in order; the first region with a matching fragment applies.
var Regions = []Region{
	{
		Name: "europe",
		Fragments: []string{
			"france", "paris", "italy", "rome", "spain", "barcelona", "germany", "berlin",
			"greece", "portugal", "united kingdom", "england", "london", "netherlands",
			"amsterdam", "austria", "switzerland", "ireland", "croatia", "europe",
		},
		PeakMonths: []time.Month{time.May, time.June, time.July, time.August, time.September},
		OffSeason:  6.0,
	},
	{
		Name:       "north-east-asia",
		Fragments:  []string{"japan", "tokyo", "kyoto", "korea", "seoul", "china", "beijing", "shanghai"},
		PeakMonths: []time.Month{time.March, time.April, time.May, time.September, time.October, time.November},
		OffSeason:  6.5,
	},
	{
		Name:       "southern-hemisphere",
		Fragments:  []string{"australia", "sydney", "melbourne", "new zealand", "south africa", "argentina", "chile"},
		PeakMonths: []time.Month{time.December, time.January, time.February},
		OffSeason:  6.5,
	},
	{
		Name:       "south-east-asia",
		Fragments:  []string{"thailand", "bangkok", "phuket", "vietnam", "indonesia", "bali", "malaysia", "philippines", "cambodia", "singapore"},
		PeakMonths: []time.Month{time.November, time.December, time.January, time.February},
		OffSeason:  6.0,
	},
}

// PopularCities get an accessibility bonus for their transport links.
var PopularCities = []string{
	"paris", "london", "tokyo", "new york", "rome", "barcelona", "amsterdam", "bangkok",
	"singapore", "dubai", "sydney", "seoul", "berlin", "madrid", "istanbul", "hong kong",
}

const popularCityBonus = 1.0

// ScoreTrip derives a Rating from the trip parameters and the current date.
// It is pure: the same inputs always produce the same rating.
func ScoreTrip(p trip.Parameters, today time.Time) Rating {
	dest := strings.ToLower(p.Destination)

	a := round1(Affordability(p.DailyBudget()))
	s := round1(Seasonality(dest, today.Month()))
	acc := round1(Accessibility(dest, p.DurationDays))

	return Rating{
		Affordability: a,
		Seasonality:   s,
		Accessibility: acc,
		Overall:       round1(AffordabilityWeight*a + SeasonalityWeight*s + AccessibilityWeight*acc),
	}
}

// Affordability scores a daily spend: the lower the spend, the higher the score.
func Affordability(perDay float64) float64 {
	for _, b := range costBands {
		if perDay <= b.maxPerDay {
			return b.score
		}
	}
	return expensiveScore
}

// Seasonality scores how favourable month is for visiting dest.
// dest must already be lowercase.
func Seasonality(dest string, month time.Month) float64 {
	for _, r := range Regions {
		if !containsAny(dest, r.Fragments) {
			continue
		}
		for _, m := range r.PeakMonths {
			if m == month {
				return peakSeasonality
			}
		}
		return r.OffSeason
	}
	return baseSeasonality
}

// Accessibility scores how easy a trip of the given length is to organise.
// dest must already be lowercase.
func Accessibility(dest string, days int) float64 {
	var score float64
	switch {
	case days <= 5:
		score = 9.0
	case days <= 14:
		score = 8.0
	default:
		score = 6.5
	}
	if containsAny(dest, PopularCities) {
		score = math.Min(score+popularCityBonus, 10.0)
	}
	return score
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
