// Package forecast summarises projected exchange-rate series and picks the
// best day to exchange money.
package forecast

import (
	"context"
	"fmt"
	"time"
)

// DefaultHorizon is the number of days requested when none is configured.
const DefaultHorizon = 30

// Point is one projected rate: units of the target currency per unit of the
// base currency on Date.
type Point struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// Day formats the point's date as YYYY-MM-DD.
func (p Point) Day() string {
	return p.Date.Format("2006-01-02")
}

// Series is an ordered run of points, earliest first.
type Series []Point

// Request identifies the currency pair and horizon to forecast.
type Request struct {
	Base    string `json:"base"`
	Target  string `json:"target"`
	Horizon int    `json:"horizon"`
}

// Source produces a forecast series for a currency pair.
type Source interface {
	Forecast(ctx context.Context, req Request) (Series, error)
}

// Summary describes a forecast series. BestDay is nil for an empty series.
type Summary struct {
	Current      float64 `json:"current"`
	Average      float64 `json:"average"`
	TrendPercent float64 `json:"trend_percent"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	BestDay      *Point  `json:"best_day,omitempty"`
}

// Summarize computes statistics over s. The best day is the point with the
// highest rate, the earliest one on ties: it yields the most target currency
// per unit of base currency.
func Summarize(s Series) Summary {
	if len(s) == 0 {
		return Summary{}
	}

	first, last := s[0].Rate, s[len(s)-1].Rate
	sum := 0.0
	minRate, maxRate := first, first
	best := 0
	for i, p := range s {
		sum += p.Rate
		if p.Rate < minRate {
			minRate = p.Rate
		}
		if p.Rate > maxRate {
			maxRate = p.Rate
			best = i
		}
	}

	var trend float64
	if first != 0 {
		trend = (last - first) / first * 100
	}

	bestDay := s[best]
	return Summary{
		Current:      first,
		Average:      sum / float64(len(s)),
		TrendPercent: trend,
		Min:          minRate,
		Max:          maxRate,
		BestDay:      &bestDay,
	}
}

// Recommendation is the sentence shown under the forecast chart. It is empty
// when there is no best day.
func Recommendation(sum Summary) string {
	if sum.BestDay == nil {
		return ""
	}
	return fmt.Sprintf("Based on our AI model, the best time to exchange your money is on %s when the rate is projected to be %.4f.",
		sum.BestDay.Day(), sum.BestDay.Rate)
}

// Flat projects a single rate across horizon consecutive days starting at start.
func Flat(rate float64, start time.Time, horizon int) Series {
	if horizon <= 0 {
		return nil
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	s := make(Series, horizon)
	for i := range s {
		s[i] = Point{Date: day.AddDate(0, 0, i), Rate: rate}
	}
	return s
}
