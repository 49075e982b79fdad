package trip

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format used for departure dates on the wire and in prompts.
const DateLayout = "2006-01-02"

// ErrInvalidParameters is returned (wrapped) when trip parameters fail validation.
var ErrInvalidParameters = errors.New("invalid trip parameters")

// Currency is a home currency offered on the trip details form.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedCurrencies lists the home currencies a traveller can pick.
var SupportedCurrencies = []Currency{
	{Code: "USD", Name: "US Dollar"},
	{Code: "EUR", Name: "Euro"},
	{Code: "GBP", Name: "British Pound"},
	{Code: "JPY", Name: "Japanese Yen"},
	{Code: "INR", Name: "Indian Rupee"},
	{Code: "CAD", Name: "Canadian Dollar"},
	{Code: "AUD", Name: "Australian Dollar"},
	{Code: "CHF", Name: "Swiss Franc"},
	{Code: "CNY", Name: "Chinese Yuan"},
}

// IsSupportedCurrency reports whether code is one of SupportedCurrencies.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Parameters is the immutable record describing a planned trip. It is supplied
// once when a planning session starts.
type Parameters struct {
	Destination   string    `json:"destination"`
	DurationDays  int       `json:"duration_days"`
	Budget        float64   `json:"budget"`
	HomeCurrency  string    `json:"home_currency"`
	DepartureDate time.Time `json:"departure_date"`
}

// Validate checks that every field is non-empty or positive. The budget must
// also be a finite number.
func (p Parameters) Validate() error {
	switch {
	case strings.TrimSpace(p.Destination) == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidParameters)
	case p.DurationDays <= 0:
		return fmt.Errorf("%w: duration must be a positive number of days", ErrInvalidParameters)
	case math.IsNaN(p.Budget) || math.IsInf(p.Budget, 0):
		return fmt.Errorf("%w: budget must be a finite number", ErrInvalidParameters)
	case p.Budget <= 0:
		return fmt.Errorf("%w: budget must be positive", ErrInvalidParameters)
	case p.HomeCurrency == "":
		return fmt.Errorf("%w: home currency is required", ErrInvalidParameters)
	case !IsSupportedCurrency(p.HomeCurrency):
		return fmt.Errorf("%w: unsupported home currency %q", ErrInvalidParameters, p.HomeCurrency)
	case p.DepartureDate.IsZero():
		return fmt.Errorf("%w: departure date is required", ErrInvalidParameters)
	}
	return nil
}

// DailyBudget returns the budget available per day of travel.
func (p Parameters) DailyBudget() float64 {
	if p.DurationDays <= 0 {
		return 0
	}
	return p.Budget / float64(p.DurationDays)
}

// Departure formats the departure date using DateLayout.
func (p Parameters) Departure() string {
	if p.DepartureDate.IsZero() {
		return ""
	}
	return p.DepartureDate.Format(DateLayout)
}

// Parse builds Parameters from the raw strings entered on the trip details
// form and validates the result.
func Parse(destination, duration, budget, homeCurrency, departure string) (Parameters, error) {
	p := Parameters{
		Destination:  strings.TrimSpace(destination),
		HomeCurrency: strings.ToUpper(strings.TrimSpace(homeCurrency)),
	}

	if d := strings.TrimSpace(duration); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			return Parameters{}, fmt.Errorf("%w: duration %q is not a whole number", ErrInvalidParameters, duration)
		}
		p.DurationDays = days
	}

	if b := strings.TrimSpace(budget); b != "" {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(b, ",", ""), 64)
		if err != nil {
			return Parameters{}, fmt.Errorf("%w: budget %q is not a number", ErrInvalidParameters, budget)
		}
		p.Budget = amount
	}

	if dep := strings.TrimSpace(departure); dep != "" {
		t, err := time.Parse(DateLayout, dep)
		if err != nil {
			return Parameters{}, fmt.Errorf("%w: departure date %q must be YYYY-MM-DD", ErrInvalidParameters, departure)
		}
		p.DepartureDate = t
	}

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}
