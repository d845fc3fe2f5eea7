// Package cost estimates the price of a trip from a travel style, a
// destination multiplier and the trip length.
package cost

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidStyle is returned for a travel style outside the fixed enumeration.
var ErrInvalidStyle = errors.New("invalid travel style")

// Style is the travel comfort level.
type Style string

const (
	Economy  Style = "Economy"
	Standard Style = "Standard"
	Comfort  Style = "Comfort"
)

// Styles lists every valid style in ascending price order.
var Styles = []Style{Economy, Standard, Comfort}

var styleAliases = map[string]Style{
	"economy":     Economy,
	"ekonomiczny": Economy,
	"standard":    Standard,
	"standardowy": Standard,
	"comfort":     Comfort,
	"komfortowy":  Comfort,
}

// ParseStyle parses s case-insensitively. Polish form labels are accepted
// as aliases.
func ParseStyle(s string) (Style, error) {
	if st, ok := styleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
}

// TargetCurrency is the currency totals are computed in.
const TargetCurrency = "PLN"

// DefaultBaseRates are daily rates per style in the target currency.
var DefaultBaseRates = map[Style]float64{
	Economy:  300,
	Standard: 500,
	Comfort:  900,
}

// DefaultRates holds target-currency units per one unit of each local currency.
var DefaultRates = map[string]float64{
	"PLN": 1,
	"EUR": 4.3,
	"USD": 4.0,
	"GBP": 5.1,
	"CHF": 4.5,
	"CZK": 0.17,
	"HUF": 0.011,
	"DKK": 0.58,
	"NOK": 0.37,
	"SEK": 0.38,
	"TRY": 0.12,
	"JPY": 0.027,
	"THB": 0.11,
	"AED": 1.09,
}

// Estimate is a derived trip price. It is never edited in place: change an
// input and call Estimator.Estimate again.
type Estimate struct {
	Total          float64 `json:"total"`
	TotalLocal     float64 `json:"total_local"`
	Currency       string  `json:"currency"`
	TargetCurrency string  `json:"target_currency"`
	ExchangeRate   float64 `json:"exchange_rate"`
}

// Estimator computes Estimates from base rates and exchange rates.
type Estimator struct {
	base  map[Style]float64
	rates map[string]float64
}

// NewEstimator returns an Estimator using the default rate tables.
func NewEstimator() *Estimator {
	return &Estimator{base: DefaultBaseRates, rates: DefaultRates}
}

// NewEstimatorWithRates returns an Estimator with custom tables (for tests).
func NewEstimatorWithRates(base map[Style]float64, rates map[string]float64) *Estimator {
	return &Estimator{base: base, rates: rates}
}

// BaseRate returns the daily rate for style.
func (e *Estimator) BaseRate(style Style) (float64, error) {
	rate, ok := e.base[style]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	return rate, nil
}

// Estimate returns round_half_up(base_rate[style] * multiplier * days) in the
// target currency, plus the same amount in localCurrency. An unknown local
// currency falls back to the target currency.
func (e *Estimator) Estimate(style Style, multiplier float64, days int, localCurrency string) (Estimate, error) {
	base, err := e.BaseRate(style)
	if err != nil {
		return Estimate{}, err
	}

	total := RoundHalfUp(base * multiplier * float64(days))

	currency := strings.ToUpper(strings.TrimSpace(localCurrency))
	rate, ok := e.rates[currency]
	if !ok || rate <= 0 {
		currency, rate = TargetCurrency, 1
	}

	return Estimate{
		Total:          total,
		TotalLocal:     math.Round(total/rate*100) / 100,
		Currency:       currency,
		TargetCurrency: TargetCurrency,
		ExchangeRate:   rate,
	}, nil
}

// RoundHalfUp rounds v to the nearest integer with ties going up. Float noise
// below 1e-6 is removed first so 500*1.101 rounds as 550.5.
func RoundHalfUp(v float64) float64 {
	cleaned := math.Round(v*1e6) / 1e6
	return math.Floor(cleaned + 0.5)
}
