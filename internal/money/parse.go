// Package money parses free-text monetary expressions ("R$ 2,3 bi",
// "290 milhões") into normalized numeric values.
package money

import (
	"regexp"
	"strconv"
	"strings"
)

// Currency is an ISO-4217 currency code.
type Currency string

const (
	BRL Currency = "BRL"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Value is a parsed monetary amount.
type Value struct {
	// Amount is the normalized magnitude: the raw number multiplied by the
	// unit's multiplier (2.3 "bi" → 2.3e9).
	Amount float64
	// Currency defaults to BRL when no symbol is present; the tool targets
	// the Brazilian market and most sources omit the symbol for reais.
	Currency Currency
	// Unit is the matched unit token, kept for display even though Amount
	// already incorporates the multiplier.
	Unit string
}

// currencySymbols maps symbols found in text to currency codes.
var currencySymbols = map[string]Currency{
	"R$":  BRL,
	"US$": USD,
	"$":   USD,
	"€":   EUR,
}

// unitMultipliers maps unit words to magnitude multipliers. Portuguese and
// English abbreviations of the bi/mi/mil families.
var unitMultipliers = map[string]float64{
	"bi":       1e9,
	"b":        1e9,
	"bilhao":   1e9,
	"bilhão":   1e9,
	"bilhoes":  1e9,
	"bilhões":  1e9,
	"mi":       1e6,
	"m":        1e6,
	"milhao":   1e6,
	"milhão":   1e6,
	"milhoes":  1e6,
	"milhões":  1e6,
	"mil":      1e3,
	"k":        1e3,
	"milhares": 1e3,
}

// sentinels are inputs that mean "no value available" and short-circuit
// parsing.
var sentinels = map[string]bool{
	"nao_disponivel": true,
	"nao disponivel": true,
	"não disponível": true,
	"not_available":  true,
	"n/a":            true,
}

// pattern is one entry of the ordered match list. Patterns run most specific
// first; the first match wins.
type pattern struct {
	re        *regexp.Regexp
	symbolIdx int // submatch index of the currency symbol, 0 if none
	numberIdx int
	unitIdx   int // submatch index of the unit word, 0 if none
}

var patterns = []pattern{
	// Currency symbol + number + unit word: "R$ 2,3 bi".
	{
		re:        regexp.MustCompile(`(R\$|US\$|\$|€)\s*(\d+(?:[.,]\d+)?)\s*([\p{L}]+)`),
		symbolIdx: 1, numberIdx: 2, unitIdx: 3,
	},
	// Bare number + unit word: "290 milhões".
	{
		re:        regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([\p{L}]+)`),
		numberIdx: 1, unitIdx: 2,
	},
	// Currency symbol + number, no unit: "R$ 500000".
	{
		re:        regexp.MustCompile(`(R\$|US\$|\$|€)\s*(\d+(?:[.,]\d+)?)`),
		symbolIdx: 1, numberIdx: 2,
	},
	// Bare number: "500000".
	{
		re:        regexp.MustCompile(`(\d+(?:[.,]\d+)?)`),
		numberIdx: 1,
	},
}

// Parse extracts a monetary value from free text. ok is false when the text
// is empty, a sentinel, or contains no parsable figure. Parse never fails
// with an error: malformed input degrades to "no value found".
func Parse(text string) (Value, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || sentinels[strings.ToLower(trimmed)] {
		return Value{}, false
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		amount, err := strconv.ParseFloat(strings.Replace(m[p.numberIdx], ",", ".", 1), 64)
		if err != nil {
			return Value{}, false
		}

		v := Value{Amount: amount, Currency: BRL}
		if p.symbolIdx > 0 {
			if c, ok := currencySymbols[m[p.symbolIdx]]; ok {
				v.Currency = c
			}
		}
		if p.unitIdx > 0 {
			unit := strings.ToLower(m[p.unitIdx])
			if mul, ok := unitMultipliers[unit]; ok {
				v.Amount *= mul
				v.Unit = unit
			}
			// Unknown unit words ("reais", "anuais") leave the amount
			// literal and the Unit field empty.
		}
		return v, true
	}

	return Value{}, false
}

// Multiplier returns the magnitude multiplier for a unit token, or 1 when the
// token is not a recognized unit.
func Multiplier(unit string) float64 {
	if m, ok := unitMultipliers[strings.ToLower(unit)]; ok {
		return m
	}
	return 1
}
