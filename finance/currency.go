/*
currency.go - Currency conversion over an externally supplied rate table

PURPOSE:
  Converts monetary amounts between currency codes. The engine never
  discovers rates itself: the table is supplied by the caller (loaded by
  the rates package from whatever source refreshes it externally).

CONTRACT:
  - convert(x, A, A) == x exactly. The identity path applies no arithmetic,
    so repeated conversion introduces no rounding drift.
  - Otherwise the amount is multiplied by the from->to rate.
  - Missing pairs fail with UnknownCurrencyError; the caller decides how to
    degrade (typically: show the native amount and record a warning).
  - Pure and referentially transparent. Same inputs, same outputs, always.
    The UI re-runs conversion on every render and must get stable figures.

DEMO MODE:
  Demo mode masks figures in the UI layer. It is strictly a presentation
  concern and deliberately does not exist here: the converter's arithmetic
  is identical with and without it.

SEE ALSO:
  - rates/rates.go: Rate table loading and validation
  - reconcile.go: Degradation handling on unknown pairs
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// RATE TABLE
// =============================================================================

// RateTable maps from-currency -> to-currency -> multiplier.
// Supplied externally and treated as read-only by the engine.
type RateTable map[CurrencyCode]map[CurrencyCode]decimal.Decimal

// Rate returns the from->to multiplier, if present.
func (t RateTable) Rate(from, to CurrencyCode) (decimal.Decimal, bool) {
	inner, ok := t[from]
	if !ok {
		return decimal.Decimal{}, false
	}
	rate, ok := inner[to]
	return rate, ok
}

// Currencies returns every currency code that appears as a source in the
// table. Used by the API layer to populate currency pickers.
func (t RateTable) Currencies() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	return codes
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter converts amounts between currencies using a fixed rate table.
// It holds no other state and is safe for concurrent use.
type Converter struct {
	rates RateTable
}

func NewConverter(rates RateTable) *Converter {
	return &Converter{rates: rates}
}

// Convert converts m into the target currency.
//
// Identity conversions return the input unchanged, bypassing the table
// entirely: a table that is missing the USD->USD pair must not break
// USD-native reports.
func (c *Converter) Convert(m Money, to CurrencyCode) (Money, error) {
	if m.Currency == to {
		return m, nil
	}
	amount, err := c.ConvertAmount(m.Amount, m.Currency, to)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: to}, nil
}

// ConvertAmount converts a bare decimal between currency codes.
func (c *Converter) ConvertAmount(amount decimal.Decimal, from, to CurrencyCode) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, ok := c.rates.Rate(from, to)
	if !ok {
		return decimal.Decimal{}, &UnknownCurrencyError{From: from, To: to}
	}
	return amount.Mul(rate), nil
}
