/*
Package rates provides JSON to Go rate-table conversion.

PURPOSE:
  Loads externally supplied currency rate documents into a
  finance.RateTable. Rate discovery and refresh are entirely external to
  the engine: whatever service maintains the rates writes a document in
  the schema below, and this package parses and validates it.

JSON SCHEMA:
  {
    "rates": {
      "EUR": {"USD": "1.1", "GBP": "0.85"},
      "USD": {"EUR": "0.909"}
    }
  }

  Rates are strings so they parse losslessly into decimals; the numbers
  in a JSON document would otherwise round-trip through float64.

VALIDATION:
  - Every rate must parse as a positive decimal.
  - CheckReciprocals reports pairs whose direct and inverse rates are not
    reciprocal within a tolerance. Inconsistent tables are allowed (the
    round-trip law only holds when rates are reciprocal) but the caller
    can surface the warning.

SEE ALSO:
  - finance/currency.go: The consuming Converter
*/
package rates

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// =============================================================================
// PARSING
// =============================================================================

type tableJSON struct {
	Rates map[string]map[string]string `json:"rates"`
}

// Parse converts a rate document into a RateTable.
func Parse(data []byte) (finance.RateTable, error) {
	var doc tableJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid rate document: %w", err)
	}
	if len(doc.Rates) == 0 {
		return nil, fmt.Errorf("rate document contains no rates")
	}

	table := make(finance.RateTable, len(doc.Rates))
	for from, inner := range doc.Rates {
		row := make(map[finance.CurrencyCode]decimal.Decimal, len(inner))
		for to, raw := range inner {
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("rate %s->%s: %w", from, to, err)
			}
			if !rate.IsPositive() {
				return nil, fmt.Errorf("rate %s->%s: must be positive, got %s", from, to, raw)
			}
			row[finance.CurrencyCode(to)] = rate
		}
		table[finance.CurrencyCode(from)] = row
	}
	return table, nil
}

// Load reads and parses a rate document from disk.
func Load(path string) (finance.RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate file: %w", err)
	}
	return Parse(data)
}

// =============================================================================
// CONSISTENCY CHECK
// =============================================================================

// Inconsistency reports a pair whose direct and inverse rates disagree.
type Inconsistency struct {
	From     finance.CurrencyCode
	To       finance.CurrencyCode
	Forward  decimal.Decimal
	Backward decimal.Decimal
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s->%s=%s but %s->%s=%s", i.From, i.To, i.Forward, i.To, i.From, i.Backward)
}

// CheckReciprocals finds pairs where forward * backward deviates from 1 by
// more than tolerance. Informational: the converter works either way, but
// the round-trip law only holds for reciprocal tables.
func CheckReciprocals(table finance.RateTable, tolerance decimal.Decimal) []Inconsistency {
	one := decimal.NewFromInt(1)
	var out []Inconsistency
	for from, row := range table {
		for to, forward := range row {
			backward, ok := table.Rate(to, from)
			if !ok {
				continue
			}
			drift := forward.Mul(backward).Sub(one).Abs()
			if drift.GreaterThan(tolerance) {
				out = append(out, Inconsistency{From: from, To: to, Forward: forward, Backward: backward})
			}
		}
	}
	return out
}

// =============================================================================
// DEMO TABLE
// =============================================================================

// Demo returns a small self-consistent table for scenarios and local dev.
func Demo() finance.RateTable {
	return finance.RateTable{
		"EUR": {
			"USD": finance.MustParseDecimal("1.1"),
			"GBP": finance.MustParseDecimal("0.85"),
		},
		"USD": {
			"EUR": finance.MustParseDecimal("0.9090909090909091"),
			"GBP": finance.MustParseDecimal("0.7727272727272727"),
		},
		"GBP": {
			"EUR": finance.MustParseDecimal("1.1764705882352941"),
			"USD": finance.MustParseDecimal("1.2941176470588235"),
		},
	}
}
