package rates_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
	"github.com/onutadrian/client-zen-dashboard-sub000/rates"
)

func TestParse_ValidDocument(t *testing.T) {
	doc := []byte(`{"rates": {"EUR": {"USD": "1.1", "GBP": "0.85"}, "USD": {"EUR": "0.909"}}}`)

	table, err := rates.Parse(doc)

	require.NoError(t, err)
	rate, ok := table.Rate("EUR", "USD")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(1.1)))
	assert.ElementsMatch(t, []finance.CurrencyCode{"EUR", "USD"}, table.Currencies())
}

func TestParse_StringRatesAreLossless(t *testing.T) {
	// A rate like 0.1 has no exact float64 representation; the string form
	// must parse to exactly the decimal written in the document.
	doc := []byte(`{"rates": {"EUR": {"USD": "0.1"}}}`)

	table, err := rates.Parse(doc)

	require.NoError(t, err)
	rate, _ := table.Rate("EUR", "USD")
	assert.Equal(t, "0.1", rate.String())
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"empty rates":      `{"rates": {}}`,
		"non-numeric rate": `{"rates": {"EUR": {"USD": "abc"}}}`,
		"zero rate":        `{"rates": {"EUR": {"USD": "0"}}}`,
		"negative rate":    `{"rates": {"EUR": {"USD": "-1.1"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := rates.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCheckReciprocals_FlagsDrift(t *testing.T) {
	// EUR->USD = 1.1 but USD->EUR = 0.5: the product is 0.55, far from 1.
	table := finance.RateTable{
		"EUR": {"USD": decimal.NewFromFloat(1.1)},
		"USD": {"EUR": decimal.NewFromFloat(0.5)},
	}

	out := rates.CheckReciprocals(table, decimal.New(1, -6))

	assert.Len(t, out, 2) // both directions of the same pair
}

func TestCheckReciprocals_CleanOnDemoTable(t *testing.T) {
	out := rates.CheckReciprocals(rates.Demo(), decimal.New(1, -6))

	assert.Empty(t, out)
}

func TestCheckReciprocals_MissingInverseIsNotDrift(t *testing.T) {
	table := finance.RateTable{
		"EUR": {"USD": decimal.NewFromFloat(1.1)},
	}

	out := rates.CheckReciprocals(table, decimal.New(1, -6))

	assert.Empty(t, out)
}
