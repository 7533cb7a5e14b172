package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func eurProject() finance.Project {
	return finance.Project{
		ID: "proj-1", ClientID: "client-1", Name: "Brand Refresh",
		Currency:    "EUR",
		PricingType: finance.PricingFixed,
		FixedPrice:  decPtr("1000"),
	}
}

func reconcile(t *testing.T, in finance.ReconcileInput) finance.BudgetReport {
	t.Helper()
	report, err := finance.NewBudgetReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	return report
}

func hasDegradation(report finance.BudgetReport, code finance.DegradationCode) bool {
	for _, d := range report.Degradations {
		if d.Code == code {
			return true
		}
	}
	return false
}

func hasAdvisory(report finance.BudgetReport, code finance.AdvisoryCode) bool {
	for _, a := range report.Advisories {
		if a.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// CURRENCY / CONVERSION
// =============================================================================

func TestReconcile_MilestoneAmountConvertedToDisplayCurrency(t *testing.T) {
	// GIVEN: A EUR project with a 500 EUR milestone, displayed in USD at 1.1
	// WHEN: Reconciling
	// THEN: The milestone line shows 550 USD

	in := finance.ReconcileInput{
		Project: eurProject(),
		Milestones: []finance.Milestone{
			{ID: "m1", ProjectID: "proj-1", Name: "Phase 1", Amount: decPtr("500")},
		},
		DisplayCurrency: "USD",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.Equal(t, finance.CurrencyCode("USD"), report.Currency)
	require.Len(t, report.Milestones, 1)
	require.NotNil(t, report.Milestones[0].Amount)
	assert.True(t, report.Milestones[0].Amount.Amount.Equal(dec("550")))
	assert.Equal(t, finance.CurrencyCode("USD"), report.Milestones[0].Amount.Currency)
}

func TestReconcile_EmptyDisplayCurrencyDefaultsToNative(t *testing.T) {
	in := finance.ReconcileInput{
		Project: eurProject(),
		Rates:   testRates(),
	}

	report := reconcile(t, in)

	assert.Equal(t, finance.CurrencyCode("EUR"), report.Currency)
	assert.True(t, report.TotalBudget.Amount.Equal(dec("1000")))
}

func TestReconcile_UnknownDisplayCurrency_FallsBackToNative(t *testing.T) {
	// GIVEN: A display currency absent from the rate table
	// WHEN: Reconciling
	// THEN: The report degrades to native-currency figures instead of
	//       failing, and records the cause

	in := finance.ReconcileInput{
		Project:         eurProject(),
		DisplayCurrency: "JPY",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.Equal(t, finance.CurrencyCode("EUR"), report.Currency)
	assert.True(t, report.TotalBudget.Amount.Equal(dec("1000")))
	assert.True(t, hasDegradation(report, finance.DegradedUnknownCurrency))
}

// =============================================================================
// REVENUE
// =============================================================================

func TestReconcile_RevenueCountsOnlyPaidInvoices(t *testing.T) {
	in := finance.ReconcileInput{
		Project: eurProject(),
		Invoices: []finance.Invoice{
			{ID: "inv-1", ProjectID: "proj-1", Amount: dec("400"), Currency: "EUR", Status: finance.InvoicePaid},
			{ID: "inv-2", ProjectID: "proj-1", Amount: dec("300"), Currency: "EUR", Status: finance.InvoicePending},
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, report.RevenueEarned.Amount.Equal(dec("400")))
	assert.True(t, report.RevenueProgress.Equal(decimal.NewFromInt(40)))
}

func TestReconcile_RevenueConvertsInvoiceCurrency(t *testing.T) {
	in := finance.ReconcileInput{
		Project: eurProject(),
		Invoices: []finance.Invoice{
			{ID: "inv-1", ProjectID: "proj-1", Amount: dec("500"), Currency: "EUR", Status: finance.InvoicePaid},
		},
		DisplayCurrency: "USD",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, report.RevenueEarned.Amount.Equal(dec("550")))
}

func TestReconcile_UnconvertibleInvoice_CountedAtNativeAmount(t *testing.T) {
	// Revenue is never silently dropped: a paid invoice in an unknown
	// currency contributes its native amount and the report says why.
	in := finance.ReconcileInput{
		Project: eurProject(),
		Invoices: []finance.Invoice{
			{ID: "inv-1", ProjectID: "proj-1", Amount: dec("100"), Currency: "CHF", Status: finance.InvoicePaid},
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, report.RevenueEarned.Amount.Equal(dec("100")))
	assert.True(t, hasDegradation(report, finance.DegradedUnknownCurrency))

	// The degradation names the native currency that was counted.
	var detail string
	for _, d := range report.Degradations {
		if d.Code == finance.DegradedUnknownCurrency {
			detail = d.Detail
		}
	}
	assert.Contains(t, detail, "CHF")
	assert.Contains(t, detail, "inv-1")
}

// =============================================================================
// DEGRADATIONS
// =============================================================================

func TestReconcile_MalformedEntryRecordedAndExcluded(t *testing.T) {
	in := finance.ReconcileInput{
		Project: eurProject(),
		HourEntries: []finance.HourEntry{
			entry("good", "m1", "2", false),
			entry("bad", `{"ref":true}`, "50", false),
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, report.Hours.Total.Equal(dec("2")))
	assert.True(t, hasDegradation(report, finance.DegradedMalformedEntry))
}

func TestReconcile_SpendNotComputedRecorded(t *testing.T) {
	p := eurProject() // fixed price, no hourly rate
	in := finance.ReconcileInput{
		Project:         p,
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.False(t, report.SpendComputed)
	assert.True(t, report.SpentAmount.IsZero())
	assert.True(t, hasDegradation(report, finance.DegradedSpendNotComputed))
}

func TestReconcile_UnknownPricingTypeIsHardError(t *testing.T) {
	p := eurProject()
	p.PricingType = "retainer"

	_, err := finance.NewBudgetReconciler(nil).Reconcile(finance.ReconcileInput{
		Project: p,
		Rates:   testRates(),
	})

	assert.Error(t, err)
}

// =============================================================================
// ADVISORIES
// =============================================================================

func TestReconcile_BudgetAheadAdvisory(t *testing.T) {
	// Budget progress 80% vs average completion 20% crosses the +15 margin.
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := eurProject()
	p.HourlyRate = decPtr("100")

	in := finance.ReconcileInput{
		Project: p,
		Milestones: []finance.Milestone{
			{ID: "m1", ProjectID: "proj-1", CompletionPercentage: 20},
		},
		Tasks: []finance.Task{
			completedTask("t1", "8", false, day),
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, report.BudgetProgress.Equal(decimal.NewFromInt(80)))
	assert.True(t, hasAdvisory(report, finance.AdvisoryBudgetAhead))
}

func TestReconcile_RevenueLagAdvisory(t *testing.T) {
	// Zero revenue against 80% average completion crosses the -20 margin.
	in := finance.ReconcileInput{
		Project: eurProject(),
		Milestones: []finance.Milestone{
			{ID: "m1", ProjectID: "proj-1", CompletionPercentage: 80},
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.True(t, hasAdvisory(report, finance.AdvisoryRevenueLagged))
}

func TestReconcile_NoMilestonesNoAdvisories(t *testing.T) {
	in := finance.ReconcileInput{
		Project:         eurProject(),
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	assert.Empty(t, report.Advisories)
}

func TestReconcile_AdvisoryUsesClampedCompletion(t *testing.T) {
	// Stored completion of 250 participates as 100, keeping the average in
	// range.
	in := finance.ReconcileInput{
		Project: eurProject(),
		Milestones: []finance.Milestone{
			{ID: "m1", ProjectID: "proj-1", CompletionPercentage: 250},
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	require.Len(t, report.Milestones, 1)
	assert.Equal(t, 100, report.Milestones[0].Completion)
}

// =============================================================================
// MILESTONE LINES
// =============================================================================

func TestReconcile_MilestoneLineCarriesBillingStateAndHours(t *testing.T) {
	mid := finance.MilestoneID("m1")
	in := finance.ReconcileInput{
		Project: eurProject(),
		Milestones: []finance.Milestone{
			{ID: "m1", ProjectID: "proj-1", Name: "Phase 1", Status: finance.MilestoneInProgress,
				PaymentStatus: finance.PaymentUnpaid, Amount: decPtr("500")},
		},
		Invoices: []finance.Invoice{
			{ID: "inv-1", ProjectID: "proj-1", MilestoneID: &mid,
				Amount: dec("500"), Currency: "EUR", Status: finance.InvoicePending},
		},
		HourEntries: []finance.HourEntry{
			entry("e1", "m1", "3", true),
			entry("e2", "m1", "2", false),
			entry("e3", "", "4", false),
		},
		DisplayCurrency: "EUR",
		Rates:           testRates(),
	}

	report := reconcile(t, in)

	require.Len(t, report.Milestones, 1)
	line := report.Milestones[0]
	assert.Equal(t, finance.BillingInvoicePending, line.BillingState)
	require.NotNil(t, line.InvoiceID)
	assert.Equal(t, finance.InvoiceID("inv-1"), *line.InvoiceID)
	assert.True(t, line.Hours.Total.Equal(dec("5")))
	assert.True(t, line.Hours.Billed.Equal(dec("3")))

	assert.True(t, report.Unassigned.Total.Equal(dec("4")))
	assert.True(t, report.Hours.Total.Equal(dec("9")))
}
