/*
sqlite_test.go - Storage-level tests

Tests for:
- Record round-trips with optional (NULL) fields
- The authoritative one-invoice-per-milestone unique index
- Completion clamping on write
- Not-found handling for updates
*/
package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
	"github.com/onutadrian/client-zen-dashboard-sub000/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateClient(ctx, finance.Client{
		ID: "client-1", Name: "Acme", Email: "billing@acme.test", Currency: "EUR",
	}))
	require.NoError(t, s.CreateProject(ctx, finance.Project{
		ID: "proj-1", ClientID: "client-1", Name: "Platform Build",
		Currency: "EUR", PricingType: finance.PricingHourly,
		HourlyRate: decPtr("75"), UrgentHourlyRate: decPtr("110"),
	}))
}

// =============================================================================
// ROUND-TRIPS
// =============================================================================

func TestProject_RoundTripPreservesOptionalFields(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)

	p, err := s.Project(ctx, "proj-1")

	require.NoError(t, err)
	assert.Equal(t, finance.PricingHourly, p.PricingType)
	require.NotNil(t, p.HourlyRate)
	assert.True(t, p.HourlyRate.Equal(dec("75")))
	require.NotNil(t, p.UrgentHourlyRate)
	assert.True(t, p.UrgentHourlyRate.Equal(dec("110")))
	assert.Nil(t, p.FixedPrice)
	assert.Nil(t, p.DailyRate)
	assert.Nil(t, p.EstimatedHours)
}

func TestProject_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Project(context.Background(), "missing")

	assert.True(t, errors.Is(err, finance.ErrNotFound))
}

func TestHourEntry_MalformedRefSurvivesStorage(t *testing.T) {
	// The store never sanitizes milestone references: a malformed legacy
	// value must come back verbatim so the ledger can exclude and report it.
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)

	badRef := `{"milestone":"m1"}`
	require.NoError(t, s.CreateHourEntry(ctx, finance.HourEntry{
		ID: "e1", ProjectID: "proj-1", MilestoneRef: badRef,
		Hours: dec("2"), Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	entries, err := s.HourEntries(ctx, "proj-1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, badRef, entries[0].MilestoneRef)
	assert.True(t, entries[0].Malformed())
}

func TestHourEntry_DecimalHoursExact(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)

	require.NoError(t, s.CreateHourEntry(ctx, finance.HourEntry{
		ID: "e1", ProjectID: "proj-1", Hours: dec("0.1"),
		Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	entries, err := s.HourEntries(ctx, "proj-1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0.1", entries[0].Hours.String())
}

// =============================================================================
// UNIQUE INVOICE PER MILESTONE
// =============================================================================

func TestCreateInvoice_UniqueIndexRefusesSecondInvoice(t *testing.T) {
	// GIVEN: A milestone that already has an invoice row
	// WHEN: Inserting another invoice referencing the same milestone
	// THEN: The unique index fires and maps to the sentinel error

	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)
	require.NoError(t, s.CreateMilestone(ctx, finance.Milestone{
		ID: "m1", ProjectID: "proj-1", Name: "Phase 1",
		Status: finance.MilestonePending, PaymentStatus: finance.PaymentUnpaid,
	}))

	mid := finance.MilestoneID("m1")
	first := finance.Invoice{
		ID: "inv-1", ProjectID: "proj-1", MilestoneID: &mid,
		Amount: dec("500"), Currency: "EUR", Status: finance.InvoicePending,
		IssuedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateInvoice(ctx, first))

	second := first
	second.ID = "inv-2"
	err := s.CreateInvoice(ctx, second)

	assert.True(t, errors.Is(err, finance.ErrUniqueInvoicePerMilestone))
}

func TestCreateInvoice_NullMilestoneUnconstrained(t *testing.T) {
	// The partial index only covers non-NULL milestone_id; ad-hoc invoices
	// can pile up freely.
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)

	for _, id := range []finance.InvoiceID{"inv-1", "inv-2", "inv-3"} {
		err := s.CreateInvoice(ctx, finance.Invoice{
			ID: id, ProjectID: "proj-1",
			Amount: dec("100"), Currency: "EUR", Status: finance.InvoicePending,
			IssuedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	invoices, err := s.Invoices(ctx, "proj-1")
	require.NoError(t, err)
	assert.Len(t, invoices, 3)
}

// =============================================================================
// UPDATES
// =============================================================================

func TestSetMilestoneCompletion_ClampsOnWrite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)
	require.NoError(t, s.CreateMilestone(ctx, finance.Milestone{
		ID: "m1", ProjectID: "proj-1", Name: "Phase 1",
		Status: finance.MilestonePending, PaymentStatus: finance.PaymentUnpaid,
	}))

	require.NoError(t, s.SetMilestoneCompletion(ctx, "m1", 250))

	m, err := s.Milestone(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 100, m.CompletionPercentage)
}

func TestUpdateTaskStatus_CompletionStampsWorkedHoursAndDate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)
	require.NoError(t, s.CreateTask(ctx, finance.Task{
		ID: "t1", ProjectID: "proj-1", Name: "Build API",
		Status: finance.TaskInProgress,
	}))

	require.NoError(t, s.UpdateTaskStatus(ctx, "t1", finance.TaskCompleted, decPtr("6.5")))

	task, err := s.Task(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, finance.TaskCompleted, task.Status)
	require.NotNil(t, task.WorkedHours)
	assert.True(t, task.WorkedHours.Equal(dec("6.5")))
	require.NotNil(t, task.CompletedOn)
}

func TestUpdates_MissingRowIsNotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	assert.True(t, errors.Is(s.SetEntryBilled(ctx, "missing", true), finance.ErrNotFound))
	assert.True(t, errors.Is(s.UpdateInvoiceStatus(ctx, "missing", finance.InvoicePaid), finance.ErrNotFound))
	assert.True(t, errors.Is(s.SetMilestonePaymentStatus(ctx, "missing", finance.PaymentPaid), finance.ErrNotFound))
}

func TestSetEntryBilled_TogglesBothWays(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedProject(t, s)
	require.NoError(t, s.CreateHourEntry(ctx, finance.HourEntry{
		ID: "e1", ProjectID: "proj-1", Hours: dec("2"),
		Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, s.SetEntryBilled(ctx, "e1", true))
	entries, _ := s.HourEntries(ctx, "proj-1")
	assert.True(t, entries[0].Billed)

	require.NoError(t, s.SetEntryBilled(ctx, "e1", false))
	entries, _ = s.HourEntries(ctx, "proj-1")
	assert.False(t, entries[0].Billed)
}
