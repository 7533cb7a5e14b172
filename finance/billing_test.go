package finance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
	"github.com/onutadrian/client-zen-dashboard-sub000/finance/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, s.CreateProject(ctx, finance.Project{
		ID: "proj-1", ClientID: "client-1", Name: "Website Redesign",
		Currency: "USD", PricingType: finance.PricingFixed, FixedPrice: decPtr("5000"),
	}))
	require.NoError(t, s.CreateMilestone(ctx, finance.Milestone{
		ID: "m1", ProjectID: "proj-1", Name: "Design",
		Status: finance.MilestoneInProgress, PaymentStatus: finance.PaymentUnpaid,
		Amount: decPtr("2000"),
	}))
	return s
}

func draft(milestoneID string) finance.InvoiceDraft {
	d := finance.InvoiceDraft{
		ProjectID: "proj-1",
		Amount:    dec("2000"),
		Currency:  "USD",
	}
	if milestoneID != "" {
		id := finance.MilestoneID(milestoneID)
		d.MilestoneID = &id
	}
	return d
}

// =============================================================================
// INVOICE CREATION / DUPLICATE GUARD
// =============================================================================

func TestCreateInvoice_FirstInvoiceSucceeds(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	inv, err := c.CreateInvoice(ctx, draft("m1"))

	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, finance.InvoicePending, inv.Status)
	require.NotNil(t, inv.MilestoneID)
	assert.Equal(t, finance.MilestoneID("m1"), *inv.MilestoneID)
}

func TestCreateInvoice_SecondInvoiceForSameMilestoneRefused(t *testing.T) {
	// GIVEN: A milestone that already has an invoice
	// WHEN: Creating another invoice for it
	// THEN: The advisory pre-check refuses with the existing invoice's ID

	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	first, err := c.CreateInvoice(ctx, draft("m1"))
	require.NoError(t, err)

	_, err = c.CreateInvoice(ctx, draft("m1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, finance.ErrDuplicateInvoice))

	var dup *finance.DuplicateInvoiceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, finance.MilestoneID("m1"), dup.MilestoneID)
	assert.Equal(t, first.ID, dup.ExistingInvoiceID)
}

func TestCreateInvoice_ConstraintViolationTranslated(t *testing.T) {
	// GIVEN: A store whose listing hides the existing invoice, simulating
	//        the race where the pre-check passes but the constraint fires
	// WHEN: Creating the invoice
	// THEN: The constraint violation surfaces as the same
	//       DuplicateInvoiceError refusal, not as an internal error

	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(&blindListingStore{Memory: s}, nil)

	_, err := c.CreateInvoice(ctx, draft("m1"))
	require.NoError(t, err)

	_, err = c.CreateInvoice(ctx, draft("m1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, finance.ErrDuplicateInvoice))
}

func TestCreateInvoice_NoMilestoneSkipsGuard(t *testing.T) {
	// Ad-hoc invoices are unconstrained; a project can have many.
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	_, err := c.CreateInvoice(ctx, draft(""))
	require.NoError(t, err)
	_, err = c.CreateInvoice(ctx, draft(""))
	require.NoError(t, err)
}

// =============================================================================
// PAYMENT STATE MACHINE
// =============================================================================

func TestMarkInvoicePaid_AlsoMarksMilestonePaid(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	inv, err := c.CreateInvoice(ctx, draft("m1"))
	require.NoError(t, err)

	require.NoError(t, c.MarkInvoicePaid(ctx, inv.ID))

	got, err := s.Invoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.InvoicePaid, got.Status)

	m, err := s.Milestone(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentPaid, m.PaymentStatus)
}

func TestMarkMilestonePaid_QuickActionWithoutInvoice(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	require.NoError(t, c.MarkMilestonePaid(ctx, "m1"))

	m, err := s.Milestone(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentPaid, m.PaymentStatus)
}

func TestMarkMilestonePaid_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	require.NoError(t, c.MarkMilestonePaid(ctx, "m1"))
	require.NoError(t, c.MarkMilestonePaid(ctx, "m1"))
}

func TestSetMilestonePaymentStatus_RefusesRegressionFromPaid(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	require.NoError(t, c.MarkMilestonePaid(ctx, "m1"))

	err := c.SetMilestonePaymentStatus(ctx, "m1", finance.PaymentUnpaid)

	assert.True(t, errors.Is(err, finance.ErrPaymentRegression))

	m, err := s.Milestone(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentPaid, m.PaymentStatus)
}

func TestMilestoneBillingState_Derivation(t *testing.T) {
	m := finance.Milestone{ID: "m1", PaymentStatus: finance.PaymentUnpaid}
	mid := finance.MilestoneID("m1")
	pending := finance.Invoice{ID: "inv-1", MilestoneID: &mid, Status: finance.InvoicePending}
	paid := finance.Invoice{ID: "inv-1", MilestoneID: &mid, Status: finance.InvoicePaid}

	assert.Equal(t, finance.BillingNoInvoice, finance.MilestoneBillingState(m, nil))
	assert.Equal(t, finance.BillingInvoicePending, finance.MilestoneBillingState(m, &pending))
	assert.Equal(t, finance.BillingInvoicePaid, finance.MilestoneBillingState(m, &paid))

	// The mark-paid shortcut wins even with no invoice record.
	m.PaymentStatus = finance.PaymentPaid
	assert.Equal(t, finance.BillingInvoicePaid, finance.MilestoneBillingState(m, nil))
}

// =============================================================================
// BILLED TOGGLE - Best-effort batch
// =============================================================================

func TestSetTaskBilled_WritesEveryLinkedEntry(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	c := finance.NewMilestoneBillingController(s, nil)

	tid := finance.TaskID("t1")
	for i := 1; i <= 3; i++ {
		e := taskEntry(fmt.Sprintf("e%d", i), "t1", "1", false)
		require.NoError(t, s.CreateHourEntry(ctx, e))
	}

	result, err := c.SetTaskBilled(ctx, tid, true)

	require.NoError(t, err)
	assert.Len(t, result.Updated, 3)

	entries, err := s.HourEntriesForTask(ctx, tid)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Billed)
	}
}

func TestSetTaskBilled_MidBatchFailureKeepsEarlierWrites(t *testing.T) {
	// GIVEN: A store that fails the second SetEntryBilled write
	// WHEN: Toggling a task with three entries
	// THEN: The first write stands, the error names what was updated and
	//       where it failed, and nothing is rolled back

	ctx := context.Background()
	mem := seededStore(t)
	for i := 1; i <= 3; i++ {
		e := taskEntry(fmt.Sprintf("e%d", i), "t1", "1", false)
		require.NoError(t, mem.CreateHourEntry(ctx, e))
	}
	failing := &failingBilledStore{Memory: mem, failAt: 2}
	c := finance.NewMilestoneBillingController(failing, nil)

	result, err := c.SetTaskBilled(ctx, "t1", true)

	require.Error(t, err)
	var batch *finance.BatchToggleError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, finance.TaskID("t1"), batch.TaskID)
	assert.Equal(t, []finance.EntryID{"e1"}, batch.Updated)
	assert.Equal(t, finance.EntryID("e2"), batch.Failed)
	assert.Equal(t, []finance.EntryID{"e1"}, result.Updated)

	// The entry written before the failure keeps its new state.
	entries, listErr := mem.HourEntriesForTask(ctx, "t1")
	require.NoError(t, listErr)
	for _, e := range entries {
		assert.Equal(t, e.ID == "e1", e.Billed)
	}
}

// =============================================================================
// TEST STORE STUBS
// =============================================================================

// blindListingStore hides invoices from listing so the advisory pre-check
// passes and the create-time constraint has to do the refusing.
type blindListingStore struct {
	*store.Memory
}

func (s *blindListingStore) Invoices(_ context.Context, _ finance.ProjectID) ([]finance.Invoice, error) {
	return nil, nil
}

// failingBilledStore fails the Nth SetEntryBilled call.
type failingBilledStore struct {
	*store.Memory
	calls  int
	failAt int
}

func (s *failingBilledStore) SetEntryBilled(ctx context.Context, id finance.EntryID, billed bool) error {
	s.calls++
	if s.calls == s.failAt {
		return fmt.Errorf("write failed for %s", id)
	}
	return s.Memory.SetEntryBilled(ctx, id, billed)
}
