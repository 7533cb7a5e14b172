/*
billing.go - Milestone invoicing invariants and billing mutations

PURPOSE:
  Guards the one-invoice-per-milestone invariant and manages the
  milestone payment state machine. This is the only part of the engine
  that issues writes; everything else is pure computation.

STATE MACHINE (per milestone):
  no-invoice -> invoice-pending:  "create invoice for milestone".
      Precondition: no existing invoice references the milestone. The
      pre-check here is ADVISORY - two tabs can race between check and
      create - so the store's uniqueness constraint is the authority, and
      a constraint violation is translated into DuplicateInvoiceError,
      the canonical refusal, not an unexpected error.
  invoice-pending -> invoice-paid: either the invoice's own status moves
      to paid, or the "mark milestone paid" shortcut sets PaymentStatus
      directly. The two fields are logically linked but not hard-coupled:
      an admin may mark a milestone paid before reconciling the invoice.
  invoice-paid is terminal; this controller never regresses it.

BILLED TOGGLE:
  Toggling a task's billed state writes every linked hour entry to the
  same value, one update per entry. There is no transaction: if an update
  fails mid-batch the earlier writes stand, the error reports how far the
  batch got, and callers re-query to discover true state.

SEE ALSO:
  - store.go: ErrUniqueInvoicePerMilestone contract
  - timeledger.go: TaskIsBilled, the matching read-side rule
*/
package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// BILLING STATE - Derived, zero-or-one invoice per milestone
// =============================================================================

// BillingState is the derived invoicing state of a milestone.
type BillingState string

const (
	BillingNoInvoice      BillingState = "no-invoice"
	BillingInvoicePending BillingState = "invoice-pending"
	BillingInvoicePaid    BillingState = "invoice-paid"
)

// MilestoneInvoice returns the invoice referencing the milestone, or nil.
// First match wins; the type is zero-or-one by design, never a slice, in
// every position where the invariant matters.
func MilestoneInvoice(invoices []Invoice, id MilestoneID) *Invoice {
	for i := range invoices {
		if invoices[i].MilestoneID != nil && *invoices[i].MilestoneID == id {
			return &invoices[i]
		}
	}
	return nil
}

// MilestoneBillingState derives the state from the milestone and its
// invoice, if any. The mark-paid shortcut makes PaymentStatus
// authoritative for the paid state even when the invoice record lags.
func MilestoneBillingState(m Milestone, inv *Invoice) BillingState {
	if m.PaymentStatus == PaymentPaid {
		return BillingInvoicePaid
	}
	if inv == nil {
		return BillingNoInvoice
	}
	if inv.IsPaid() {
		return BillingInvoicePaid
	}
	return BillingInvoicePending
}

// =============================================================================
// CONTROLLER
// =============================================================================

// MilestoneBillingController issues billing mutations against the store.
type MilestoneBillingController struct {
	store  Store
	ledger *TimeLedger
	log    *zap.Logger
}

func NewMilestoneBillingController(store Store, log *zap.Logger) *MilestoneBillingController {
	if log == nil {
		log = zap.NewNop()
	}
	return &MilestoneBillingController{
		store:  store,
		ledger: NewTimeLedger(log),
		log:    log,
	}
}

// InvoiceDraft is the input for creating an invoice.
type InvoiceDraft struct {
	ProjectID   ProjectID
	MilestoneID *MilestoneID
	Amount      decimal.Decimal
	Currency    CurrencyCode
	DueDate     *time.Time
}

// CreateInvoice creates an invoice, enforcing the one-invoice-per-milestone
// invariant when the draft references a milestone.
//
// The local existence check catches the common case before any write is
// attempted. The store constraint catches the race; its violation is
// translated to the same DuplicateInvoiceError so callers see one refusal
// path regardless of which side detected it.
func (c *MilestoneBillingController) CreateInvoice(ctx context.Context, draft InvoiceDraft) (Invoice, error) {
	if draft.MilestoneID != nil {
		existing, err := c.store.Invoices(ctx, draft.ProjectID)
		if err != nil {
			return Invoice{}, err
		}
		if dup := MilestoneInvoice(existing, *draft.MilestoneID); dup != nil {
			return Invoice{}, &DuplicateInvoiceError{
				MilestoneID:       *draft.MilestoneID,
				ExistingInvoiceID: dup.ID,
			}
		}
	}

	inv := Invoice{
		ID:          InvoiceID(uuid.NewString()),
		ProjectID:   draft.ProjectID,
		MilestoneID: draft.MilestoneID,
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		Status:      InvoicePending,
		IssuedAt:    time.Now().UTC(),
		DueDate:     draft.DueDate,
	}

	if err := c.store.CreateInvoice(ctx, inv); err != nil {
		if errors.Is(err, ErrUniqueInvoicePerMilestone) && draft.MilestoneID != nil {
			// Lost the race; the constraint is doing its job.
			return Invoice{}, &DuplicateInvoiceError{MilestoneID: *draft.MilestoneID}
		}
		return Invoice{}, err
	}

	c.log.Info("invoice created",
		zap.String("invoice_id", string(inv.ID)),
		zap.String("project_id", string(inv.ProjectID)),
	)
	return inv, nil
}

// MarkInvoicePaid moves the invoice to paid and, when the invoice is tied
// to a milestone, marks the milestone paid as well.
func (c *MilestoneBillingController) MarkInvoicePaid(ctx context.Context, id InvoiceID) error {
	inv, err := c.store.Invoice(ctx, id)
	if err != nil {
		return err
	}
	if err := c.store.UpdateInvoiceStatus(ctx, id, InvoicePaid); err != nil {
		return err
	}
	if inv.MilestoneID != nil {
		return c.markMilestonePaid(ctx, *inv.MilestoneID)
	}
	return nil
}

// MarkMilestonePaid is the quick action: unpaid -> paid directly, without
// requiring an invoice record to exist or change.
func (c *MilestoneBillingController) MarkMilestonePaid(ctx context.Context, id MilestoneID) error {
	return c.markMilestonePaid(ctx, id)
}

func (c *MilestoneBillingController) markMilestonePaid(ctx context.Context, id MilestoneID) error {
	m, err := c.store.Milestone(ctx, id)
	if err != nil {
		return err
	}
	if m.PaymentStatus == PaymentPaid {
		// Already terminal; idempotent no-op rather than an error.
		return nil
	}
	return c.store.SetMilestonePaymentStatus(ctx, id, PaymentPaid)
}

// SetMilestonePaymentStatus applies an explicit payment status, refusing
// any regression from paid.
func (c *MilestoneBillingController) SetMilestonePaymentStatus(ctx context.Context, id MilestoneID, status PaymentStatus) error {
	m, err := c.store.Milestone(ctx, id)
	if err != nil {
		return err
	}
	if m.PaymentStatus == PaymentPaid && status != PaymentPaid {
		return ErrPaymentRegression
	}
	return c.store.SetMilestonePaymentStatus(ctx, id, status)
}

// =============================================================================
// BILLED TOGGLE - Best-effort batch over linked entries
// =============================================================================

// ToggleResult reports which entries a billed toggle actually wrote.
type ToggleResult struct {
	TaskID  TaskID
	Billed  bool
	Updated []EntryID
}

// SetTaskBilled writes every hour entry linked to the task to the given
// billed state, one update per entry.
//
// This is a best-effort batch, not a transaction: on a mid-batch failure
// the earlier updates are NOT rolled back. The returned BatchToggleError
// lists what was written before the failure; callers re-query to discover
// the true resulting state.
func (c *MilestoneBillingController) SetTaskBilled(ctx context.Context, taskID TaskID, billed bool) (ToggleResult, error) {
	entries, err := c.store.HourEntriesForTask(ctx, taskID)
	if err != nil {
		return ToggleResult{}, err
	}

	result := ToggleResult{TaskID: taskID, Billed: billed}
	for _, e := range c.ledger.TaskEntries(entries, taskID) {
		if err := c.store.SetEntryBilled(ctx, e.ID, billed); err != nil {
			c.log.Warn("billed toggle failed mid-batch",
				zap.String("task_id", string(taskID)),
				zap.String("entry_id", string(e.ID)),
				zap.Int("updated", len(result.Updated)),
				zap.Error(err),
			)
			return result, &BatchToggleError{
				TaskID:  taskID,
				Updated: result.Updated,
				Failed:  e.ID,
				Cause:   err,
			}
		}
		result.Updated = append(result.Updated, e.ID)
	}
	return result, nil
}
