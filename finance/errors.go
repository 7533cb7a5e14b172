/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The API layer pattern-matches these to pick HTTP status codes and
  user-facing error codes.

ERROR CATEGORIES:
  1. Currency errors - missing rate-table pairs
  2. Billing errors - milestone invoice invariant violations
  3. Data errors - malformed records excluded from aggregates
  4. Store errors - propagated from the storage layer unchanged

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, finance.ErrDuplicateInvoice) {
        // refuse the create, inform the user, not a system failure
    }

SEE ALSO:
  - billing.go: Raises DuplicateInvoiceError
  - currency.go: Raises UnknownCurrencyError
  - store.go: Store-level sentinels
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCurrency is returned when a requested currency pair is not
	// in the rate table. The caller should fall back to the un-converted
	// native amount rather than blocking the whole report.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrDuplicateInvoice is returned when a milestone already has an
	// invoice. Recovered locally by refusing the create; not a system
	// failure.
	ErrDuplicateInvoice = errors.New("milestone already invoiced")

	// ErrMalformedEntry marks an hour entry whose milestone reference is
	// not a plain identifier. Such entries are excluded from aggregates,
	// logged, and never surfaced as a user-facing failure.
	ErrMalformedEntry = errors.New("malformed hour entry")

	// ErrUniqueInvoicePerMilestone is the store-level constraint violation
	// for the one-invoice-per-milestone invariant. The authoritative
	// uniqueness guarantee lives in the store; clients translate this to
	// ErrDuplicateInvoice.
	ErrUniqueInvoicePerMilestone = errors.New("unique_invoice_per_milestone")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("record not found")

	// ErrPaymentRegression is returned when a transition would move a
	// milestone's payment status backwards from paid.
	ErrPaymentRegression = errors.New("milestone payment status cannot regress from paid")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownCurrencyError reports which pair was missing from the rate table.
type UnknownCurrencyError struct {
	From CurrencyCode
	To   CurrencyCode
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency: no rate %s -> %s", e.From, e.To)
}

func (e *UnknownCurrencyError) Unwrap() error { return ErrUnknownCurrency }

// DuplicateInvoiceError reports which milestone is already invoiced and by
// which invoice, when known. ExistingInvoiceID is empty when the conflict
// was detected by the store constraint rather than the advisory pre-check.
type DuplicateInvoiceError struct {
	MilestoneID       MilestoneID
	ExistingInvoiceID InvoiceID
}

func (e *DuplicateInvoiceError) Error() string {
	if e.ExistingInvoiceID != "" {
		return fmt.Sprintf("milestone %s already has invoice %s", e.MilestoneID, e.ExistingInvoiceID)
	}
	return fmt.Sprintf("milestone %s already has an invoice", e.MilestoneID)
}

func (e *DuplicateInvoiceError) Unwrap() error { return ErrDuplicateInvoice }

// MalformedEntryError identifies an excluded hour entry and its bad reference.
type MalformedEntryError struct {
	EntryID EntryID
	Ref     string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("hour entry %s has malformed milestone reference %q", e.EntryID, e.Ref)
}

func (e *MalformedEntryError) Unwrap() error { return ErrMalformedEntry }

// BatchToggleError reports a partially applied billed toggle. The toggle is
// a best-effort batch: entries in Updated were written before the failure,
// and are NOT rolled back. Callers must re-query to discover true state.
type BatchToggleError struct {
	TaskID  TaskID
	Updated []EntryID
	Failed  EntryID
	Cause   error
}

func (e *BatchToggleError) Error() string {
	return fmt.Sprintf("billed toggle for task %s failed at entry %s after %d updates: %v",
		e.TaskID, e.Failed, len(e.Updated), e.Cause)
}

func (e *BatchToggleError) Unwrap() error { return e.Cause }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a refused business operation, as opposed to a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateInvoice) ||
		errors.Is(err, ErrUniqueInvoicePerMilestone) ||
		errors.Is(err, ErrPaymentRegression)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
