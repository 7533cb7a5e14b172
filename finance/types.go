/*
Package finance implements the project financial reconciliation engine.

PURPOSE:
  This package contains the pure computation core of the dashboard: given a
  snapshot of a project's pricing configuration, milestones, tasks, logged
  hours, and invoices, it produces a consistent budget/revenue/progress
  picture across three pricing models (fixed, hourly, daily) and multiple
  currencies.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An amount tagged with its currency (never a bare float)
  - Project/Milestone/Task/HourEntry/Invoice: Snapshot records read from
    the external store
  - HourTotals: Billed/unbilled/total hour aggregate at some scope

DESIGN PRINCIPLES:
  1. Purity: All computations are pure functions of their input snapshot.
     Re-running on every UI refresh is always safe.
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in
     monetary and hour arithmetic.
  3. Explicit optionals: "Not configured" is a nil pointer, never a zero
     value. A fixed price of 0 and an absent fixed price mean different
     things.
  4. Single currency per aggregate: amounts are converted to one display
     currency before summation. Heterogeneous sums are a bug.

USAGE:
  rec := finance.NewBudgetReconciler(logger)
  report, err := rec.Reconcile(finance.ReconcileInput{
      Project:         project,
      Milestones:      milestones,
      Invoices:        invoices,
      Tasks:           tasks,
      HourEntries:     entries,
      DisplayCurrency: "USD",
      Rates:           rates,
  })

SEE ALSO:
  - currency.go: Rate table and conversion
  - timeledger.go: Hour aggregation
  - pricing.go: Fixed/Hourly/Daily budget computation
  - billing.go: Milestone invoice invariants
  - reconcile.go: Top-level report assembly
*/
package finance

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Amount tagged with currency
// =============================================================================

// CurrencyCode is an ISO-4217-style currency code, e.g. "USD", "EUR".
type CurrencyCode string

// Money is a monetary amount in a specific currency.
// Amounts in different currencies must never be added directly;
// convert through Converter first.
type Money struct {
	Amount   decimal.Decimal
	Currency CurrencyCode
}

func NewMoney(amount float64, currency CurrencyCode) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func NewMoneyFromDecimal(amount decimal.Decimal, currency CurrencyCode) Money {
	return Money{Amount: amount, Currency: currency}
}

func ZeroMoney(currency CurrencyCode) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add panics are avoided by contract: callers only add amounts that have
// already been converted to the same currency. Mismatched currencies keep
// the receiver's code, which is why conversion must happen first.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) Sub(other Money) Money {
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}
}

func (m Money) Mul(s decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(s), Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// MustParseDecimal parses a decimal string, returning zero on failure.
// Used for constants and seed data, not for boundary validation.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ClientID string
type ProjectID string
type MilestoneID string
type TaskID string
type EntryID string
type InvoiceID string

// plainIdentifier matches well-formed record references. Anything else in a
// milestone reference field (paths, embedded objects serialized by older
// clients) marks the entry as malformed.
var plainIdentifier = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// =============================================================================
// CLIENT / PROJECT
// =============================================================================

type Client struct {
	ID       ClientID
	Name     string
	Email    string
	Currency CurrencyCode // preferred display currency, informational
}

// PricingType selects which pricing branch of a Project is consulted.
// Exactly one branch is populated per project.
type PricingType string

const (
	PricingFixed  PricingType = "fixed"
	PricingHourly PricingType = "hourly"
	PricingDaily  PricingType = "daily"
)

// Project is the pricing configuration snapshot.
//
// The rate/price fields are pointers: nil means "not configured", which is
// distinct from a configured zero. The engine degrades gracefully when a
// field required by the pricing type is absent (see pricing.go).
type Project struct {
	ID       ProjectID
	ClientID ClientID
	Name     string
	Currency CurrencyCode

	PricingType PricingType

	// Fixed branch
	FixedPrice *decimal.Decimal

	// Hourly branch
	HourlyRate       *decimal.Decimal
	UrgentHourlyRate *decimal.Decimal

	// Daily branch
	DailyRate *decimal.Decimal

	// Shared between hourly and daily
	EstimatedHours *decimal.Decimal
}

// =============================================================================
// MILESTONE
// =============================================================================

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type Milestone struct {
	ID        MilestoneID
	ProjectID ProjectID
	Name      string

	Status        MilestoneStatus
	PaymentStatus PaymentStatus

	// Amount is in the project's currency. nil = no amount set.
	Amount *decimal.Decimal

	// CompletionPercentage as stored; read through Completion() which clamps.
	CompletionPercentage int

	DueDate *time.Time
}

// Completion returns the completion percentage clamped to [0, 100].
// Stored values outside the range come from older form plumbing and are
// never allowed to leak into progress math.
func (m Milestone) Completion() int {
	if m.CompletionPercentage < 0 {
		return 0
	}
	if m.CompletionPercentage > 100 {
		return 100
	}
	return m.CompletionPercentage
}

// =============================================================================
// TASK
// =============================================================================

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

type Task struct {
	ID          TaskID
	ProjectID   ProjectID
	MilestoneID *MilestoneID
	Name        string

	Status TaskStatus

	// WorkedHours is set when the task is completed; nil before then.
	WorkedHours *decimal.Decimal

	// EstimatedHours feeds the hourly budget fallback when the project has
	// no project-level estimate.
	EstimatedHours *decimal.Decimal

	// Urgent selects the project's UrgentHourlyRate when one is configured.
	Urgent bool

	// CompletedOn is the calendar date the work was recorded; drives
	// distinct-day counting for daily pricing.
	CompletedOn *time.Time
}

// IsCompleted reports whether the task has finished and carries worked hours.
func (t Task) IsCompleted() bool { return t.Status == TaskCompleted }

// =============================================================================
// HOUR ENTRY
// =============================================================================

// HourEntry is a discrete logged unit of time.
//
// MilestoneRef is kept as the raw stored reference rather than a typed ID:
// legacy writers stored non-scalar references there, and those entries must
// be excluded from aggregates instead of failing the report (see
// timeledger.go).
type HourEntry struct {
	ID        EntryID
	ProjectID ProjectID

	MilestoneRef string
	TaskID       *TaskID

	Hours  decimal.Decimal
	Billed bool
	Date   time.Time
	Note   string
}

// MilestoneID returns the typed milestone reference, if the entry has a
// well-formed one. ok is false both for unassigned entries (empty ref) and
// malformed ones; use Malformed() to tell them apart.
func (e HourEntry) MilestoneID() (MilestoneID, bool) {
	if e.MilestoneRef == "" || !plainIdentifier.MatchString(e.MilestoneRef) {
		return "", false
	}
	return MilestoneID(e.MilestoneRef), true
}

// Unassigned reports whether the entry belongs to no milestone.
func (e HourEntry) Unassigned() bool { return e.MilestoneRef == "" }

// Malformed reports whether the milestone reference is present but not a
// plain identifier. Malformed entries are excluded from every aggregate.
func (e HourEntry) Malformed() bool {
	return e.MilestoneRef != "" && !plainIdentifier.MatchString(e.MilestoneRef)
}

// =============================================================================
// INVOICE
// =============================================================================

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	ID        InvoiceID
	ProjectID ProjectID

	// MilestoneID ties the invoice to at most one milestone. The store
	// enforces that no two invoices reference the same milestone.
	MilestoneID *MilestoneID

	Amount   decimal.Decimal
	Currency CurrencyCode
	Status   InvoiceStatus

	IssuedAt time.Time
	DueDate  *time.Time
}

// IsPaid reports whether the invoice counts toward earned revenue.
func (i Invoice) IsPaid() bool { return i.Status == InvoicePaid }
