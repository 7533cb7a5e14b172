/*
store.go - Persistence interfaces for the external store collaborator

PURPOSE:
  Defines the boundary between the engine and whatever persists the
  dashboard's records. The engine computes from snapshots read through
  these interfaces and issues mutations through them; it never persists
  anything itself.

KEY INTERFACES:
  ReadStore:  Snapshot reads, scoped by project
  WriteStore: Record mutations (create invoice, toggle billed, ...)
  Store:      Both

UNIQUENESS CONSTRAINT:
  CreateInvoice must fail with ErrUniqueInvoicePerMilestone when the
  invoice references a milestone that already has one. This is the
  AUTHORITATIVE enforcement of the one-invoice-per-milestone invariant:
  the client-side pre-check in billing.go is advisory only, because two
  users can race between check and create. Implementations back this with
  a real uniqueness constraint (see store/sqlite), not a read-then-write.

CONCURRENCY:
  Mutations may interleave arbitrarily across callers. The engine performs
  no locking, queueing, or transactions of its own; atomicity is delegated
  entirely to the store. There is no cancellation beyond context, and no
  retry logic here - reads and writes either complete or fail.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - finance/store/memory.go: In-memory store for tests

SEE ALSO:
  - billing.go: Uses WriteStore for invoice and billing mutations
  - errors.go: ErrUniqueInvoicePerMilestone, ErrNotFound
*/
package finance

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// READ STORE
// =============================================================================

// ReadStore lists the records the reconciler computes from. Scope filtering
// beyond project (client, user role) is the caller's concern.
type ReadStore interface {
	Project(ctx context.Context, id ProjectID) (Project, error)
	Projects(ctx context.Context) ([]Project, error)
	Client(ctx context.Context, id ClientID) (Client, error)
	Clients(ctx context.Context) ([]Client, error)

	Milestone(ctx context.Context, id MilestoneID) (Milestone, error)
	Milestones(ctx context.Context, projectID ProjectID) ([]Milestone, error)

	Task(ctx context.Context, id TaskID) (Task, error)
	Tasks(ctx context.Context, projectID ProjectID) ([]Task, error)

	HourEntries(ctx context.Context, projectID ProjectID) ([]HourEntry, error)
	HourEntriesForTask(ctx context.Context, taskID TaskID) ([]HourEntry, error)

	Invoice(ctx context.Context, id InvoiceID) (Invoice, error)
	Invoices(ctx context.Context, projectID ProjectID) ([]Invoice, error)
}

// =============================================================================
// WRITE STORE
// =============================================================================

// WriteStore issues record mutations. Each call is a single asynchronous
// write from the engine's point of view; batching semantics (or the lack
// of them) are documented on the operations in billing.go.
type WriteStore interface {
	CreateClient(ctx context.Context, c Client) error
	CreateProject(ctx context.Context, p Project) error
	CreateMilestone(ctx context.Context, m Milestone) error
	CreateTask(ctx context.Context, t Task) error
	CreateHourEntry(ctx context.Context, e HourEntry) error

	// CreateInvoice persists an invoice. When the invoice references a
	// milestone that already has one, it fails with
	// ErrUniqueInvoicePerMilestone without writing anything.
	CreateInvoice(ctx context.Context, inv Invoice) error

	UpdateInvoiceStatus(ctx context.Context, id InvoiceID, status InvoiceStatus) error

	SetMilestonePaymentStatus(ctx context.Context, id MilestoneID, status PaymentStatus) error
	SetMilestoneCompletion(ctx context.Context, id MilestoneID, percentage int) error
	SetMilestoneStatus(ctx context.Context, id MilestoneID, status MilestoneStatus) error

	SetEntryBilled(ctx context.Context, id EntryID, billed bool) error

	UpdateTaskStatus(ctx context.Context, id TaskID, status TaskStatus, workedHours *decimal.Decimal) error
}

// Store combines reads and writes. The production SQLite store and the
// in-memory test store both satisfy it.
type Store interface {
	ReadStore
	WriteStore
}
