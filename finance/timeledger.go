/*
timeledger.go - Billed/unbilled hour aggregation

PURPOSE:
  The TimeLedger is the single source of truth for "how many hours, billed
  vs. unbilled, at what scope". Every other component that needs hour
  totals (pricing, reconciliation, the API) goes through it.

INVARIANT:
  Billed + Unbilled == Total at every scope (project, milestone, task).
  Both buckets are built in the same pass over the same filtered entries,
  so the invariant holds by construction.

SCOPES:
  ProjectTotals:    every well-formed entry for the project
  MilestoneTotals:  entries referencing a specific milestone. Entries with
                    no milestone are the "unassigned" bucket, reported
                    separately, never silently folded into a milestone.
  TaskTotals:       entries linked to a specific task
  UnassignedTotals: entries with no milestone reference

MALFORMED ENTRIES:
  An entry whose milestone reference is not a plain identifier is excluded
  from every aggregate. This is defensive filtering, not an error: one bad
  legacy record must not block reporting for otherwise-valid data. Excluded
  entries are logged at warn level.

TASK BILLED STATE:
  A task is "billed" if ANY of its linked entries is billed, not all. This
  is a deliberate compatibility rule: the billed toggle writes all linked
  entries to the same value (see billing.go), so after a toggle the any/all
  distinction is invisible. If entries are ever edited individually the
  asymmetry becomes observable; see TaskIsBilled.

SEE ALSO:
  - billing.go: SetTaskBilled, the all-entries toggle
  - reconcile.go: Per-milestone breakdown using these totals
*/
package finance

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// HOUR TOTALS
// =============================================================================

// HourTotals is a billed/unbilled aggregate for one scope.
// Invariant: Billed.Add(Unbilled) == Total.
type HourTotals struct {
	Total    decimal.Decimal
	Billed   decimal.Decimal
	Unbilled decimal.Decimal
}

func (t HourTotals) add(e HourEntry) HourTotals {
	t.Total = t.Total.Add(e.Hours)
	if e.Billed {
		t.Billed = t.Billed.Add(e.Hours)
	} else {
		t.Unbilled = t.Unbilled.Add(e.Hours)
	}
	return t
}

// =============================================================================
// TIME LEDGER
// =============================================================================

// TimeLedger aggregates raw hour entries. It is stateless apart from its
// logger; all methods are pure with respect to the entry slice.
type TimeLedger struct {
	log *zap.Logger
}

// NewTimeLedger creates a ledger. A nil logger is replaced with a no-op
// logger so the pure computation path stays dependency-light.
func NewTimeLedger(log *zap.Logger) *TimeLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimeLedger{log: log}
}

// ProjectTotals sums every well-formed entry.
func (l *TimeLedger) ProjectTotals(entries []HourEntry) HourTotals {
	var totals HourTotals
	for _, e := range l.wellFormed(entries) {
		totals = totals.add(e)
	}
	return totals
}

// MilestoneTotals sums entries referencing the given milestone.
// Unassigned entries are excluded; they belong to UnassignedTotals.
func (l *TimeLedger) MilestoneTotals(entries []HourEntry, id MilestoneID) HourTotals {
	var totals HourTotals
	for _, e := range l.wellFormed(entries) {
		mid, ok := e.MilestoneID()
		if !ok || mid != id {
			continue
		}
		totals = totals.add(e)
	}
	return totals
}

// UnassignedTotals sums entries that belong to no milestone.
func (l *TimeLedger) UnassignedTotals(entries []HourEntry) HourTotals {
	var totals HourTotals
	for _, e := range l.wellFormed(entries) {
		if e.Unassigned() {
			totals = totals.add(e)
		}
	}
	return totals
}

// TaskTotals sums entries linked to the given task.
func (l *TimeLedger) TaskTotals(entries []HourEntry, id TaskID) HourTotals {
	var totals HourTotals
	for _, e := range l.wellFormed(entries) {
		if e.TaskID != nil && *e.TaskID == id {
			totals = totals.add(e)
		}
	}
	return totals
}

// TaskEntries returns the well-formed entries linked to a task, in input
// order. Used by the billed toggle to enumerate what to write.
func (l *TimeLedger) TaskEntries(entries []HourEntry, id TaskID) []HourEntry {
	var linked []HourEntry
	for _, e := range l.wellFormed(entries) {
		if e.TaskID != nil && *e.TaskID == id {
			linked = append(linked, e)
		}
	}
	return linked
}

// TaskIsBilled reports whether a task is billed: true if ANY linked entry
// is billed. The toggle in billing.go writes all linked entries to the
// same value, which keeps this any-rule consistent with an all-rule as
// long as entries are only mutated through the toggle.
func (l *TimeLedger) TaskIsBilled(entries []HourEntry, id TaskID) bool {
	for _, e := range l.wellFormed(entries) {
		if e.TaskID != nil && *e.TaskID == id && e.Billed {
			return true
		}
	}
	return false
}

// MalformedEntries returns the entries excluded from aggregation, for
// inspection by callers (the report surfaces them as degradations).
func (l *TimeLedger) MalformedEntries(entries []HourEntry) []HourEntry {
	var bad []HourEntry
	for _, e := range entries {
		if e.Malformed() {
			bad = append(bad, e)
		}
	}
	return bad
}

// wellFormed filters out malformed entries, logging each exclusion once
// per call site. Filtering is defensive: malformed data degrades the
// report, it never fails it.
func (l *TimeLedger) wellFormed(entries []HourEntry) []HourEntry {
	ok := entries
	filtered := false
	for i, e := range entries {
		if !e.Malformed() {
			if filtered {
				ok = append(ok, e)
			}
			continue
		}
		if !filtered {
			// First bad entry: copy the prefix and start filtering.
			ok = make([]HourEntry, 0, len(entries)-1)
			ok = append(ok, entries[:i]...)
			filtered = true
		}
		l.log.Warn("excluding malformed hour entry",
			zap.String("entry_id", string(e.ID)),
			zap.String("project_id", string(e.ProjectID)),
			zap.String("milestone_ref", e.MilestoneRef),
		)
	}
	return ok
}

// CompletedTaskHours sums WorkedHours over completed tasks. Hourly pricing
// consumes this alongside entry totals.
func (l *TimeLedger) CompletedTaskHours(tasks []Task) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tasks {
		if t.IsCompleted() && t.WorkedHours != nil {
			total = total.Add(*t.WorkedHours)
		}
	}
	return total
}
