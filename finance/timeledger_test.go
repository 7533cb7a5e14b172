package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func entry(id, milestoneRef, hours string, billed bool) finance.HourEntry {
	return finance.HourEntry{
		ID:           finance.EntryID(id),
		ProjectID:    "proj-1",
		MilestoneRef: milestoneRef,
		Hours:        dec(hours),
		Billed:       billed,
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func taskEntry(id, taskID, hours string, billed bool) finance.HourEntry {
	e := entry(id, "", hours, billed)
	tid := finance.TaskID(taskID)
	e.TaskID = &tid
	return e
}

func assertConserved(t *testing.T, totals finance.HourTotals) {
	t.Helper()
	assert.True(t, totals.Billed.Add(totals.Unbilled).Equal(totals.Total),
		"billed %s + unbilled %s != total %s", totals.Billed, totals.Unbilled, totals.Total)
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestProjectTotals_BilledPlusUnbilledEqualsTotal(t *testing.T) {
	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		entry("e1", "m1", "2.5", true),
		entry("e2", "m1", "1.5", false),
		entry("e3", "m2", "3", true),
		entry("e4", "", "4", false),
	}

	totals := ledger.ProjectTotals(entries)

	assert.True(t, totals.Total.Equal(dec("11")))
	assert.True(t, totals.Billed.Equal(dec("5.5")))
	assert.True(t, totals.Unbilled.Equal(dec("5.5")))
	assertConserved(t, totals)
}

func TestMilestoneTotals_ExcludesUnassigned(t *testing.T) {
	// GIVEN: Entries on milestone m1 and unassigned entries
	// WHEN: Summing per milestone
	// THEN: Unassigned hours appear only in the unassigned bucket, never
	//       inside a milestone

	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		entry("e1", "m1", "2", true),
		entry("e2", "m1", "3", false),
		entry("e3", "", "7", false),
	}

	m1 := ledger.MilestoneTotals(entries, "m1")
	unassigned := ledger.UnassignedTotals(entries)

	assert.True(t, m1.Total.Equal(dec("5")))
	assert.True(t, unassigned.Total.Equal(dec("7")))
	assertConserved(t, m1)
	assertConserved(t, unassigned)
}

func TestMilestoneTotals_ScopeConservation(t *testing.T) {
	// Milestone buckets plus the unassigned bucket must sum back to the
	// project total.
	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		entry("e1", "m1", "2", true),
		entry("e2", "m2", "3.25", false),
		entry("e3", "", "1.75", true),
	}

	project := ledger.ProjectTotals(entries)
	sum := ledger.MilestoneTotals(entries, "m1").Total.
		Add(ledger.MilestoneTotals(entries, "m2").Total).
		Add(ledger.UnassignedTotals(entries).Total)

	assert.True(t, sum.Equal(project.Total))
}

func TestTaskTotals_OnlyLinkedEntries(t *testing.T) {
	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		taskEntry("e1", "t1", "2", true),
		taskEntry("e2", "t1", "1", false),
		taskEntry("e3", "t2", "5", false),
		entry("e4", "m1", "9", false),
	}

	totals := ledger.TaskTotals(entries, "t1")

	assert.True(t, totals.Total.Equal(dec("3")))
	assertConserved(t, totals)
}

// =============================================================================
// MALFORMED ENTRY FILTERING
// =============================================================================

func TestMalformedEntries_ExcludedFromEveryAggregate(t *testing.T) {
	// GIVEN: One entry whose milestone reference is a serialized object
	// WHEN: Aggregating at any scope
	// THEN: The bad entry contributes nothing and the rest still counts

	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		entry("good-1", "m1", "2", true),
		entry("bad-1", `{"id":"m1"}`, "100", true),
		entry("good-2", "m1", "3", false),
	}

	project := ledger.ProjectTotals(entries)
	m1 := ledger.MilestoneTotals(entries, "m1")

	assert.True(t, project.Total.Equal(dec("5")))
	assert.True(t, m1.Total.Equal(dec("5")))

	bad := ledger.MalformedEntries(entries)
	require.Len(t, bad, 1)
	assert.Equal(t, finance.EntryID("bad-1"), bad[0].ID)
}

func TestMalformedEntries_PathLikeRefIsMalformed(t *testing.T) {
	e := entry("e1", "milestones/m1", "1", false)

	assert.True(t, e.Malformed())
	_, ok := e.MilestoneID()
	assert.False(t, ok)
}

func TestHourEntry_EmptyRefIsUnassignedNotMalformed(t *testing.T) {
	e := entry("e1", "", "1", false)

	assert.True(t, e.Unassigned())
	assert.False(t, e.Malformed())
}

// =============================================================================
// TASK BILLED STATE
// =============================================================================

func TestTaskIsBilled_AnyBilledEntryMeansBilled(t *testing.T) {
	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		taskEntry("e1", "t1", "2", false),
		taskEntry("e2", "t1", "1", true),
		taskEntry("e3", "t1", "3", false),
	}

	assert.True(t, ledger.TaskIsBilled(entries, "t1"))
}

func TestTaskIsBilled_NoBilledEntries(t *testing.T) {
	ledger := finance.NewTimeLedger(nil)
	entries := []finance.HourEntry{
		taskEntry("e1", "t1", "2", false),
	}

	assert.False(t, ledger.TaskIsBilled(entries, "t1"))
	assert.False(t, ledger.TaskIsBilled(entries, "no-such-task"))
}

func TestCompletedTaskHours_SkipsIncompleteAndNil(t *testing.T) {
	ledger := finance.NewTimeLedger(nil)
	tasks := []finance.Task{
		{ID: "t1", Status: finance.TaskCompleted, WorkedHours: decPtr("4")},
		{ID: "t2", Status: finance.TaskCompleted, WorkedHours: nil},
		{ID: "t3", Status: finance.TaskInProgress, WorkedHours: decPtr("9")},
	}

	assert.True(t, ledger.CompletedTaskHours(tasks).Equal(dec("4")))
}
