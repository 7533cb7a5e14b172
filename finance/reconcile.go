/*
reconcile.go - Top-level budget/revenue/progress report

PURPOSE:
  The BudgetReconciler combines the converter, the time ledger, the
  pricing model, and the billing state derivation into the single report
  the dashboard renders. It is stateless and pure: a function of the
  snapshot it is given, safe to re-invoke on every UI refresh.

DEGRADATION:
  Financial computation never crashes the report. A missing rate falls
  back to the native amount, a malformed entry is excluded, a zero budget
  yields zero progress. Every such event is recorded in the report's
  Degradations so the caller can inspect the cause.

ADVISORIES:
  Two derived signals are purely informational and never block anything:
  - budget usage far exceeds milestone completion
    (budgetProgress > averageCompletion + 15)
  - revenue lags completion
    (revenueProgress < averageCompletion - 20)

SEE ALSO:
  - pricing.go: BudgetFigures and per-model computation
  - billing.go: MilestoneInvoice / MilestoneBillingState
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// INPUT / REPORT TYPES
// =============================================================================

// ReconcileInput is the full snapshot a report is computed from. The
// display currency and rate table are explicit parameters - there is no
// ambient display preference anywhere in the engine.
type ReconcileInput struct {
	Project     Project
	Client      *Client
	Milestones  []Milestone
	Invoices    []Invoice
	Tasks       []Task
	HourEntries []HourEntry

	DisplayCurrency CurrencyCode
	Rates           RateTable
}

// MilestoneLine is the per-milestone breakdown row.
type MilestoneLine struct {
	ID            MilestoneID
	Name          string
	Status        MilestoneStatus
	PaymentStatus PaymentStatus
	Completion    int

	// Amount in display currency; nil when the milestone has no amount.
	Amount *Money

	BillingState  BillingState
	InvoiceID     *InvoiceID
	InvoiceStatus *InvoiceStatus

	Hours HourTotals
}

// AdvisoryCode identifies a derived, non-fatal signal.
type AdvisoryCode string

const (
	AdvisoryBudgetAhead   AdvisoryCode = "budget_ahead_of_completion"
	AdvisoryRevenueLagged AdvisoryCode = "revenue_lags_completion"
)

type Advisory struct {
	Code    AdvisoryCode
	Message string
}

// DegradationCode identifies a graceful-degradation event in a report.
type DegradationCode string

const (
	DegradedUnknownCurrency  DegradationCode = "unknown_currency"
	DegradedMalformedEntry   DegradationCode = "malformed_entry"
	DegradedSpendNotComputed DegradationCode = "spend_not_computed"
)

type Degradation struct {
	Code   DegradationCode
	Detail string
}

// BudgetReport is the reconciled picture consumed by the UI. All monetary
// figures are in Currency (the requested display currency) unless a
// degradation says otherwise.
type BudgetReport struct {
	ProjectID   ProjectID
	PricingType PricingType
	Currency    CurrencyCode

	TotalBudget     Money
	SpentAmount     Money
	RemainingBudget Money
	SpendComputed   bool

	BudgetProgress decimal.Decimal

	RevenueEarned   Money
	RevenueProgress decimal.Decimal

	Hours      HourTotals
	Unassigned HourTotals

	Milestones []MilestoneLine

	Advisories   []Advisory
	Degradations []Degradation
}

// =============================================================================
// RECONCILER
// =============================================================================

var (
	budgetAheadMargin = decimal.NewFromInt(15)
	revenueLagMargin  = decimal.NewFromInt(20)
)

// BudgetReconciler assembles budget reports. Stateless apart from logging.
type BudgetReconciler struct {
	ledger *TimeLedger
	log    *zap.Logger
}

func NewBudgetReconciler(log *zap.Logger) *BudgetReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BudgetReconciler{ledger: NewTimeLedger(log), log: log}
}

// Reconcile computes the report. The only hard error is an unknown pricing
// type; everything else degrades into the report itself.
func (r *BudgetReconciler) Reconcile(in ReconcileInput) (BudgetReport, error) {
	conv := NewConverter(in.Rates)
	display := in.DisplayCurrency
	if display == "" {
		display = in.Project.Currency
	}

	report := BudgetReport{
		ProjectID:   in.Project.ID,
		PricingType: in.Project.PricingType,
		Currency:    display,
	}

	// Malformed entries degrade the report, never fail it.
	for _, bad := range r.ledger.MalformedEntries(in.HourEntries) {
		report.Degradations = append(report.Degradations, Degradation{
			Code:   DegradedMalformedEntry,
			Detail: (&MalformedEntryError{EntryID: bad.ID, Ref: bad.MilestoneRef}).Error(),
		})
	}

	report.Hours = r.ledger.ProjectTotals(in.HourEntries)
	report.Unassigned = r.ledger.UnassignedTotals(in.HourEntries)

	figures, err := r.computeFigures(in, conv, display, &report)
	if err != nil {
		return BudgetReport{}, err
	}
	report.TotalBudget = figures.TotalBudget
	report.SpentAmount = figures.SpentAmount
	report.SpendComputed = figures.SpendComputed
	report.RemainingBudget = figures.TotalBudget.Sub(figures.SpentAmount)
	report.BudgetProgress = figures.BudgetProgress()
	if !figures.SpendComputed {
		report.Degradations = append(report.Degradations, Degradation{
			Code:   DegradedSpendNotComputed,
			Detail: "no rate configured for spend tracking; spent amount reported as zero",
		})
	}

	report.RevenueEarned = r.revenueEarned(in, conv, &report)
	report.RevenueProgress = progressOf(report.RevenueEarned.Amount, report.TotalBudget.Amount)

	report.Milestones = r.milestoneLines(in, conv, &report)

	report.Advisories = advisories(report, in.Milestones)

	return report, nil
}

// computeFigures runs the pricing model, retrying in the project's native
// currency when the display pair is missing from the rate table.
func (r *BudgetReconciler) computeFigures(in ReconcileInput, conv *Converter, display CurrencyCode, report *BudgetReport) (BudgetFigures, error) {
	model, err := ModelFor(in.Project.PricingType)
	if err != nil {
		return BudgetFigures{}, err
	}

	pin := PricingInput{
		Project:         in.Project,
		Milestones:      in.Milestones,
		Tasks:           in.Tasks,
		EntryTotals:     r.looseEntryTotals(in),
		DisplayCurrency: display,
		Converter:       conv,
	}

	figures, err := model.ComputeBudget(pin)
	if err == nil {
		return figures, nil
	}

	var unknown *UnknownCurrencyError
	if !errors.As(err, &unknown) {
		return BudgetFigures{}, err
	}

	// Fall back to native-currency figures rather than blocking the report.
	report.Degradations = append(report.Degradations, Degradation{
		Code:   DegradedUnknownCurrency,
		Detail: unknown.Error(),
	})
	report.Currency = in.Project.Currency
	pin.DisplayCurrency = in.Project.Currency
	return model.ComputeBudget(pin)
}

// looseEntryTotals aggregates hour entries not linked to any task. Task
// time is costed from the tasks themselves, so task-linked entries are
// excluded here to avoid double counting.
func (r *BudgetReconciler) looseEntryTotals(in ReconcileInput) HourTotals {
	var loose []HourEntry
	for _, e := range in.HourEntries {
		if e.TaskID == nil {
			loose = append(loose, e)
		}
	}
	return r.ledger.ProjectTotals(loose)
}

// revenueEarned sums paid invoices in the report currency, degrading
// per-invoice on missing rates.
func (r *BudgetReconciler) revenueEarned(in ReconcileInput, conv *Converter, report *BudgetReport) Money {
	earned := ZeroMoney(report.Currency)
	for _, inv := range in.Invoices {
		if !inv.IsPaid() {
			continue
		}
		converted, err := conv.Convert(Money{Amount: inv.Amount, Currency: inv.Currency}, report.Currency)
		if err != nil {
			report.Degradations = append(report.Degradations, Degradation{
				Code:   DegradedUnknownCurrency,
				Detail: fmt.Sprintf("invoice %s: %v; counted %s %s at face value", inv.ID, err, inv.Amount, inv.Currency),
			})
			// Count the native amount so revenue is not silently dropped.
			// The Money keeps its native code so the total stays inspectable.
			converted = Money{Amount: inv.Amount, Currency: inv.Currency}
		}
		earned = earned.Add(converted)
	}
	return earned
}

func (r *BudgetReconciler) milestoneLines(in ReconcileInput, conv *Converter, report *BudgetReport) []MilestoneLine {
	lines := make([]MilestoneLine, 0, len(in.Milestones))
	for _, m := range in.Milestones {
		line := MilestoneLine{
			ID:            m.ID,
			Name:          m.Name,
			Status:        m.Status,
			PaymentStatus: m.PaymentStatus,
			Completion:    m.Completion(),
			Hours:         r.ledger.MilestoneTotals(in.HourEntries, m.ID),
		}

		if m.Amount != nil {
			amount, err := conv.Convert(Money{Amount: *m.Amount, Currency: in.Project.Currency}, report.Currency)
			if err != nil {
				report.Degradations = append(report.Degradations, Degradation{
					Code:   DegradedUnknownCurrency,
					Detail: fmt.Sprintf("milestone %s: %v", m.ID, err),
				})
				amount = Money{Amount: *m.Amount, Currency: in.Project.Currency}
			}
			line.Amount = &amount
		}

		inv := MilestoneInvoice(in.Invoices, m.ID)
		line.BillingState = MilestoneBillingState(m, inv)
		if inv != nil {
			id := inv.ID
			status := inv.Status
			line.InvoiceID = &id
			line.InvoiceStatus = &status
		}

		lines = append(lines, line)
	}
	return lines
}

// =============================================================================
// ADVISORIES - Presentation hints, never validated invariants
// =============================================================================

func advisories(report BudgetReport, milestones []Milestone) []Advisory {
	if len(milestones) == 0 {
		return nil
	}

	sum := 0
	for _, m := range milestones {
		sum += m.Completion()
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(milestones))))

	var out []Advisory
	if report.SpendComputed && report.BudgetProgress.GreaterThan(avg.Add(budgetAheadMargin)) {
		out = append(out, Advisory{
			Code: AdvisoryBudgetAhead,
			Message: fmt.Sprintf("budget usage %s%% far exceeds average milestone completion %s%%",
				report.BudgetProgress.Round(1), avg.Round(1)),
		})
	}
	if report.RevenueProgress.LessThan(avg.Sub(revenueLagMargin)) {
		out = append(out, Advisory{
			Code: AdvisoryRevenueLagged,
			Message: fmt.Sprintf("revenue %s%% lags average milestone completion %s%%",
				report.RevenueProgress.Round(1), avg.Round(1)),
		})
	}
	return out
}
