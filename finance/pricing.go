/*
pricing.go - Fixed / Hourly / Daily budget computation

PURPOSE:
  Each pricing model answers two questions for a project: what is the
  nominal budget, and how much has been spent so far. The three models are
  mutually exclusive; Project.PricingType selects exactly one.

MODELS:
  Fixed:  budget = fixed price (fallback: sum of milestone amounts when no
          fixed price is set). Spend tracking needs an hourly rate; when
          none is configured spend degrades to zero rather than crashing,
          and the report marks spend as not computed.
  Hourly: budget = estimated hours (project-level, else sum of task
          estimates) x hourly rate. Spend costs each completed task's
          worked hours at the task's applicable rate - the urgent rate for
          urgent tasks when one is configured. Rate selection happens
          PER TASK before aggregation; the two rates are not
          interchangeable at the aggregate level.
  Daily:  spend = distinct calendar dates with completed work x daily
          rate. A date with any worked time is one full billable day, and
          the same date is never double-counted across tasks.

CURRENCY:
  Every model converts its figures into the caller's display currency
  before returning. A result never mixes project-native and
  display-currency figures.

PROGRESS:
  budgetProgress = spent/total*100 when total > 0, else 0. Over-100 values
  are valid (over budget) and are surfaced, never clamped.

SEE ALSO:
  - timeledger.go: Hour totals feeding these computations
  - reconcile.go: Degradation handling when conversion fails
*/
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRICING INPUT / OUTPUT
// =============================================================================

// PricingInput is the snapshot a pricing model computes from.
type PricingInput struct {
	Project    Project
	Milestones []Milestone
	Tasks      []Task

	// EntryTotals are the TimeLedger project totals for entries not linked
	// to any task. Task-linked time is costed from the tasks themselves so
	// it is never counted twice.
	EntryTotals HourTotals

	DisplayCurrency CurrencyCode
	Converter       *Converter
}

// BudgetFigures is a pricing model's result, entirely in the display
// currency.
type BudgetFigures struct {
	TotalBudget Money
	SpentAmount Money

	// SpendComputed is false when the configuration cannot support spend
	// tracking (fixed price with no hourly rate). SpentAmount is zero in
	// that case and budget usage reporting shows "not computed".
	SpendComputed bool
}

// BudgetProgress returns spent/total*100, or zero when the budget is zero.
// Never NaN or Inf; values above 100 mean over budget and pass through.
func (f BudgetFigures) BudgetProgress() decimal.Decimal {
	return progressOf(f.SpentAmount.Amount, f.TotalBudget.Amount)
}

func progressOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() || whole.IsNegative() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// =============================================================================
// PRICING MODEL VARIANTS
// =============================================================================

// PricingModel computes budget figures for one pricing type.
type PricingModel interface {
	Type() PricingType
	ComputeBudget(in PricingInput) (BudgetFigures, error)
}

// ModelFor returns the pricing model for a project's pricing type.
func ModelFor(t PricingType) (PricingModel, error) {
	switch t {
	case PricingFixed:
		return fixedPricing{}, nil
	case PricingHourly:
		return hourlyPricing{}, nil
	case PricingDaily:
		return dailyPricing{}, nil
	default:
		return nil, fmt.Errorf("unknown pricing type %q", t)
	}
}

// =============================================================================
// FIXED
// =============================================================================

type fixedPricing struct{}

func (fixedPricing) Type() PricingType { return PricingFixed }

func (fixedPricing) ComputeBudget(in PricingInput) (BudgetFigures, error) {
	p := in.Project

	budget := decimal.Zero
	if p.FixedPrice != nil {
		budget = *p.FixedPrice
	} else {
		// Fallback used only when no fixed price is set.
		for _, m := range in.Milestones {
			if m.Amount != nil {
				budget = budget.Add(*m.Amount)
			}
		}
	}

	spent := decimal.Zero
	spendComputed := false
	if p.HourlyRate != nil {
		hours := actualHours(in)
		spent = hours.Mul(*p.HourlyRate)
		spendComputed = true
	}

	return convertFigures(in, budget, spent, spendComputed)
}

// =============================================================================
// HOURLY
// =============================================================================

type hourlyPricing struct{}

func (hourlyPricing) Type() PricingType { return PricingHourly }

func (hourlyPricing) ComputeBudget(in PricingInput) (BudgetFigures, error) {
	p := in.Project

	budget := decimal.Zero
	if p.HourlyRate != nil {
		budget = estimatedHours(in).Mul(*p.HourlyRate)
	}

	// Per-task rate selection happens here, before any aggregation.
	spent := decimal.Zero
	for _, t := range in.Tasks {
		if !t.IsCompleted() || t.WorkedHours == nil {
			continue
		}
		rate := p.HourlyRate
		if t.Urgent && p.UrgentHourlyRate != nil {
			rate = p.UrgentHourlyRate
		}
		if rate == nil {
			continue
		}
		spent = spent.Add(t.WorkedHours.Mul(*rate))
	}

	// Loose hour entries (not linked to a task) are costed at the
	// standard rate; they carry no urgency flag.
	if p.HourlyRate != nil {
		spent = spent.Add(in.EntryTotals.Total.Mul(*p.HourlyRate))
	}

	return convertFigures(in, budget, spent, p.HourlyRate != nil || p.UrgentHourlyRate != nil)
}

// =============================================================================
// DAILY
// =============================================================================

// hoursPerBillableDay converts an hour estimate into a day estimate for
// daily budgets. Spend never uses it: days are counted, not derived from
// hours.
var hoursPerBillableDay = decimal.NewFromInt(8)

type dailyPricing struct{}

func (dailyPricing) Type() PricingType { return PricingDaily }

func (dailyPricing) ComputeBudget(in PricingInput) (BudgetFigures, error) {
	p := in.Project

	budget := decimal.Zero
	days := DistinctWorkDays(in.Tasks)
	if p.DailyRate != nil {
		estDays := decimal.NewFromInt(int64(days))
		if p.EstimatedHours != nil {
			estDays = p.EstimatedHours.Div(hoursPerBillableDay)
		}
		budget = estDays.Mul(*p.DailyRate)
	}

	spent := decimal.Zero
	spendComputed := false
	if p.DailyRate != nil {
		spent = decimal.NewFromInt(int64(days)).Mul(*p.DailyRate)
		spendComputed = true
	}

	return convertFigures(in, budget, spent, spendComputed)
}

// DistinctWorkDays counts the distinct calendar dates on which a completed
// task records worked hours. A day with any worked time is one billable
// day; the same date across multiple tasks counts once.
func DistinctWorkDays(tasks []Task) int {
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if !t.IsCompleted() || t.CompletedOn == nil {
			continue
		}
		if t.WorkedHours == nil || !t.WorkedHours.IsPositive() {
			continue
		}
		seen[t.CompletedOn.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(seen)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// actualHours is the total of completed task hours plus loose entry hours.
func actualHours(in PricingInput) decimal.Decimal {
	total := in.EntryTotals.Total
	for _, t := range in.Tasks {
		if t.IsCompleted() && t.WorkedHours != nil {
			total = total.Add(*t.WorkedHours)
		}
	}
	return total
}

// estimatedHours resolves the project estimate, falling back to the sum of
// task estimates. The project-level field wins when set, even if zero:
// nil means absent, zero means "estimated at zero".
func estimatedHours(in PricingInput) decimal.Decimal {
	if in.Project.EstimatedHours != nil {
		return *in.Project.EstimatedHours
	}
	total := decimal.Zero
	for _, t := range in.Tasks {
		if t.EstimatedHours != nil {
			total = total.Add(*t.EstimatedHours)
		}
	}
	return total
}

// convertFigures moves both figures from the project currency into the
// display currency. On a missing rate the error propagates; the reconciler
// degrades to native-currency figures and records the cause.
func convertFigures(in PricingInput, budget, spent decimal.Decimal, spendComputed bool) (BudgetFigures, error) {
	native := in.Project.Currency
	budgetMoney, err := in.Converter.Convert(Money{Amount: budget, Currency: native}, in.DisplayCurrency)
	if err != nil {
		return BudgetFigures{}, err
	}
	spentMoney, err := in.Converter.Convert(Money{Amount: spent, Currency: native}, in.DisplayCurrency)
	if err != nil {
		return BudgetFigures{}, err
	}
	return BudgetFigures{
		TotalBudget:   budgetMoney,
		SpentAmount:   spentMoney,
		SpendComputed: spendComputed,
	}, nil
}
