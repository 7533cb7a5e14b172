/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine's domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator/v10 tags and are validated in handlers
  before anything reaches the engine. Optional monetary fields are
  pointers: absent means "not configured", which the engine treats
  differently from zero.

DEMO MODE:
  Demo mode masks monetary figures at DTO conversion time. It is purely
  a presentation concern; the engine's arithmetic never sees it.

SEE ALSO:
  - handlers.go: Uses these types
  - finance/reconcile.go: BudgetReport, the source of the report DTO
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// maskedFigure replaces monetary figures in demo mode.
const maskedFigure = "•••"

// =============================================================================
// CLIENTS / PROJECTS
// =============================================================================

type ClientDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Currency string `json:"currency"`
}

type CreateClientRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type ProjectDTO struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	PricingType string `json:"pricing_type"`

	FixedPrice       *string `json:"fixed_price,omitempty"`
	HourlyRate       *string `json:"hourly_rate,omitempty"`
	UrgentHourlyRate *string `json:"urgent_hourly_rate,omitempty"`
	DailyRate        *string `json:"daily_rate,omitempty"`
	EstimatedHours   *string `json:"estimated_hours,omitempty"`
}

type CreateProjectRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3"`
	PricingType string `json:"pricing_type" validate:"required,oneof=fixed hourly daily"`

	FixedPrice       *float64 `json:"fixed_price" validate:"omitempty,gte=0"`
	HourlyRate       *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	UrgentHourlyRate *float64 `json:"urgent_hourly_rate" validate:"omitempty,gte=0"`
	DailyRate        *float64 `json:"daily_rate" validate:"omitempty,gte=0"`
	EstimatedHours   *float64 `json:"estimated_hours" validate:"omitempty,gte=0"`
}

// =============================================================================
// MILESTONES / TASKS / HOURS / INVOICES
// =============================================================================

type MilestoneDTO struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"project_id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Amount        *string `json:"amount,omitempty"`
	Completion    int     `json:"completion_percentage"`
	DueDate       *string `json:"due_date,omitempty"`
}

type CreateMilestoneRequest struct {
	Name       string   `json:"name" validate:"required"`
	Amount     *float64 `json:"amount" validate:"omitempty,gte=0"`
	Completion int      `json:"completion_percentage" validate:"gte=0,lte=100"`
	DueDate    *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type CompletionRequest struct {
	Completion int `json:"completion_percentage" validate:"gte=0,lte=100"`
}

type MilestoneStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=unpaid partial paid"`
}

type TaskDTO struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"project_id"`
	MilestoneID    *string `json:"milestone_id,omitempty"`
	Name           string  `json:"name"`
	Status         string  `json:"status"`
	WorkedHours    *string `json:"worked_hours,omitempty"`
	EstimatedHours *string `json:"estimated_hours,omitempty"`
	Urgent         bool    `json:"urgent"`
	Billed         bool    `json:"billed"`
}

type CreateTaskRequest struct {
	MilestoneID    *string  `json:"milestone_id"`
	Name           string   `json:"name" validate:"required"`
	EstimatedHours *float64 `json:"estimated_hours" validate:"omitempty,gte=0"`
	Urgent         bool     `json:"urgent"`
}

type UpdateTaskStatusRequest struct {
	Status      string   `json:"status" validate:"required,oneof=pending in-progress completed"`
	WorkedHours *float64 `json:"worked_hours" validate:"omitempty,gt=0"`
}

type ToggleBilledRequest struct {
	Billed bool `json:"billed"`
}

type ToggleResultDTO struct {
	TaskID  string   `json:"task_id"`
	Billed  bool     `json:"billed"`
	Updated []string `json:"updated_entries"`
	Partial bool     `json:"partial"`
}

type HourEntryDTO struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	MilestoneRef string  `json:"milestone_ref,omitempty"`
	TaskID       *string `json:"task_id,omitempty"`
	Hours        string  `json:"hours"`
	Billed       bool    `json:"billed"`
	Date         string  `json:"date"`
	Note         string  `json:"note,omitempty"`
}

type CreateHourEntryRequest struct {
	ProjectID   string  `json:"project_id" validate:"required"`
	MilestoneID string  `json:"milestone_id"`
	TaskID      *string `json:"task_id"`
	Hours       float64 `json:"hours" validate:"required,gt=0"`
	Billed      bool    `json:"billed"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Note        string  `json:"note"`
}

type InvoiceDTO struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	MilestoneID *string `json:"milestone_id,omitempty"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	IssuedAt    string  `json:"issued_at"`
	DueDate     *string `json:"due_date,omitempty"`
}

type CreateInvoiceRequest struct {
	MilestoneID *string `json:"milestone_id"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// BUDGET REPORT
// =============================================================================

type HourTotalsDTO struct {
	Total    string `json:"total"`
	Billed   string `json:"billed"`
	Unbilled string `json:"unbilled"`
}

type MilestoneLineDTO struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"payment_status"`
	Completion    int           `json:"completion_percentage"`
	Amount        *string       `json:"amount,omitempty"`
	BillingState  string        `json:"billing_state"`
	InvoiceID     *string       `json:"invoice_id,omitempty"`
	InvoiceStatus *string       `json:"invoice_status,omitempty"`
	Hours         HourTotalsDTO `json:"hours"`
}

type AdvisoryDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DegradationDTO struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type BudgetReportDTO struct {
	ProjectID   string `json:"project_id"`
	PricingType string `json:"pricing_type"`
	Currency    string `json:"currency"`

	TotalBudget     string `json:"total_budget"`
	SpentAmount     string `json:"spent_amount"`
	RemainingBudget string `json:"remaining_budget"`
	SpendComputed   bool   `json:"spend_computed"`

	BudgetProgress string `json:"budget_progress"`

	RevenueEarned   string `json:"revenue_earned"`
	RevenueProgress string `json:"revenue_progress"`

	Hours      HourTotalsDTO `json:"hours"`
	Unassigned HourTotalsDTO `json:"unassigned_hours"`

	Milestones []MilestoneLineDTO `json:"milestones"`

	Advisories   []AdvisoryDTO    `json:"advisories,omitempty"`
	Degradations []DegradationDTO `json:"degradations,omitempty"`

	Demo bool `json:"demo,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

func toClientDTO(c finance.Client) ClientDTO {
	return ClientDTO{
		ID:       string(c.ID),
		Name:     c.Name,
		Email:    c.Email,
		Currency: string(c.Currency),
	}
}

func toProjectDTO(p finance.Project) ProjectDTO {
	return ProjectDTO{
		ID:               string(p.ID),
		ClientID:         string(p.ClientID),
		Name:             p.Name,
		Currency:         string(p.Currency),
		PricingType:      string(p.PricingType),
		FixedPrice:       decimalString(p.FixedPrice),
		HourlyRate:       decimalString(p.HourlyRate),
		UrgentHourlyRate: decimalString(p.UrgentHourlyRate),
		DailyRate:        decimalString(p.DailyRate),
		EstimatedHours:   decimalString(p.EstimatedHours),
	}
}

func toMilestoneDTO(m finance.Milestone) MilestoneDTO {
	return MilestoneDTO{
		ID:            string(m.ID),
		ProjectID:     string(m.ProjectID),
		Name:          m.Name,
		Status:        string(m.Status),
		PaymentStatus: string(m.PaymentStatus),
		Amount:        decimalString(m.Amount),
		Completion:    m.Completion(),
		DueDate:       timeString(m.DueDate),
	}
}

func toTaskDTO(t finance.Task, billed bool) TaskDTO {
	dto := TaskDTO{
		ID:             string(t.ID),
		ProjectID:      string(t.ProjectID),
		Name:           t.Name,
		Status:         string(t.Status),
		WorkedHours:    decimalString(t.WorkedHours),
		EstimatedHours: decimalString(t.EstimatedHours),
		Urgent:         t.Urgent,
		Billed:         billed,
	}
	if t.MilestoneID != nil {
		id := string(*t.MilestoneID)
		dto.MilestoneID = &id
	}
	return dto
}

func toHourEntryDTO(e finance.HourEntry) HourEntryDTO {
	dto := HourEntryDTO{
		ID:           string(e.ID),
		ProjectID:    string(e.ProjectID),
		MilestoneRef: e.MilestoneRef,
		Hours:        e.Hours.String(),
		Billed:       e.Billed,
		Date:         e.Date.UTC().Format("2006-01-02"),
		Note:         e.Note,
	}
	if e.TaskID != nil {
		id := string(*e.TaskID)
		dto.TaskID = &id
	}
	return dto
}

func toInvoiceDTO(inv finance.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		ID:        string(inv.ID),
		ProjectID: string(inv.ProjectID),
		Amount:    inv.Amount.String(),
		Currency:  string(inv.Currency),
		Status:    string(inv.Status),
		IssuedAt:  inv.IssuedAt.UTC().Format(time.RFC3339),
		DueDate:   timeString(inv.DueDate),
	}
	if inv.MilestoneID != nil {
		id := string(*inv.MilestoneID)
		dto.MilestoneID = &id
	}
	return dto
}

func toHourTotalsDTO(t finance.HourTotals) HourTotalsDTO {
	return HourTotalsDTO{
		Total:    t.Total.String(),
		Billed:   t.Billed.String(),
		Unbilled: t.Unbilled.String(),
	}
}

// toBudgetReportDTO renders the report. In demo mode every monetary
// figure is masked; progress percentages and hour totals stay visible so
// demos still show shape without real numbers.
func toBudgetReportDTO(r finance.BudgetReport, demo bool) BudgetReportDTO {
	money := func(m finance.Money) string {
		if demo {
			return maskedFigure
		}
		return m.Amount.Round(2).String()
	}

	dto := BudgetReportDTO{
		ProjectID:       string(r.ProjectID),
		PricingType:     string(r.PricingType),
		Currency:        string(r.Currency),
		TotalBudget:     money(r.TotalBudget),
		SpentAmount:     money(r.SpentAmount),
		RemainingBudget: money(r.RemainingBudget),
		SpendComputed:   r.SpendComputed,
		BudgetProgress:  r.BudgetProgress.Round(1).String(),
		RevenueEarned:   money(r.RevenueEarned),
		RevenueProgress: r.RevenueProgress.Round(1).String(),
		Hours:           toHourTotalsDTO(r.Hours),
		Unassigned:      toHourTotalsDTO(r.Unassigned),
		Demo:            demo,
	}

	for _, line := range r.Milestones {
		ldto := MilestoneLineDTO{
			ID:            string(line.ID),
			Name:          line.Name,
			Status:        string(line.Status),
			PaymentStatus: string(line.PaymentStatus),
			Completion:    line.Completion,
			BillingState:  string(line.BillingState),
			Hours:         toHourTotalsDTO(line.Hours),
		}
		if line.Amount != nil {
			s := money(*line.Amount)
			ldto.Amount = &s
		}
		if line.InvoiceID != nil {
			id := string(*line.InvoiceID)
			ldto.InvoiceID = &id
		}
		if line.InvoiceStatus != nil {
			status := string(*line.InvoiceStatus)
			ldto.InvoiceStatus = &status
		}
		dto.Milestones = append(dto.Milestones, ldto)
	}

	for _, a := range r.Advisories {
		dto.Advisories = append(dto.Advisories, AdvisoryDTO{Code: string(a.Code), Message: a.Message})
	}
	for _, d := range r.Degradations {
		dto.Degradations = append(dto.Degradations, DegradationDTO{Code: string(d.Code), Detail: d.Detail})
	}

	return dto
}
