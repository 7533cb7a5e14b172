/*
handlers.go - HTTP handler implementations

PURPOSE:
  Translates HTTP requests into engine calls and engine results/errors
  into JSON responses. Handlers validate at the boundary (validator/v10),
  then hand plain data to the finance package.

ERROR MAPPING:
  finance.ErrDuplicateInvoice      -> 409 "duplicate_invoice"
  finance.ErrPaymentRegression     -> 409 "payment_regression"
  finance.ErrNotFound              -> 404 "not_found"
  finance.ErrUnknownCurrency       -> 400 "unknown_currency"
  finance.BatchToggleError         -> 500 "partial_toggle" with the list
                                      of entries written before failure
  validation failures              -> 400 "validation"
  anything else                    -> 500 "internal"

SEE ALSO:
  - server.go: Route wiring
  - dto.go: Request/response shapes
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// Handler holds the engine and its collaborators.
type Handler struct {
	store      finance.Store
	billing    *finance.MilestoneBillingController
	reconciler *finance.BudgetReconciler
	rates      finance.RateTable
	validate   *validator.Validate
	log        *zap.Logger
	demoMode   bool
}

func NewHandler(store finance.Store, rates finance.RateTable, log *zap.Logger, demoMode bool) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:      store,
		billing:    finance.NewMilestoneBillingController(store, log),
		reconciler: finance.NewBudgetReconciler(log),
		rates:      rates,
		validate:   validator.New(),
		log:        log,
		demoMode:   demoMode,
	}
}

// =============================================================================
// REPORT
// =============================================================================

// GetReport runs the reconciler for a project.
// GET /api/projects/{id}/report?currency=USD
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := finance.ProjectID(chi.URLParam(r, "id"))

	project, err := h.store.Project(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	milestones, err := h.store.Milestones(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tasks, err := h.store.Tasks(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	entries, err := h.store.HourEntries(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	invoices, err := h.store.Invoices(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var client *finance.Client
	if c, err := h.store.Client(ctx, project.ClientID); err == nil {
		client = &c
	}

	display := finance.CurrencyCode(r.URL.Query().Get("currency"))
	report, err := h.reconciler.Reconcile(finance.ReconcileInput{
		Project:         project,
		Client:          client,
		Milestones:      milestones,
		Invoices:        invoices,
		Tasks:           tasks,
		HourEntries:     entries,
		DisplayCurrency: display,
		Rates:           h.rates,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toBudgetReportDTO(report, h.demoMode))
}

// ListCurrencies returns the source currencies of the active rate table.
// GET /api/currencies
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	codes := h.rates.Currencies()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// CLIENTS / PROJECTS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.Clients(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !h.decode(w, r, &req) {
		return
	}
	c := finance.Client{
		ID:       finance.ClientID(uuid.NewString()),
		Name:     req.Name,
		Email:    req.Email,
		Currency: finance.CurrencyCode(req.Currency),
	}
	if err := h.store.CreateClient(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toClientDTO(c))
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.Projects(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Project(r.Context(), finance.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProjectDTO(p))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	p := finance.Project{
		ID:               finance.ProjectID(uuid.NewString()),
		ClientID:         finance.ClientID(req.ClientID),
		Name:             req.Name,
		Currency:         finance.CurrencyCode(req.Currency),
		PricingType:      finance.PricingType(req.PricingType),
		FixedPrice:       optDecimal(req.FixedPrice),
		HourlyRate:       optDecimal(req.HourlyRate),
		UrgentHourlyRate: optDecimal(req.UrgentHourlyRate),
		DailyRate:        optDecimal(req.DailyRate),
		EstimatedHours:   optDecimal(req.EstimatedHours),
	}
	if err := h.store.CreateProject(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// =============================================================================
// MILESTONES
// =============================================================================

func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.store.Milestones(r.Context(), finance.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]MilestoneDTO, len(milestones))
	for i, m := range milestones {
		dtos[i] = toMilestoneDTO(m)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req CreateMilestoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	m := finance.Milestone{
		ID:                   finance.MilestoneID(uuid.NewString()),
		ProjectID:            finance.ProjectID(chi.URLParam(r, "id")),
		Name:                 req.Name,
		Status:               finance.MilestonePending,
		PaymentStatus:        finance.PaymentUnpaid,
		Amount:               optDecimal(req.Amount),
		CompletionPercentage: req.Completion,
		DueDate:              optDate(req.DueDate),
	}
	if err := h.store.CreateMilestone(r.Context(), m); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toMilestoneDTO(m))
}

// MarkMilestonePaid is the quick action: unpaid -> paid directly.
// POST /api/milestones/{id}/paid
func (h *Handler) MarkMilestonePaid(w http.ResponseWriter, r *http.Request) {
	id := finance.MilestoneID(chi.URLParam(r, "id"))
	if err := h.billing.MarkMilestonePaid(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	m, err := h.store.Milestone(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMilestoneDTO(m))
}

// SetMilestonePayment applies an explicit payment status. Moving a paid
// milestone backwards is refused with 409 payment_regression; the quick
// action endpoint stays the only idempotent path to paid.
// POST /api/milestones/{id}/payment
func (h *Handler) SetMilestonePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := finance.MilestoneID(chi.URLParam(r, "id"))
	if err := h.billing.SetMilestonePaymentStatus(r.Context(), id, finance.PaymentStatus(req.Status)); err != nil {
		h.writeError(w, err)
		return
	}
	m, err := h.store.Milestone(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMilestoneDTO(m))
}

func (h *Handler) SetMilestoneStatus(w http.ResponseWriter, r *http.Request) {
	var req MilestoneStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := finance.MilestoneID(chi.URLParam(r, "id"))
	if err := h.store.SetMilestoneStatus(r.Context(), id, finance.MilestoneStatus(req.Status)); err != nil {
		h.writeError(w, err)
		return
	}
	m, err := h.store.Milestone(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMilestoneDTO(m))
}

func (h *Handler) SetMilestoneCompletion(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := finance.MilestoneID(chi.URLParam(r, "id"))
	if err := h.store.SetMilestoneCompletion(r.Context(), id, req.Completion); err != nil {
		h.writeError(w, err)
		return
	}
	m, err := h.store.Milestone(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMilestoneDTO(m))
}

// =============================================================================
// TASKS
// =============================================================================

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := finance.ProjectID(chi.URLParam(r, "id"))
	tasks, err := h.store.Tasks(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	entries, err := h.store.HourEntries(ctx, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ledger := finance.NewTimeLedger(h.log)
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t, ledger.TaskIsBilled(entries, t.ID))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	t := finance.Task{
		ID:             finance.TaskID(uuid.NewString()),
		ProjectID:      finance.ProjectID(chi.URLParam(r, "id")),
		Name:           req.Name,
		Status:         finance.TaskPending,
		EstimatedHours: optDecimal(req.EstimatedHours),
		Urgent:         req.Urgent,
	}
	if req.MilestoneID != nil {
		id := finance.MilestoneID(*req.MilestoneID)
		t.MilestoneID = &id
	}
	if err := h.store.CreateTask(r.Context(), t); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTaskDTO(t, false))
}

// UpdateTaskStatus transitions a task, recording worked hours on
// completion. POST /api/tasks/{id}/status
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := finance.TaskID(chi.URLParam(r, "id"))
	status := finance.TaskStatus(req.Status)
	if status == finance.TaskCompleted && req.WorkedHours == nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "worked_hours is required when completing a task",
			Code:  "validation",
		})
		return
	}
	if err := h.store.UpdateTaskStatus(r.Context(), id, status, optDecimal(req.WorkedHours)); err != nil {
		h.writeError(w, err)
		return
	}
	t, err := h.store.Task(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTaskDTO(t, false))
}

// ToggleTaskBilled sets the billed flag on every hour entry linked to the
// task. Best-effort batch; a mid-batch failure returns the entries that
// were written. POST /api/tasks/{id}/billed
func (h *Handler) ToggleTaskBilled(w http.ResponseWriter, r *http.Request) {
	var req ToggleBilledRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := finance.TaskID(chi.URLParam(r, "id"))

	result, err := h.billing.SetTaskBilled(r.Context(), id, req.Billed)
	dto := ToggleResultDTO{
		TaskID: string(result.TaskID),
		Billed: result.Billed,
	}
	for _, e := range result.Updated {
		dto.Updated = append(dto.Updated, string(e))
	}
	if err != nil {
		var batchErr *finance.BatchToggleError
		if errors.As(err, &batchErr) {
			dto.Partial = true
			h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:   batchErr.Error(),
				Code:    "partial_toggle",
				Details: dto,
			})
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HOUR ENTRIES
// =============================================================================

func (h *Handler) ListHourEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.HourEntries(r.Context(), finance.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]HourEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHourEntryDTO(e)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHourEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateHourEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD", Code: "validation"})
		return
	}
	e := finance.HourEntry{
		ID:           finance.EntryID(uuid.NewString()),
		ProjectID:    finance.ProjectID(req.ProjectID),
		MilestoneRef: req.MilestoneID,
		Hours:        decimal.NewFromFloat(req.Hours),
		Billed:       req.Billed,
		Date:         date,
		Note:         req.Note,
	}
	if req.TaskID != nil {
		id := finance.TaskID(*req.TaskID)
		e.TaskID = &id
	}
	if err := h.store.CreateHourEntry(r.Context(), e); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toHourEntryDTO(e))
}

// =============================================================================
// INVOICES
// =============================================================================

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.store.Invoices(r.Context(), finance.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

// CreateInvoice creates an invoice, optionally tied to a milestone. A
// milestone that already has one yields 409 duplicate_invoice whether the
// pre-check or the store constraint caught it.
// POST /api/projects/{id}/invoices
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft := finance.InvoiceDraft{
		ProjectID: finance.ProjectID(chi.URLParam(r, "id")),
		Amount:    decimal.NewFromFloat(req.Amount),
		Currency:  finance.CurrencyCode(req.Currency),
		DueDate:   optDate(req.DueDate),
	}
	if req.MilestoneID != nil {
		id := finance.MilestoneID(*req.MilestoneID)
		draft.MilestoneID = &id
	}

	inv, err := h.billing.CreateInvoice(r.Context(), draft)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// MarkInvoicePaid moves the invoice (and its milestone, if any) to paid.
// POST /api/invoices/{id}/paid
func (h *Handler) MarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id := finance.InvoiceID(chi.URLParam(r, "id"))
	if err := h.billing.MarkInvoicePaid(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	inv, err := h.store.Invoice(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body", Code: "validation"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "validation",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, finance.ErrDuplicateInvoice), errors.Is(err, finance.ErrUniqueInvoicePerMilestone):
		h.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate_invoice"})
	case errors.Is(err, finance.ErrPaymentRegression):
		h.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "payment_regression"})
	case errors.Is(err, finance.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, finance.ErrUnknownCurrency):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "unknown_currency"})
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
}

func optDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func optDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
