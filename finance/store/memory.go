// Package store provides finance.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an in-memory finance.Store. It mirrors the production store's
// behavior including the one-invoice-per-milestone constraint, so tests
// exercise the same refusal path.
type Memory struct {
	mu sync.RWMutex

	clients    map[finance.ClientID]finance.Client
	projects   map[finance.ProjectID]finance.Project
	milestones map[finance.MilestoneID]finance.Milestone
	tasks      map[finance.TaskID]finance.Task
	entries    map[finance.EntryID]finance.HourEntry
	invoices   map[finance.InvoiceID]finance.Invoice

	// invoicedMilestones backs the uniqueness constraint.
	invoicedMilestones map[finance.MilestoneID]finance.InvoiceID
}

func NewMemory() *Memory {
	return &Memory{
		clients:            make(map[finance.ClientID]finance.Client),
		projects:           make(map[finance.ProjectID]finance.Project),
		milestones:         make(map[finance.MilestoneID]finance.Milestone),
		tasks:              make(map[finance.TaskID]finance.Task),
		entries:            make(map[finance.EntryID]finance.HourEntry),
		invoices:           make(map[finance.InvoiceID]finance.Invoice),
		invoicedMilestones: make(map[finance.MilestoneID]finance.InvoiceID),
	}
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) Project(_ context.Context, id finance.ProjectID) (finance.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return finance.Project{}, finance.ErrNotFound
	}
	return p, nil
}

func (m *Memory) Projects(_ context.Context) ([]finance.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]finance.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Client(_ context.Context, id finance.ClientID) (finance.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return finance.Client{}, finance.ErrNotFound
	}
	return c, nil
}

func (m *Memory) Clients(_ context.Context) ([]finance.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]finance.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Milestone(_ context.Context, id finance.MilestoneID) (finance.Milestone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.milestones[id]
	if !ok {
		return finance.Milestone{}, finance.ErrNotFound
	}
	return ms, nil
}

func (m *Memory) Milestones(_ context.Context, projectID finance.ProjectID) ([]finance.Milestone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finance.Milestone
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Task(_ context.Context, id finance.TaskID) (finance.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return finance.Task{}, finance.ErrNotFound
	}
	return t, nil
}

func (m *Memory) Tasks(_ context.Context, projectID finance.ProjectID) ([]finance.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finance.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) HourEntries(_ context.Context, projectID finance.ProjectID) ([]finance.HourEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finance.HourEntry
	for _, e := range m.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) HourEntriesForTask(_ context.Context, taskID finance.TaskID) ([]finance.HourEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finance.HourEntry
	for _, e := range m.entries {
		if e.TaskID != nil && *e.TaskID == taskID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Invoice(_ context.Context, id finance.InvoiceID) (finance.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return finance.Invoice{}, finance.ErrNotFound
	}
	return inv, nil
}

func (m *Memory) Invoices(_ context.Context, projectID finance.ProjectID) ([]finance.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finance.Invoice
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) CreateClient(_ context.Context, c finance.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return nil
}

func (m *Memory) CreateProject(_ context.Context, p finance.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) CreateMilestone(_ context.Context, ms finance.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.milestones[ms.ID] = ms
	return nil
}

func (m *Memory) CreateTask(_ context.Context, t finance.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *Memory) CreateHourEntry(_ context.Context, e finance.HourEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

// CreateInvoice enforces the milestone uniqueness constraint atomically
// under the store lock, matching the production store's unique index.
func (m *Memory) CreateInvoice(_ context.Context, inv finance.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.MilestoneID != nil {
		if _, taken := m.invoicedMilestones[*inv.MilestoneID]; taken {
			return finance.ErrUniqueInvoicePerMilestone
		}
		m.invoicedMilestones[*inv.MilestoneID] = inv.ID
	}
	m.invoices[inv.ID] = inv
	return nil
}

func (m *Memory) UpdateInvoiceStatus(_ context.Context, id finance.InvoiceID, status finance.InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return finance.ErrNotFound
	}
	inv.Status = status
	m.invoices[id] = inv
	return nil
}

func (m *Memory) SetMilestonePaymentStatus(_ context.Context, id finance.MilestoneID, status finance.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return finance.ErrNotFound
	}
	ms.PaymentStatus = status
	m.milestones[id] = ms
	return nil
}

func (m *Memory) SetMilestoneCompletion(_ context.Context, id finance.MilestoneID, percentage int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return finance.ErrNotFound
	}
	ms.CompletionPercentage = percentage
	m.milestones[id] = ms
	return nil
}

func (m *Memory) SetMilestoneStatus(_ context.Context, id finance.MilestoneID, status finance.MilestoneStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return finance.ErrNotFound
	}
	ms.Status = status
	m.milestones[id] = ms
	return nil
}

func (m *Memory) SetEntryBilled(_ context.Context, id finance.EntryID, billed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return finance.ErrNotFound
	}
	e.Billed = billed
	m.entries[id] = e
	return nil
}

func (m *Memory) UpdateTaskStatus(_ context.Context, id finance.TaskID, status finance.TaskStatus, workedHours *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return finance.ErrNotFound
	}
	t.Status = status
	if workedHours != nil {
		t.WorkedHours = workedHours
		completedOn := time.Now().UTC()
		t.CompletedOn = &completedOn
	}
	m.tasks[id] = t
	return nil
}
