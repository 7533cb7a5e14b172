/*
Package sqlite provides the SQLite-backed implementation of finance.Store.

PURPOSE:
  Persists the dashboard's records (clients, projects, milestones, tasks,
  hour entries, invoices) and enforces the storage-level invariants the
  engine delegates. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

THE UNIQUENESS CONSTRAINT:
  idx_unique_invoice_per_milestone is the AUTHORITATIVE enforcement of
  "at most one invoice per milestone". The engine's pre-check is advisory
  (two tabs can race between check and create); this index is what
  actually wins the race. Violations are mapped to
  finance.ErrUniqueInvoicePerMilestone, which the billing controller
  translates into the user-facing DuplicateInvoice refusal.

DECIMALS:
  Monetary and hour values are stored as TEXT and parsed with
  decimal.NewFromString. REAL columns would reintroduce exactly the
  floating-point drift the engine exists to avoid.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time.

SEE ALSO:
  - finance/store.go: Interface definitions and constraint contract
  - finance/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

// Store implements finance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		currency TEXT NOT NULL DEFAULT 'USD',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		name TEXT NOT NULL,
		currency TEXT NOT NULL,
		pricing_type TEXT NOT NULL,
		fixed_price TEXT,
		hourly_rate TEXT,
		urgent_hourly_rate TEXT,
		daily_rate TEXT,
		estimated_hours TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (client_id) REFERENCES clients(id)
	);

	CREATE INDEX IF NOT EXISTS idx_projects_client
		ON projects(client_id);

	CREATE TABLE IF NOT EXISTS milestones (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		amount TEXT,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		due_date TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE INDEX IF NOT EXISTS idx_milestones_project
		ON milestones(project_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		milestone_id TEXT,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		worked_hours TEXT,
		estimated_hours TEXT,
		urgent INTEGER NOT NULL DEFAULT 0,
		completed_on TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project
		ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_milestone
		ON tasks(milestone_id) WHERE milestone_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS hour_entries (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		milestone_ref TEXT NOT NULL DEFAULT '',
		task_id TEXT,
		hours TEXT NOT NULL,
		billed INTEGER NOT NULL DEFAULT 0,
		date TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE INDEX IF NOT EXISTS idx_hour_entries_project
		ON hour_entries(project_id);
	CREATE INDEX IF NOT EXISTS idx_hour_entries_task
		ON hour_entries(task_id) WHERE task_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		milestone_id TEXT,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		issued_at TEXT NOT NULL,
		due_date TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_project
		ON invoices(project_id);

	-- CRITICAL: at most one invoice per milestone. This index is the
	-- authoritative enforcement; client-side checks are advisory only.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_invoice_per_milestone
		ON invoices(milestone_id) WHERE milestone_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) Project(ctx context.Context, id finance.ProjectID) (finance.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, name, currency, pricing_type,
		       fixed_price, hourly_rate, urgent_hourly_rate, daily_rate, estimated_hours
		FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (s *Store) Projects(ctx context.Context) ([]finance.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, name, currency, pricing_type,
		       fixed_price, hourly_rate, urgent_hourly_rate, daily_rate, estimated_hours
		FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Client(ctx context.Context, id finance.ClientID) (finance.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c finance.Client
	var email sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, currency FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &email, &c.Currency)
	if err == sql.ErrNoRows {
		return finance.Client{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Client{}, err
	}
	c.Email = email.String
	return c, nil
}

func (s *Store) Clients(ctx context.Context) ([]finance.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, currency FROM clients ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Client
	for rows.Next() {
		var c finance.Client
		var email sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &email, &c.Currency); err != nil {
			return nil, err
		}
		c.Email = email.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Milestone(ctx context.Context, id finance.MilestoneID) (finance.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, status, payment_status, amount, completion_percentage, due_date
		FROM milestones WHERE id = ?`, id)
	return scanMilestone(row)
}

func (s *Store) Milestones(ctx context.Context, projectID finance.ProjectID) ([]finance.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, status, payment_status, amount, completion_percentage, due_date
		FROM milestones WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Task(ctx context.Context, id finance.TaskID) (finance.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, milestone_id, name, status, worked_hours, estimated_hours, urgent, completed_on
		FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (s *Store) Tasks(ctx context.Context, projectID finance.ProjectID) ([]finance.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, milestone_id, name, status, worked_hours, estimated_hours, urgent, completed_on
		FROM tasks WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) HourEntries(ctx context.Context, projectID finance.ProjectID) ([]finance.HourEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, `
		SELECT id, project_id, milestone_ref, task_id, hours, billed, date, note
		FROM hour_entries WHERE project_id = ? ORDER BY date ASC, created_at ASC`, projectID)
}

func (s *Store) HourEntriesForTask(ctx context.Context, taskID finance.TaskID) ([]finance.HourEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, `
		SELECT id, project_id, milestone_ref, task_id, hours, billed, date, note
		FROM hour_entries WHERE task_id = ? ORDER BY date ASC, created_at ASC`, taskID)
}

func (s *Store) Invoice(ctx context.Context, id finance.InvoiceID) (finance.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, milestone_id, amount, currency, status, issued_at, due_date
		FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}

func (s *Store) Invoices(ctx context.Context, projectID finance.ProjectID) ([]finance.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, milestone_id, amount, currency, status, issued_at, due_date
		FROM invoices WHERE project_id = ? ORDER BY issued_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) CreateClient(ctx context.Context, c finance.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, currency, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Email), c.Currency, now())
	return err
}

func (s *Store) CreateProject(ctx context.Context, p finance.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects
		(id, client_id, name, currency, pricing_type,
		 fixed_price, hourly_rate, urgent_hourly_rate, daily_rate, estimated_hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, p.Currency, p.PricingType,
		nullDecimal(p.FixedPrice), nullDecimal(p.HourlyRate), nullDecimal(p.UrgentHourlyRate),
		nullDecimal(p.DailyRate), nullDecimal(p.EstimatedHours), now())
	return err
}

func (s *Store) CreateMilestone(ctx context.Context, m finance.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO milestones
		(id, project_id, name, status, payment_status, amount, completion_percentage, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.Name, m.Status, m.PaymentStatus,
		nullDecimal(m.Amount), m.Completion(), nullTime(m.DueDate), now())
	return err
}

func (s *Store) CreateTask(ctx context.Context, t finance.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var milestoneID sql.NullString
	if t.MilestoneID != nil {
		milestoneID = sql.NullString{String: string(*t.MilestoneID), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks
		(id, project_id, milestone_id, name, status, worked_hours, estimated_hours, urgent, completed_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, milestoneID, t.Name, t.Status,
		nullDecimal(t.WorkedHours), nullDecimal(t.EstimatedHours), boolToInt(t.Urgent),
		nullTime(t.CompletedOn), now())
	return err
}

func (s *Store) CreateHourEntry(ctx context.Context, e finance.HourEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var taskID sql.NullString
	if e.TaskID != nil {
		taskID = sql.NullString{String: string(*e.TaskID), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hour_entries
		(id, project_id, milestone_ref, task_id, hours, billed, date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.MilestoneRef, taskID, e.Hours.String(), boolToInt(e.Billed),
		e.Date.UTC().Format(time.RFC3339), nullString(e.Note), now())
	return err
}

// CreateInvoice persists an invoice. The unique index on milestone_id makes
// this the authoritative one-invoice-per-milestone check; a violation maps
// to finance.ErrUniqueInvoicePerMilestone.
func (s *Store) CreateInvoice(ctx context.Context, inv finance.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var milestoneID sql.NullString
	if inv.MilestoneID != nil {
		milestoneID = sql.NullString{String: string(*inv.MilestoneID), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices
		(id, project_id, milestone_id, amount, currency, status, issued_at, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ProjectID, milestoneID, inv.Amount.String(), inv.Currency, inv.Status,
		inv.IssuedAt.UTC().Format(time.RFC3339), nullTime(inv.DueDate), now())
	if err != nil {
		if isMilestoneUniquenessError(err) {
			return finance.ErrUniqueInvoicePerMilestone
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id finance.InvoiceID, status finance.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateOne(ctx, `UPDATE invoices SET status = ? WHERE id = ?`, status, id)
}

func (s *Store) SetMilestonePaymentStatus(ctx context.Context, id finance.MilestoneID, status finance.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateOne(ctx, `UPDATE milestones SET payment_status = ? WHERE id = ?`, status, id)
}

func (s *Store) SetMilestoneCompletion(ctx context.Context, id finance.MilestoneID, percentage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Clamp on the way in; stored values stay inside [0, 100].
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	return s.updateOne(ctx, `UPDATE milestones SET completion_percentage = ? WHERE id = ?`, percentage, id)
}

func (s *Store) SetMilestoneStatus(ctx context.Context, id finance.MilestoneID, status finance.MilestoneStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateOne(ctx, `UPDATE milestones SET status = ? WHERE id = ?`, status, id)
}

func (s *Store) SetEntryBilled(ctx context.Context, id finance.EntryID, billed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateOne(ctx, `UPDATE hour_entries SET billed = ? WHERE id = ?`, boolToInt(billed), id)
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id finance.TaskID, status finance.TaskStatus, workedHours *decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if workedHours != nil {
		return s.updateOne(ctx,
			`UPDATE tasks SET status = ?, worked_hours = ?, completed_on = ? WHERE id = ?`,
			status, workedHours.String(), now(), id)
	}
	return s.updateOne(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
}

func (s *Store) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return finance.ErrNotFound
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (finance.Project, error) {
	var p finance.Project
	var fixed, hourly, urgent, daily, estimated sql.NullString
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Currency, &p.PricingType,
		&fixed, &hourly, &urgent, &daily, &estimated)
	if err == sql.ErrNoRows {
		return finance.Project{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Project{}, err
	}
	p.FixedPrice = parseNullDecimal(fixed)
	p.HourlyRate = parseNullDecimal(hourly)
	p.UrgentHourlyRate = parseNullDecimal(urgent)
	p.DailyRate = parseNullDecimal(daily)
	p.EstimatedHours = parseNullDecimal(estimated)
	return p, nil
}

func scanMilestone(row rowScanner) (finance.Milestone, error) {
	var m finance.Milestone
	var amount, dueDate sql.NullString
	err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Status, &m.PaymentStatus,
		&amount, &m.CompletionPercentage, &dueDate)
	if err == sql.ErrNoRows {
		return finance.Milestone{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Milestone{}, err
	}
	m.Amount = parseNullDecimal(amount)
	m.DueDate = parseNullTime(dueDate)
	return m, nil
}

func scanTask(row rowScanner) (finance.Task, error) {
	var t finance.Task
	var milestoneID, worked, estimated, completedOn sql.NullString
	var urgent int
	err := row.Scan(&t.ID, &t.ProjectID, &milestoneID, &t.Name, &t.Status,
		&worked, &estimated, &urgent, &completedOn)
	if err == sql.ErrNoRows {
		return finance.Task{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Task{}, err
	}
	if milestoneID.Valid {
		id := finance.MilestoneID(milestoneID.String)
		t.MilestoneID = &id
	}
	t.WorkedHours = parseNullDecimal(worked)
	t.EstimatedHours = parseNullDecimal(estimated)
	t.Urgent = urgent != 0
	t.CompletedOn = parseNullTime(completedOn)
	return t, nil
}

func scanInvoice(row rowScanner) (finance.Invoice, error) {
	var inv finance.Invoice
	var milestoneID, dueDate sql.NullString
	var amount, issuedAt string
	err := row.Scan(&inv.ID, &inv.ProjectID, &milestoneID, &amount, &inv.Currency,
		&inv.Status, &issuedAt, &dueDate)
	if err == sql.ErrNoRows {
		return finance.Invoice{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Invoice{}, err
	}
	if milestoneID.Valid {
		id := finance.MilestoneID(milestoneID.String)
		inv.MilestoneID = &id
	}
	inv.Amount = finance.MustParseDecimal(amount)
	if t, err := time.Parse(time.RFC3339, issuedAt); err == nil {
		inv.IssuedAt = t
	}
	inv.DueDate = parseNullTime(dueDate)
	return inv, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]finance.HourEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.HourEntry
	for rows.Next() {
		var e finance.HourEntry
		var taskID, note sql.NullString
		var hours, date string
		var billed int
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.MilestoneRef, &taskID, &hours, &billed, &date, &note); err != nil {
			return nil, err
		}
		if taskID.Valid {
			id := finance.TaskID(taskID.String)
			e.TaskID = &id
		}
		e.Hours = finance.MustParseDecimal(hours)
		e.Billed = billed != 0
		e.Note = note.String
		if t, err := time.Parse(time.RFC3339, date); err == nil {
			e.Date = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullDecimal(s sql.NullString) *decimal.Decimal {
	if !s.Valid {
		return nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isMilestoneUniquenessError(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "idx_unique_invoice_per_milestone") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed: invoices.milestone_id"))
}
