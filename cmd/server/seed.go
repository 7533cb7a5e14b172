/*
seed.go - Demo data seeding

PURPOSE:
  Populates a fresh database with a small, internally consistent demo
  portfolio: one client with three projects, one per pricing model, with
  milestones, tasks, logged hours, and an invoice. Intended for local
  development and demos; never runs unless -seed is passed.

SEE ALSO:
  - main.go: The -seed flag
  - rates/rates.go: Demo() supplies the matching rate table
*/
package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/onutadrian/client-zen-dashboard-sub000/finance"
)

func dp(s string) *decimal.Decimal {
	d := finance.MustParseDecimal(s)
	return &d
}

// seedDemo writes the demo portfolio. Idempotency is the caller's
// problem: run it against a fresh database.
func seedDemo(ctx context.Context, s finance.Store, log *zap.Logger) error {
	if err := s.CreateClient(ctx, finance.Client{
		ID: "client-acme", Name: "Acme Studio", Email: "billing@acme.example", Currency: "EUR",
	}); err != nil {
		return err
	}

	// Fixed-price project with milestones and an invoice.
	if err := s.CreateProject(ctx, finance.Project{
		ID: "proj-brand", ClientID: "client-acme", Name: "Brand Refresh",
		Currency: "EUR", PricingType: finance.PricingFixed,
		FixedPrice: dp("4000"), HourlyRate: dp("60"),
	}); err != nil {
		return err
	}
	milestones := []finance.Milestone{
		{ID: "ms-discovery", ProjectID: "proj-brand", Name: "Discovery",
			Status: finance.MilestoneCompleted, PaymentStatus: finance.PaymentPaid,
			Amount: dp("1000"), CompletionPercentage: 100},
		{ID: "ms-identity", ProjectID: "proj-brand", Name: "Identity System",
			Status: finance.MilestoneInProgress, PaymentStatus: finance.PaymentUnpaid,
			Amount: dp("2000"), CompletionPercentage: 45},
		{ID: "ms-rollout", ProjectID: "proj-brand", Name: "Rollout",
			Status: finance.MilestonePending, PaymentStatus: finance.PaymentUnpaid,
			Amount: dp("1000")},
	}
	for _, m := range milestones {
		if err := s.CreateMilestone(ctx, m); err != nil {
			return err
		}
	}
	msDiscovery := finance.MilestoneID("ms-discovery")
	if err := s.CreateInvoice(ctx, finance.Invoice{
		ID: "inv-discovery", ProjectID: "proj-brand", MilestoneID: &msDiscovery,
		Amount: finance.MustParseDecimal("1000"), Currency: "EUR",
		Status: finance.InvoicePaid, IssuedAt: daysAgo(30),
	}); err != nil {
		return err
	}

	// Hourly project with an urgent task.
	if err := s.CreateProject(ctx, finance.Project{
		ID: "proj-app", ClientID: "client-acme", Name: "Mobile App",
		Currency: "USD", PricingType: finance.PricingHourly,
		HourlyRate: dp("80"), UrgentHourlyRate: dp("120"), EstimatedHours: dp("120"),
	}); err != nil {
		return err
	}
	appTasks := []finance.Task{
		{ID: "task-auth", ProjectID: "proj-app", Name: "Auth flow",
			Status: finance.TaskCompleted, WorkedHours: dp("18"),
			EstimatedHours: dp("16"), CompletedOn: timePtr(daysAgo(10))},
		{ID: "task-hotfix", ProjectID: "proj-app", Name: "Crash hotfix",
			Status: finance.TaskCompleted, WorkedHours: dp("4"), Urgent: true,
			CompletedOn: timePtr(daysAgo(3))},
		{ID: "task-sync", ProjectID: "proj-app", Name: "Offline sync",
			Status: finance.TaskInProgress, EstimatedHours: dp("40")},
	}
	for _, t := range appTasks {
		if err := s.CreateTask(ctx, t); err != nil {
			return err
		}
	}

	// Daily project with work spread over distinct days.
	if err := s.CreateProject(ctx, finance.Project{
		ID: "proj-audit", ClientID: "client-acme", Name: "Security Audit",
		Currency: "GBP", PricingType: finance.PricingDaily,
		DailyRate: dp("500"), EstimatedHours: dp("40"),
	}); err != nil {
		return err
	}
	auditTasks := []finance.Task{
		{ID: "task-recon", ProjectID: "proj-audit", Name: "Recon",
			Status: finance.TaskCompleted, WorkedHours: dp("6"),
			CompletedOn: timePtr(daysAgo(7))},
		{ID: "task-report", ProjectID: "proj-audit", Name: "Findings report",
			Status: finance.TaskCompleted, WorkedHours: dp("5"),
			CompletedOn: timePtr(daysAgo(5))},
	}
	for _, t := range auditTasks {
		if err := s.CreateTask(ctx, t); err != nil {
			return err
		}
	}

	taskAuth := finance.TaskID("task-auth")
	entries := []finance.HourEntry{
		{ID: "hrs-ident-1", ProjectID: "proj-brand", MilestoneRef: "ms-identity",
			Hours: finance.MustParseDecimal("6.5"), Billed: true, Date: daysAgo(12),
			Note: "logo exploration"},
		{ID: "hrs-ident-2", ProjectID: "proj-brand", MilestoneRef: "ms-identity",
			Hours: finance.MustParseDecimal("3"), Date: daysAgo(8)},
		{ID: "hrs-loose-1", ProjectID: "proj-brand",
			Hours: finance.MustParseDecimal("2"), Date: daysAgo(6),
			Note: "client call"},
		{ID: "hrs-auth-1", ProjectID: "proj-app", TaskID: &taskAuth,
			Hours: finance.MustParseDecimal("18"), Billed: true, Date: daysAgo(10)},
	}
	for _, e := range entries {
		if err := s.CreateHourEntry(ctx, e); err != nil {
			return err
		}
	}

	log.Info("demo data seeded",
		zap.Int("projects", 3),
		zap.Int("milestones", len(milestones)),
		zap.Int("tasks", len(appTasks)+len(auditTasks)),
	)
	return nil
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
