package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

// SchedulerActor is stamped into the audit trail of scheduled consolidations.
var SchedulerActor = identity.Actor{ID: "scheduler", Name: "Scheduled refresh", Role: identity.RoleAdmin}

// LedgerJobs keeps the drafts of the running month in step with the collaborator facts.
type LedgerJobs struct {
	engine   consolidation.Engine
	interval time.Duration
	now      func() time.Time
}

func NewLedgerJobs(engine consolidation.Engine, interval time.Duration) *LedgerJobs {
	return &LedgerJobs{
		engine:   engine,
		interval: interval,
		now:      time.Now,
	}
}

// RegisterJobs adds the refresh job; a non-positive interval disables it.
func (j *LedgerJobs) RegisterJobs(scheduler *Scheduler) {
	if j.interval <= 0 {
		slog.Info("Cron: Open month refresh disabled")
		return
	}
	scheduler.AddJob("refresh_open_month", j.interval, j.RefreshOpenMonth)
}

// RefreshOpenMonth consolidates the current month for every active employee.
// Validated records are skipped by the engine, drafts are refreshed in place.
func (j *LedgerJobs) RefreshOpenMonth(ctx context.Context) error {
	ym := calendar.Of(j.now())

	result, err := j.engine.ConsolidateMonth(ctx, consolidation.ConsolidateMonthRequest{YearMonth: ym.String()}, SchedulerActor)
	if err != nil {
		return fmt.Errorf("consolidate %s: %w", ym, err)
	}
	if failed := result.Count(consolidation.OutcomeFailed); failed > 0 {
		return fmt.Errorf("consolidate %s: %d employee(s) failed", ym, failed)
	}
	return nil
}
