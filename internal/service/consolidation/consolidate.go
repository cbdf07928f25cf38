package consolidation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Consolidate creates the employee's consolidation for the month or refreshes a
// draft one. Leave movements are reconciled per source month, so running it
// again with unchanged facts changes nothing.
func (s *ConsolidationEngineImpl) Consolidate(ctx context.Context, req consolidation.ConsolidateRequest, actor identity.Actor) (consolidation.ConsolidateResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	ym := req.Month()

	var result consolidation.ConsolidateResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.consolidate(ctx, req.EmployeeID, ym, actor)
		return err
	})
	if err != nil {
		return consolidation.ConsolidateResult{}, err
	}

	c := result.Consolidation
	slog.Info("Consolidation computed",
		"consolidation_id", c.ID,
		"employee_id", c.EmployeeID,
		"year_month", ym.String(),
		"outcome", result.Outcome,
		"leave_balance_end", c.LeaveBalanceEnd.String(),
		"actor_id", actor.ID,
	)
	return result, nil
}

func (s *ConsolidationEngineImpl) consolidate(ctx context.Context, employeeID string, ym calendar.YearMonth, actor identity.Actor) (consolidation.ConsolidateResult, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	if !emp.ActiveIn(ym) {
		return consolidation.ConsolidateResult{}, validator.Single("employee_id", "is not employed in "+ym.String(), employeeID)
	}

	existing, err := s.consolidationRepo.GetByEmployeeMonthForUpdate(ctx, employeeID, ym)
	found := err == nil
	if err != nil && !apperr.IsNotFound(err) {
		return consolidation.ConsolidateResult{}, err
	}
	if found {
		if err := existing.CanRefresh(); err != nil {
			return consolidation.ConsolidateResult{}, err
		}
	}

	now := s.now()
	var c consolidation.Consolidation
	if found {
		c = existing.Clone()
	} else {
		c = consolidation.Consolidation{
			ID:         uuid.New().String(),
			EmployeeID: employeeID,
			YearMonth:  ym,
			Status:     consolidation.StatusDraft,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	if err := s.applyFacts(ctx, &c, emp); err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	if err := s.applyLeave(ctx, &c, emp); err != nil {
		return consolidation.ConsolidateResult{}, err
	}

	if !found {
		// Items reference the row, so it must exist before they are linked.
		items, err := s.itemRepo.ListByEmployeeMonth(ctx, employeeID, ym)
		if err != nil {
			return consolidation.ConsolidateResult{}, err
		}
		c.RecomputeTotals(items)
		if err := s.consolidationRepo.Create(ctx, &c); err != nil {
			return consolidation.ConsolidateResult{}, err
		}
		if _, err := s.linkedItems(ctx, c); err != nil {
			return consolidation.ConsolidateResult{}, err
		}
		if err := s.appendAudit(ctx, c, audit.ActionCreated, actor, now); err != nil {
			return consolidation.ConsolidateResult{}, err
		}
		return consolidation.ConsolidateResult{Consolidation: c, Outcome: consolidation.OutcomeCreated}, nil
	}

	items, err := s.linkedItems(ctx, c)
	if err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	c.RecomputeTotals(items)

	if consolidation.SameFigures(existing, c) {
		return consolidation.ConsolidateResult{Consolidation: existing, Outcome: consolidation.OutcomeUnchanged}, nil
	}

	c.TouchUpdatedAt(now)
	if err := s.consolidationRepo.Update(ctx, &c); err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	if err := s.appendAudit(ctx, c, audit.ActionRefreshed, actor, now); err != nil {
		return consolidation.ConsolidateResult{}, err
	}
	return consolidation.ConsolidateResult{Consolidation: c, Outcome: consolidation.OutcomeRefreshed}, nil
}

// applyFacts copies worked and absence days from the collaborators.
func (s *ConsolidationEngineImpl) applyFacts(ctx context.Context, c *consolidation.Consolidation, emp employee.Employee) error {
	worked, err := s.attendance.WorkedDays(ctx, emp.ID, c.YearMonth)
	if err != nil {
		return fmt.Errorf("failed to read worked days: %w", err)
	}
	days, err := s.absences.AbsenceDays(ctx, emp.ID, c.YearMonth)
	if err != nil {
		return fmt.Errorf("failed to read absence days: %w", err)
	}

	c.DaysWorkedShifts = worked.ShiftDays
	c.DaysWorkedEvents = worked.EventDays
	c.AbsenceDaysByType = make(map[string]decimal.Decimal, len(days))
	for code, d := range days {
		c.AbsenceDaysByType[code] = d
	}
	return nil
}

// applyLeave reconciles the month's postings on both counters and snapshots the
// paid-leave figures into c.
func (s *ConsolidationEngineImpl) applyLeave(ctx context.Context, c *consolidation.Consolidation, emp employee.Employee) error {
	ym := c.YearMonth
	source := ym.String()

	deductions, unknown := s.rules.Absences.Deductions(c.AbsenceDaysByType)
	if len(unknown) > 0 {
		slog.Warn("Unknown absence types deduct nothing",
			"employee_id", emp.ID,
			"year_month", source,
			"codes", unknown,
		)
	}

	// Carry-overs run on every pass: an earlier period consolidated late
	// changes the balance this one opens with.
	annualKey := counter.KindAnnual.PeriodFor(ym, s.rules.PaidLeaveStart).Key()
	if _, err := s.counters.CarryOver(ctx, emp.ID, counter.KindAnnual, annualKey); err != nil {
		return fmt.Errorf("failed to carry over annual balance: %w", err)
	}
	if _, err := s.counters.Reconcile(ctx, emp.ID, counter.KindAnnual, annualKey,
		counter.MovementAccrual, counter.SourceAllocation, s.rules.AnnualAllocation); err != nil {
		return fmt.Errorf("failed to post annual allocation: %w", err)
	}
	if _, err := s.counters.Reconcile(ctx, emp.ID, counter.KindAnnual, annualKey,
		counter.MovementConsumption, source, deductions[counter.KindAnnual]); err != nil {
		return fmt.Errorf("failed to post annual consumption: %w", err)
	}

	paidKey := counter.KindPaidLeave.PeriodFor(ym, s.rules.PaidLeaveStart).Key()
	paid, err := s.counters.CarryOver(ctx, emp.ID, counter.KindPaidLeave, paidKey)
	if err != nil {
		return fmt.Errorf("failed to carry over paid leave balance: %w", err)
	}
	posted, err := s.counters.NetSince(ctx, paid.ID, ym)
	if err != nil {
		return err
	}
	start := paid.CurrentBalance().Sub(posted)

	accrued := counter.MonthlyAccrual(s.rules.PaidLeaveRate, emp.HireDate, ym)
	consumed := deductions[counter.KindPaidLeave]

	if _, err := s.counters.Reconcile(ctx, emp.ID, counter.KindPaidLeave, paidKey,
		counter.MovementAccrual, source, accrued); err != nil {
		return fmt.Errorf("failed to post paid leave accrual: %w", err)
	}
	if _, err := s.counters.Reconcile(ctx, emp.ID, counter.KindPaidLeave, paidKey,
		counter.MovementConsumption, source, consumed); err != nil {
		return fmt.Errorf("failed to post paid leave consumption: %w", err)
	}

	c.LeaveBalanceStart = start
	c.LeaveAccrued = accrued
	c.LeaveConsumed = consumed
	return nil
}

// ConsolidateMonth consolidates every employee active in the month. One
// employee's failure does not stop the others; it is reported in its outcome.
func (s *ConsolidationEngineImpl) ConsolidateMonth(ctx context.Context, req consolidation.ConsolidateMonthRequest, actor identity.Actor) (consolidation.BatchResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.BatchResult{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.BatchResult{}, err
	}
	ym, _ := calendar.ParseYearMonth(req.YearMonth)

	employees, err := s.employeeRepo.ListActive(ctx, ym)
	if err != nil {
		return consolidation.BatchResult{}, err
	}

	outcomes := make([]consolidation.EmployeeOutcome, len(employees))
	var g errgroup.Group
	g.SetLimit(s.rules.BatchConcurrency)

	for i, emp := range employees {
		i, emp := i, emp // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			res, err := s.Consolidate(ctx, consolidation.ConsolidateRequest{
				EmployeeID: emp.ID,
				YearMonth:  ym.String(),
			}, actor)
			outcomes[i] = outcomeOf(emp.ID, res, err)
			return nil
		})
	}
	_ = g.Wait()

	result := consolidation.BatchResult{YearMonth: ym.String(), Outcomes: outcomes}
	slog.Info("Month consolidated",
		"year_month", ym.String(),
		"employees", len(employees),
		"created", result.Count(consolidation.OutcomeCreated),
		"refreshed", result.Count(consolidation.OutcomeRefreshed),
		"skipped", result.Count(consolidation.OutcomeSkipped),
		"failed", result.Count(consolidation.OutcomeFailed),
		"actor_id", actor.ID,
	)
	return result, nil
}

func outcomeOf(employeeID string, res consolidation.ConsolidateResult, err error) consolidation.EmployeeOutcome {
	switch {
	case err == nil:
		return consolidation.EmployeeOutcome{
			EmployeeID:      employeeID,
			ConsolidationID: res.Consolidation.ID,
			Outcome:         res.Outcome,
		}
	case apperr.IsInvalidState(err):
		return consolidation.EmployeeOutcome{EmployeeID: employeeID, Outcome: consolidation.OutcomeSkipped, Error: err.Error()}
	default:
		slog.Error("Failed to consolidate employee", "employee_id", employeeID, "error", err)
		return consolidation.EmployeeOutcome{EmployeeID: employeeID, Outcome: consolidation.OutcomeFailed, Error: err.Error()}
	}
}
