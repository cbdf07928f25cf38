package consolidation

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

func (s *ConsolidationEngineImpl) GetByID(ctx context.Context, id string) (consolidation.Consolidation, error) {
	if !validator.IsValidUUID(id) {
		return consolidation.Consolidation{}, validator.Single("id", "must be a valid UUID", id)
	}
	return s.consolidationRepo.GetByID(ctx, id)
}

func (s *ConsolidationEngineImpl) GetByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "must be a valid UUID", employeeID)
	}
	if !ym.Valid() {
		errs.Add("year_month", "must be a valid month", ym.String())
	}
	if err := errs.OrNil(); err != nil {
		return consolidation.Consolidation{}, err
	}
	return s.consolidationRepo.GetByEmployeeMonth(ctx, employeeID, ym)
}

func (s *ConsolidationEngineImpl) List(ctx context.Context, filter consolidation.ListFilter) ([]consolidation.Consolidation, int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, validator.Single("status", "must be one of: draft, validated, exported, archived", string(*filter.Status))
	}
	filter.Normalize()
	return s.consolidationRepo.List(ctx, filter)
}

// AuditTrail returns the entries of a consolidation, newest first.
func (s *ConsolidationEngineImpl) AuditTrail(ctx context.Context, id string) ([]audit.Entry, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByConsolidation(ctx, id)
}

// ExportRows projects the month's finalized consolidations, ordered by employee code.
func (s *ConsolidationEngineImpl) ExportRows(ctx context.Context, ym calendar.YearMonth) ([]consolidation.ExportRow, error) {
	if !ym.Valid() {
		return nil, validator.Single("year_month", "must be a valid month", ym.String())
	}

	filter := consolidation.ListFilter{YearMonth: &ym, Page: 1, Limit: 200}
	var all []consolidation.Consolidation
	for {
		page, total, err := s.consolidationRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
		filter.Page++
	}

	rows := []consolidation.ExportRow{}
	for _, c := range all {
		switch c.Status {
		case consolidation.StatusValidated, consolidation.StatusExported, consolidation.StatusArchived:
		default:
			continue
		}

		emp, err := s.employeeRepo.GetByID(ctx, c.EmployeeID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, consolidation.ExportRow{
			YearMonth:          c.YearMonth.String(),
			EmployeeID:         c.EmployeeID,
			EmployeeCode:       emp.EmployeeCode,
			FullName:           emp.FullName,
			Status:             c.Status,
			DaysWorked:         c.DaysWorkedTotal(),
			AbsenceDays:        c.AbsenceDaysTotal(),
			LeaveAccrued:       c.LeaveAccrued,
			LeaveConsumed:      c.LeaveConsumed,
			LeaveBalanceEnd:    c.LeaveBalanceEnd,
			VariableItemsTotal: c.VariableItemsTotal,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].EmployeeCode < rows[j].EmployeeCode })
	return rows, nil
}
