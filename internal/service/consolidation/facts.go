package consolidation

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type FactsServiceImpl struct {
	tx           database.Transactor
	factsRepo    consolidation.FactsRepository
	employeeRepo employee.EmployeeRepository
}

func NewFactsService(tx database.Transactor, factsRepo consolidation.FactsRepository, employeeRepo employee.EmployeeRepository) consolidation.FactsService {
	return &FactsServiceImpl{
		tx:           tx,
		factsRepo:    factsRepo,
		employeeRepo: employeeRepo,
	}
}

// Record upserts the worked days and replaces the absence days of the month.
// Consolidations pick the new facts up on their next refresh.
func (s *FactsServiceImpl) Record(ctx context.Context, req consolidation.RecordFactsRequest, actor identity.Actor) (consolidation.FactsResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.FactsResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.FactsResponse{}, err
	}
	ym := req.Month()

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}
		worked := consolidation.WorkedDays{ShiftDays: req.ShiftDays, EventDays: req.EventDays}
		if err := s.factsRepo.RecordWorkedDays(ctx, req.EmployeeID, ym, worked); err != nil {
			return err
		}
		return s.factsRepo.RecordAbsenceDays(ctx, req.EmployeeID, ym, req.AbsenceDays)
	})
	if err != nil {
		return consolidation.FactsResponse{}, err
	}

	slog.Info("Facts recorded",
		"employee_id", req.EmployeeID,
		"year_month", ym.String(),
		"actor_id", actor.ID,
	)
	return s.Get(ctx, req.EmployeeID, ym)
}

func (s *FactsServiceImpl) Get(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.FactsResponse, error) {
	if !validator.IsValidUUID(employeeID) {
		return consolidation.FactsResponse{}, validator.Single("employee_id", "must be a valid UUID", employeeID)
	}

	worked, err := s.factsRepo.WorkedDays(ctx, employeeID, ym)
	if err != nil {
		return consolidation.FactsResponse{}, err
	}
	days, err := s.factsRepo.AbsenceDays(ctx, employeeID, ym)
	if err != nil {
		return consolidation.FactsResponse{}, err
	}
	if days == nil {
		days = map[string]decimal.Decimal{}
	}

	return consolidation.FactsResponse{
		EmployeeID:  employeeID,
		YearMonth:   ym.String(),
		ShiftDays:   worked.ShiftDays,
		EventDays:   worked.EventDays,
		AbsenceDays: days,
	}, nil
}
