package variableitem

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type VariableItemServiceImpl struct {
	tx           database.Transactor
	itemRepo     variableitem.VariableItemRepository
	employeeRepo employee.EmployeeRepository
	gate         variableitem.MonthGate
	now          func() time.Time
}

func NewVariableItemService(
	tx database.Transactor,
	itemRepo variableitem.VariableItemRepository,
	employeeRepo employee.EmployeeRepository,
	gate variableitem.MonthGate,
) variableitem.VariableItemService {
	return &VariableItemServiceImpl{
		tx:           tx,
		itemRepo:     itemRepo,
		employeeRepo: employeeRepo,
		gate:         gate,
		now:          time.Now,
	}
}

func (s *VariableItemServiceImpl) Create(ctx context.Context, req variableitem.CreateRequest, actor identity.Actor) (variableitem.VariableItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return variableitem.VariableItem{}, err
	}
	if err := req.Validate(); err != nil {
		return variableitem.VariableItem{}, err
	}
	ym, err := calendar.ParseYearMonth(req.YearMonth)
	if err != nil {
		return variableitem.VariableItem{}, validator.Single("year_month", err.Error(), req.YearMonth)
	}

	var item variableitem.VariableItem
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}
		if err := s.requireEditableMonth(ctx, req.EmployeeID, ym, "add variable item to"); err != nil {
			return err
		}

		now := s.now()
		item = variableitem.VariableItem{
			ID:          uuid.New().String(),
			EmployeeID:  req.EmployeeID,
			YearMonth:   ym,
			Category:    req.Category,
			Amount:      req.Amount,
			Label:       req.Label,
			Description: req.Description,
			Status:      variableitem.StatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.itemRepo.Create(ctx, &item); err != nil {
			return err
		}
		return s.gate.ItemsChanged(ctx, item.EmployeeID, item.YearMonth, actor)
	})
	if err != nil {
		return variableitem.VariableItem{}, err
	}

	slog.Info("Variable item created",
		"item_id", item.ID,
		"employee_id", item.EmployeeID,
		"year_month", item.YearMonth.String(),
		"category", item.Category,
		"amount", item.Amount.String(),
		"actor_id", actor.ID,
	)
	return item, nil
}

func (s *VariableItemServiceImpl) Update(ctx context.Context, req variableitem.UpdateRequest, actor identity.Actor) (variableitem.VariableItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return variableitem.VariableItem{}, err
	}
	if err := req.Validate(); err != nil {
		return variableitem.VariableItem{}, err
	}

	var item variableitem.VariableItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.loadEditable(ctx, req.ID, "update")
		if err != nil {
			return err
		}

		if req.Category != nil {
			item.Category = *req.Category
		}
		if req.Amount != nil {
			item.Amount = *req.Amount
		}
		if req.Label != nil {
			item.Label = *req.Label
		}
		if req.Description != nil {
			item.Description = req.Description
		}
		item.UpdatedAt = s.now()

		if err := s.itemRepo.Update(ctx, &item); err != nil {
			return err
		}
		return s.gate.ItemsChanged(ctx, item.EmployeeID, item.YearMonth, actor)
	})
	if err != nil {
		return variableitem.VariableItem{}, err
	}
	return item, nil
}

func (s *VariableItemServiceImpl) Delete(ctx context.Context, id string, actor identity.Actor) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return validator.Single("id", "must be a valid UUID", id)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.loadEditable(ctx, id, "delete")
		if err != nil {
			return err
		}
		if err := s.itemRepo.Delete(ctx, id); err != nil {
			return err
		}
		return s.gate.ItemsChanged(ctx, item.EmployeeID, item.YearMonth, actor)
	})
	if err != nil {
		return err
	}

	slog.Info("Variable item deleted", "item_id", id, "actor_id", actor.ID)
	return nil
}

// Validate approves a draft item. Approved items are frozen outside administrative correction.
func (s *VariableItemServiceImpl) Validate(ctx context.Context, id string, actor identity.Actor) (variableitem.VariableItem, error) {
	if err := actor.RequireAdmin(); err != nil {
		return variableitem.VariableItem{}, err
	}
	if !validator.IsValidUUID(id) {
		return variableitem.VariableItem{}, validator.Single("id", "must be a valid UUID", id)
	}

	var item variableitem.VariableItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.loadEditable(ctx, id, "validate")
		if err != nil {
			return err
		}

		now := s.now()
		actorID := actor.ID
		item.Status = variableitem.StatusValidated
		item.ValidatedBy = &actorID
		item.ValidatedAt = &now
		item.UpdatedAt = now

		if err := s.itemRepo.Update(ctx, &item); err != nil {
			return err
		}
		return s.gate.ItemsChanged(ctx, item.EmployeeID, item.YearMonth, actor)
	})
	if err != nil {
		return variableitem.VariableItem{}, err
	}

	slog.Info("Variable item validated", "item_id", id, "actor_id", actor.ID)
	return item, nil
}

func (s *VariableItemServiceImpl) GetByID(ctx context.Context, id string) (variableitem.VariableItem, error) {
	if !validator.IsValidUUID(id) {
		return variableitem.VariableItem{}, validator.Single("id", "must be a valid UUID", id)
	}
	return s.itemRepo.GetByID(ctx, id)
}

func (s *VariableItemServiceImpl) List(ctx context.Context, filter variableitem.ListFilter) ([]variableitem.VariableItem, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(filter.EmployeeID) {
		errs.Add("employee_id", "is required", filter.EmployeeID)
	}
	if !filter.YearMonth.Valid() {
		errs.Add("year_month", "is required", filter.YearMonth.String())
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByEmployeeMonth(ctx, filter.EmployeeID, filter.YearMonth)
}

// loadEditable returns a draft item whose month is still open for direct edits.
func (s *VariableItemServiceImpl) loadEditable(ctx context.Context, id, operation string) (variableitem.VariableItem, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return variableitem.VariableItem{}, err
	}
	if item.Status != variableitem.StatusDraft {
		return variableitem.VariableItem{}, apperr.InvalidState(variableitem.Resource, item.ID, operation,
			string(item.Status), string(variableitem.StatusDraft))
	}
	if err := s.requireEditableMonth(ctx, item.EmployeeID, item.YearMonth, operation+" variable item of"); err != nil {
		return variableitem.VariableItem{}, err
	}
	return item, nil
}

func (s *VariableItemServiceImpl) requireEditableMonth(ctx context.Context, employeeID string, ym calendar.YearMonth, operation string) error {
	editable, status, err := s.gate.ItemsEditable(ctx, employeeID, ym)
	if err != nil {
		return err
	}
	if !editable {
		return apperr.InvalidState("consolidation", employeeID+"/"+ym.String(), operation, status, "draft")
	}
	return nil
}
