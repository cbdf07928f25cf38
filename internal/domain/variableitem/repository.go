package variableitem

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type VariableItemRepository interface {
	Create(ctx context.Context, item *VariableItem) error
	GetByID(ctx context.Context, id string) (VariableItem, error)
	Update(ctx context.Context, item *VariableItem) error
	Delete(ctx context.Context, id string) error
	ListByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) ([]VariableItem, error)
	ListByConsolidation(ctx context.Context, consolidationID string) ([]VariableItem, error)
	// LinkToConsolidation points every item of the employee's month at consolidationID.
	LinkToConsolidation(ctx context.Context, employeeID string, ym calendar.YearMonth, consolidationID string) error
}

// MonthGate tells whether the items of an employee's month may still be edited
// directly, i.e. the month has no consolidation or only a draft one.
type MonthGate interface {
	ItemsEditable(ctx context.Context, employeeID string, ym calendar.YearMonth) (bool, string, error)
	// ItemsChanged brings the month's draft consolidation back in line with its items.
	ItemsChanged(ctx context.Context, employeeID string, ym calendar.YearMonth, actor identity.Actor) error
}
