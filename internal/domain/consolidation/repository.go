package consolidation

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type ConsolidationRepository interface {
	// Create fails with a conflict when the (employee, month) already has a record.
	Create(ctx context.Context, c *Consolidation) error
	Update(ctx context.Context, c *Consolidation) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Consolidation, error)
	GetByIDForUpdate(ctx context.Context, id string) (Consolidation, error)
	GetByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) (Consolidation, error)
	GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, ym calendar.YearMonth) (Consolidation, error)
	List(ctx context.Context, filter ListFilter) ([]Consolidation, int, error)
}
