package employee

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *Employee) error
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListActive returns employees employed during ym, ordered by employee code.
	ListActive(ctx context.Context, ym calendar.YearMonth) ([]Employee, error)
}
