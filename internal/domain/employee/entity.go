package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

// Employee is the read-only directory view the ledger needs.
type Employee struct {
	ID              string
	EmployeeCode    string
	FullName        string
	HireDate        time.Time
	TerminationDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ActiveIn reports whether the employee was employed for at least one day of ym.
func (e Employee) ActiveIn(ym calendar.YearMonth) bool {
	if calendar.DateOnly(e.HireDate).After(ym.LastDay()) {
		return false
	}
	if e.TerminationDate != nil && calendar.DateOnly(*e.TerminationDate).Before(ym.FirstDay()) {
		return false
	}
	return true
}
