package consolidation

import "github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"

const Resource = "consolidation"

// Key formats the (employee, month) identity for error messages.
func Key(employeeID string, ym calendar.YearMonth) string {
	return employeeID + "/" + ym.String()
}
