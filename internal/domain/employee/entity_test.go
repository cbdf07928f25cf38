package employee

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/stretchr/testify/assert"
)

func TestEmployeeActiveIn(t *testing.T) {
	june := calendar.NewYearMonth(2025, time.June)
	terminated := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	leavesInJune := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		emp  Employee
		want bool
	}{
		{"hired long before", Employee{HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"hired last day", Employee{HireDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)}, true},
		{"hired next month", Employee{HireDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}, false},
		{"terminated before", Employee{HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), TerminationDate: &terminated}, false},
		{"terminated first day", Employee{HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), TerminationDate: &leavesInJune}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.emp.ActiveIn(june))
		})
	}
}
