package consolidation

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/config"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/absence"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/shopspring/decimal"
)

// NewRules translates a validated policy into engine rules.
func NewRules(p config.Policy, batchConcurrency int) Rules {
	types := make([]absence.Type, 0, len(p.AbsenceTypes))
	for _, t := range p.AbsenceTypes {
		typ := absence.Type{
			Code:                  t.Code,
			Label:                 t.Label,
			RequiresJustification: t.RequiresJustification,
		}
		if t.Counter != "none" {
			typ.Counter = counter.Kind(t.Counter)
		}
		types = append(types, typ)
	}

	return Rules{
		PaidLeaveRate:    decimal.NewFromFloat(p.PaidLeave.BaseMonthlyRate),
		PaidLeaveStart:   time.Month(p.PaidLeave.PeriodStartMonth),
		AnnualAllocation: decimal.NewFromFloat(p.Annual.AllocationDays),
		Absences:         absence.NewTable(types...),
		BatchConcurrency: batchConcurrency,
	}
}
