package counter

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// AccrualPlaces is the precision counter days are stored at; accruals are rounded to it.
const AccrualPlaces = 4

// Prorata is the fraction of ym covered from hireDate (inclusive), clamped to [0, 1].
func Prorata(hireDate time.Time, ym calendar.YearMonth) decimal.Decimal {
	remaining, days := coveredDays(hireDate, ym)
	return decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(days)))
}

// MonthlyAccrual is baseRate × prorata, rounded to AccrualPlaces.
func MonthlyAccrual(baseRate decimal.Decimal, hireDate time.Time, ym calendar.YearMonth) decimal.Decimal {
	remaining, days := coveredDays(hireDate, ym)
	return baseRate.Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(days))).
		Round(AccrualPlaces)
}

func coveredDays(hireDate time.Time, ym calendar.YearMonth) (remaining, days int) {
	days = ym.DaysInMonth()
	hire := calendar.DateOnly(hireDate)

	switch {
	case hire.After(ym.LastDay()):
		return 0, days
	case !hire.After(ym.FirstDay()):
		return days, days
	default:
		return days - hire.Day() + 1, days
	}
}
