package consolidation

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// RecordFactsRequest carries the worked-day and absence facts of one employee month.
type RecordFactsRequest struct {
	EmployeeID  string                     `json:"-"`
	YearMonth   string                     `json:"-"`
	ShiftDays   decimal.Decimal            `json:"shift_days"`
	EventDays   decimal.Decimal            `json:"event_days"`
	AbsenceDays map[string]decimal.Decimal `json:"absence_days"`
}

func (r *RecordFactsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "must be a valid UUID", r.EmployeeID)
	}
	if _, err := calendar.ParseYearMonth(r.YearMonth); err != nil {
		errs.Add("year_month", "must be in YYYY-MM format", r.YearMonth)
	}
	if r.ShiftDays.IsNegative() {
		errs.Add("shift_days", "must not be negative", r.ShiftDays.String())
	}
	errs.AddPlaces("shift_days", r.ShiftDays, DayPlaces)
	if r.EventDays.IsNegative() {
		errs.Add("event_days", "must not be negative", r.EventDays.String())
	}
	errs.AddPlaces("event_days", r.EventDays, DayPlaces)
	for _, code := range sortedCodes(r.AbsenceDays) {
		if validator.IsEmpty(code) {
			errs.Add("absence_days", "codes must not be empty", code)
			continue
		}
		if r.AbsenceDays[code].IsNegative() {
			errs.Add("absence_days."+code, "must not be negative", r.AbsenceDays[code].String())
		}
		errs.AddPlaces("absence_days."+code, r.AbsenceDays[code], DayPlaces)
	}

	return errs.OrNil()
}

func (r *RecordFactsRequest) Month() calendar.YearMonth {
	ym, _ := calendar.ParseYearMonth(r.YearMonth)
	return ym
}

type FactsResponse struct {
	EmployeeID  string                     `json:"employee_id"`
	YearMonth   string                     `json:"year_month"`
	ShiftDays   decimal.Decimal            `json:"shift_days"`
	EventDays   decimal.Decimal            `json:"event_days"`
	AbsenceDays map[string]decimal.Decimal `json:"absence_days"`
}

// FactsRepository reads and records collaborator facts.
type FactsRepository interface {
	AttendanceFacts
	AbsenceFacts
	FactsRecorder
}

// FactsService ingests collaborator facts on behalf of an administrator.
type FactsService interface {
	Record(ctx context.Context, req RecordFactsRequest, actor identity.Actor) (FactsResponse, error)
	Get(ctx context.Context, employeeID string, ym calendar.YearMonth) (FactsResponse, error)
}

func sortedCodes(days map[string]decimal.Decimal) []string {
	codes := make([]string, 0, len(days))
	for code := range days {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
