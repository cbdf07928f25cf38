package consolidation

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMMAND DTOs ==========

type ConsolidateRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	YearMonth  string `json:"year_month" validate:"required,datetime=2006-01"`
}

func (r *ConsolidateRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

func (r *ConsolidateRequest) Month() calendar.YearMonth {
	ym, _ := calendar.ParseYearMonth(r.YearMonth)
	return ym
}

type ConsolidateMonthRequest struct {
	YearMonth string `json:"year_month" validate:"required,datetime=2006-01"`
}

func (r *ConsolidateMonthRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type ValidateRequest struct {
	ID string `json:"-"`
	// Override accepts a negative leave balance end.
	Override bool `json:"override"`
}

func (r *ValidateRequest) Validate() error {
	return validateID(r.ID)
}

type ReopenRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *ReopenRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "must be a valid UUID", r.ID)
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "is required", r.Reason)
	}

	return errs.OrNil()
}

type CorrectFieldRequest struct {
	ID      string          `json:"-"`
	Field   string          `json:"field"`
	Value   json.RawMessage `json:"value"`
	Comment string          `json:"comment"`
}

func (r *CorrectFieldRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "must be a valid UUID", r.ID)
	}
	if validator.IsEmpty(r.Field) {
		errs.Add("field", "is required", r.Field)
	} else if !validator.IsInSlice(r.Field, CorrectableFields()) {
		if isDerived(r.Field) {
			errs.Add("field", "is derived and cannot be corrected", r.Field)
		} else {
			errs.Add("field", "is not a correctable field", r.Field)
		}
	}
	if validator.IsEmpty(r.Comment) {
		errs.Add("comment", "is required", r.Comment)
	}

	return errs.OrNil()
}

type CorrectVariableItemRequest struct {
	ID      string          `json:"-"`
	ItemID  string          `json:"-"`
	Amount  decimal.Decimal `json:"amount"`
	Comment string          `json:"comment"`
}

func (r *CorrectVariableItemRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "must be a valid UUID", r.ID)
	}
	if !validator.IsValidUUID(r.ItemID) {
		errs.Add("item_id", "must be a valid UUID", r.ItemID)
	}
	if r.Amount.IsZero() {
		errs.Add("amount", "must not be zero", r.Amount.String())
	}
	errs.AddPlaces("amount", r.Amount, variableitem.AmountPlaces)
	if validator.IsEmpty(r.Comment) {
		errs.Add("comment", "is required", r.Comment)
	}

	return errs.OrNil()
}

func validateID(id string) error {
	if !validator.IsValidUUID(id) {
		return validator.Single("id", "must be a valid UUID", id)
	}
	return nil
}

// ========== QUERY DTOs ==========

type ListFilter struct {
	YearMonth  *calendar.YearMonth
	Status     *Status
	EmployeeID *string
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches applies the filter to one record.
func (f ListFilter) Matches(c Consolidation) bool {
	if f.YearMonth != nil && c.YearMonth != *f.YearMonth {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.EmployeeID != nil && c.EmployeeID != *f.EmployeeID {
		return false
	}
	return true
}

// ========== RESULT DTOs ==========

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeRefreshed Outcome = "refreshed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

type ConsolidateResult struct {
	Consolidation Consolidation
	Outcome       Outcome
}

type EmployeeOutcome struct {
	EmployeeID      string  `json:"employee_id"`
	ConsolidationID string  `json:"consolidation_id,omitempty"`
	Outcome         Outcome `json:"outcome"`
	Error           string  `json:"error,omitempty"`
}

type BatchResult struct {
	YearMonth string            `json:"year_month"`
	Outcomes  []EmployeeOutcome `json:"outcomes"`
}

// Count returns how many employees ended with outcome o.
func (b BatchResult) Count(o Outcome) int {
	n := 0
	for _, eo := range b.Outcomes {
		if eo.Outcome == o {
			n++
		}
	}
	return n
}

// ExportRow is the read-only tabular projection handed to export renderers.
type ExportRow struct {
	YearMonth          string          `json:"year_month"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeCode       string          `json:"employee_code"`
	FullName           string          `json:"full_name"`
	Status             Status          `json:"status"`
	DaysWorked         decimal.Decimal `json:"days_worked"`
	AbsenceDays        decimal.Decimal `json:"absence_days"`
	LeaveAccrued       decimal.Decimal `json:"leave_accrued"`
	LeaveConsumed      decimal.Decimal `json:"leave_consumed"`
	LeaveBalanceEnd    decimal.Decimal `json:"leave_balance_end"`
	VariableItemsTotal decimal.Decimal `json:"variable_items_total"`
}

// ========== RESPONSE DTOs ==========

type ConsolidationResponse struct {
	ID                 string                     `json:"id"`
	EmployeeID         string                     `json:"employee_id"`
	YearMonth          string                     `json:"year_month"`
	Status             Status                     `json:"status"`
	DaysWorkedShifts   decimal.Decimal            `json:"days_worked_shifts"`
	DaysWorkedEvents   decimal.Decimal            `json:"days_worked_events"`
	DaysWorkedTotal    decimal.Decimal            `json:"days_worked_total"`
	AbsenceDaysByType  map[string]decimal.Decimal `json:"absence_days_by_type"`
	LeaveAccrued       decimal.Decimal            `json:"leave_accrued"`
	LeaveConsumed      decimal.Decimal            `json:"leave_consumed"`
	LeaveBalanceStart  decimal.Decimal            `json:"leave_balance_start"`
	LeaveBalanceEnd    decimal.Decimal            `json:"leave_balance_end"`
	VariableItemsTotal decimal.Decimal            `json:"variable_items_total"`
	LeaveOverride      bool                       `json:"leave_override"`
	Comment            *string                    `json:"comment,omitempty"`
	ValidatedBy        *string                    `json:"validated_by,omitempty"`
	ValidatedAt        *time.Time                 `json:"validated_at,omitempty"`
	ExportedAt         *time.Time                 `json:"exported_at,omitempty"`
	SentToAccountantAt *time.Time                 `json:"sent_to_accountant_at,omitempty"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

func NewResponse(c Consolidation) ConsolidationResponse {
	days := c.AbsenceDaysByType
	if days == nil {
		days = map[string]decimal.Decimal{}
	}
	return ConsolidationResponse{
		ID:                 c.ID,
		EmployeeID:         c.EmployeeID,
		YearMonth:          c.YearMonth.String(),
		Status:             c.Status,
		DaysWorkedShifts:   c.DaysWorkedShifts,
		DaysWorkedEvents:   c.DaysWorkedEvents,
		DaysWorkedTotal:    c.DaysWorkedTotal(),
		AbsenceDaysByType:  days,
		LeaveAccrued:       c.LeaveAccrued,
		LeaveConsumed:      c.LeaveConsumed,
		LeaveBalanceStart:  c.LeaveBalanceStart,
		LeaveBalanceEnd:    c.LeaveBalanceEnd,
		VariableItemsTotal: c.VariableItemsTotal,
		LeaveOverride:      c.LeaveOverride,
		Comment:            c.Comment,
		ValidatedBy:        c.ValidatedBy,
		ValidatedAt:        c.ValidatedAt,
		ExportedAt:         c.ExportedAt,
		SentToAccountantAt: c.SentToAccountantAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type ConsolidationListResponse struct {
	Consolidations []ConsolidationResponse `json:"consolidations"`
	Total          int                     `json:"total"`
	Page           int                     `json:"page"`
	Limit          int                     `json:"limit"`
}
