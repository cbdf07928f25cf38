package consolidation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	FieldDaysWorkedShifts   = "days_worked_shifts"
	FieldDaysWorkedEvents   = "days_worked_events"
	FieldAbsenceDaysByType  = "absence_days_by_type"
	FieldLeaveAccrued       = "leave_accrued"
	FieldLeaveConsumed      = "leave_consumed"
	FieldLeaveBalanceStart  = "leave_balance_start"
	FieldComment            = "comment"
	FieldLeaveOverride      = "leave_override"
	FieldLeaveBalanceEnd    = "leave_balance_end"
	FieldVariableItemsTotal = "variable_items_total"

	// VariableItemFieldPrefix prefixes the audit field of an item amount correction.
	VariableItemFieldPrefix = "variable_item:"
)

// DayPlaces is the precision worked and absence days are stored at.
const DayPlaces = 2

// CorrectableFields lists the fields CorrectField accepts.
func CorrectableFields() []string {
	return []string{
		FieldDaysWorkedShifts,
		FieldDaysWorkedEvents,
		FieldAbsenceDaysByType,
		FieldLeaveAccrued,
		FieldLeaveConsumed,
		FieldLeaveBalanceStart,
		FieldComment,
		FieldLeaveOverride,
	}
}

func isDerived(field string) bool {
	return field == FieldLeaveBalanceEnd || field == FieldVariableItemsTotal
}

// FieldValue returns the current value of a correctable field in the form it is audited.
func (c *Consolidation) FieldValue(field string) (interface{}, error) {
	switch field {
	case FieldDaysWorkedShifts:
		return c.DaysWorkedShifts, nil
	case FieldDaysWorkedEvents:
		return c.DaysWorkedEvents, nil
	case FieldAbsenceDaysByType:
		return cloneDays(c.AbsenceDaysByType), nil
	case FieldLeaveAccrued:
		return c.LeaveAccrued, nil
	case FieldLeaveConsumed:
		return c.LeaveConsumed, nil
	case FieldLeaveBalanceStart:
		return c.LeaveBalanceStart, nil
	case FieldComment:
		if c.Comment == nil {
			return "", nil
		}
		return *c.Comment, nil
	case FieldLeaveOverride:
		return c.LeaveOverride, nil
	case FieldLeaveBalanceEnd, FieldVariableItemsTotal:
		return nil, validator.Single("field", "is derived and cannot be corrected", field)
	default:
		return nil, validator.Single("field", "is not a correctable field", field)
	}
}

// SetField decodes raw for field and assigns it, returning the old and new values.
// It does not recompute totals.
func (c *Consolidation) SetField(field string, raw json.RawMessage) (oldValue, newValue interface{}, err error) {
	oldValue, err = c.FieldValue(field)
	if err != nil {
		return nil, nil, err
	}

	newValue, err = DecodeFieldValue(field, raw)
	if err != nil {
		return nil, nil, err
	}
	if sameValue(oldValue, newValue) {
		return nil, nil, validator.Single("value", "equals the current value", string(raw))
	}

	switch field {
	case FieldDaysWorkedShifts:
		c.DaysWorkedShifts = newValue.(decimal.Decimal)
	case FieldDaysWorkedEvents:
		c.DaysWorkedEvents = newValue.(decimal.Decimal)
	case FieldAbsenceDaysByType:
		c.AbsenceDaysByType = cloneDays(newValue.(map[string]decimal.Decimal))
	case FieldLeaveAccrued:
		c.LeaveAccrued = newValue.(decimal.Decimal)
	case FieldLeaveConsumed:
		c.LeaveConsumed = newValue.(decimal.Decimal)
	case FieldLeaveBalanceStart:
		c.LeaveBalanceStart = newValue.(decimal.Decimal)
	case FieldComment:
		s := newValue.(string)
		if s == "" {
			c.Comment = nil
		} else {
			c.Comment = &s
		}
	case FieldLeaveOverride:
		c.LeaveOverride = newValue.(bool)
	}
	return oldValue, newValue, nil
}

// DecodeFieldValue decodes an audited or submitted JSON value into the Go type of field.
func DecodeFieldValue(field string, raw json.RawMessage) (interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if field == FieldComment {
			return "", nil
		}
		return nil, validator.Single("value", "is required", field)
	}

	switch {
	case isDerived(field):
		return nil, validator.Single("field", "is derived and cannot be corrected", field)
	case strings.HasPrefix(field, VariableItemFieldPrefix):
		return decodeDecimal(raw, variableitem.AmountPlaces)
	}

	switch field {
	case FieldDaysWorkedShifts, FieldDaysWorkedEvents:
		return decodeDecimal(raw, DayPlaces)
	case FieldLeaveAccrued, FieldLeaveConsumed, FieldLeaveBalanceStart:
		return decodeDecimal(raw, counter.AccrualPlaces)
	case FieldAbsenceDaysByType:
		var days map[string]decimal.Decimal
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, validator.Single("value", "must be an object of absence code to days", string(raw))
		}
		if days == nil {
			days = map[string]decimal.Decimal{}
		}
		var errs validator.ValidationErrors
		for _, code := range sortedCodes(days) {
			errs.AddPlaces("value."+code, days[code], DayPlaces)
		}
		if err := errs.OrNil(); err != nil {
			return nil, err
		}
		return days, nil
	case FieldComment:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, validator.Single("value", "must be a string", string(raw))
		}
		return s, nil
	case FieldLeaveOverride:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, validator.Single("value", "must be a boolean", string(raw))
		}
		return b, nil
	default:
		return nil, validator.Single("field", "is not a correctable field", field)
	}
}

func decodeDecimal(raw json.RawMessage, places int32) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, validator.Single("value", "must be a decimal number", string(raw))
	}
	var errs validator.ValidationErrors
	errs.AddPlaces("value", d, places)
	if err := errs.OrNil(); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func sameValue(a, b interface{}) bool {
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case map[string]decimal.Decimal:
		bv, ok := b.(map[string]decimal.Decimal)
		return ok && sameDays(av, bv)
	default:
		return a == b
	}
}

func cloneDays(days map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(days))
	for k, v := range days {
		out[k] = v
	}
	return out
}
