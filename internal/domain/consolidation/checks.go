package consolidation

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/absence"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

// Problems runs the pre-validation pass and reports every failed precondition
// as its own message. An empty result means the record may be validated.
func (c Consolidation) Problems(linked []variableitem.VariableItem, absences *absence.Table) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if c.DaysWorkedTotal().IsNegative() {
		errs.Add("days_worked", fmt.Sprintf("worked days total %s is negative", c.DaysWorkedTotal()), c.DaysWorkedTotal().String())
	}

	codes := make([]string, 0, len(c.AbsenceDaysByType))
	for code := range c.AbsenceDaysByType {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		days := c.AbsenceDaysByType[code]
		if days.IsNegative() {
			errs.Add(FieldAbsenceDaysByType, fmt.Sprintf("absence days for %q are negative", code), days.String())
			continue
		}
		if absences == nil || !days.IsPositive() {
			continue
		}
		if typ, ok := absences.Lookup(code); ok && typ.RequiresJustification && (c.Comment == nil || validator.IsEmpty(*c.Comment)) {
			errs.Add(FieldComment, fmt.Sprintf("absence type %q requires a justification comment", code), nil)
		}
	}

	if c.LeaveBalanceEnd.IsNegative() && !c.LeaveOverride {
		errs.Add(FieldLeaveBalanceEnd, fmt.Sprintf("leave balance end %s is negative and no override was given", c.LeaveBalanceEnd), c.LeaveBalanceEnd.String())
	}

	for _, it := range linked {
		if it.Status != variableitem.StatusValidated {
			errs.Add("variable_items", fmt.Sprintf("variable item %s (%s) is not validated", it.ID, it.Label), it.ID)
		}
	}

	return errs
}
