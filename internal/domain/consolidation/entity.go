package consolidation

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
	StatusExported  Status = "exported"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusValidated, StatusExported, StatusArchived:
		return true
	}
	return false
}

// Consolidation is the monthly aggregate of one employee. Leave figures are a
// point-in-time snapshot of the paid-leave counter, not a live view.
type Consolidation struct {
	ID         string
	EmployeeID string
	YearMonth  calendar.YearMonth
	Status     Status

	DaysWorkedShifts  decimal.Decimal
	DaysWorkedEvents  decimal.Decimal
	AbsenceDaysByType map[string]decimal.Decimal

	LeaveAccrued      decimal.Decimal
	LeaveConsumed     decimal.Decimal
	LeaveBalanceStart decimal.Decimal
	LeaveBalanceEnd   decimal.Decimal

	VariableItemsTotal decimal.Decimal

	LeaveOverride bool
	Comment       *string

	ValidatedBy        *string
	ValidatedAt        *time.Time
	ExportedAt         *time.Time
	SentToAccountantAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Consolidation) DaysWorkedTotal() decimal.Decimal {
	return c.DaysWorkedShifts.Add(c.DaysWorkedEvents)
}

func (c Consolidation) AbsenceDaysTotal() decimal.Decimal {
	total := decimal.Zero
	for _, days := range c.AbsenceDaysByType {
		total = total.Add(days)
	}
	return total
}

// RecomputeBalance derives LeaveBalanceEnd; stored values are never trusted.
func (c *Consolidation) RecomputeBalance() {
	c.LeaveBalanceEnd = c.LeaveBalanceStart.Add(c.LeaveAccrued).Sub(c.LeaveConsumed)
}

// RecomputeTotals derives every total from the fields and the linked items.
// The engine calls it after any change to the record or its items.
func (c *Consolidation) RecomputeTotals(linked []variableitem.VariableItem) {
	c.RecomputeBalance()
	c.VariableItemsTotal = variableitem.Total(linked)
}

func (c *Consolidation) TouchUpdatedAt(now time.Time) {
	c.UpdatedAt = now
}

// Clone returns a deep copy.
func (c Consolidation) Clone() Consolidation {
	out := c
	if c.AbsenceDaysByType != nil {
		out.AbsenceDaysByType = make(map[string]decimal.Decimal, len(c.AbsenceDaysByType))
		for k, v := range c.AbsenceDaysByType {
			out.AbsenceDaysByType[k] = v
		}
	}
	out.Comment = cloneString(c.Comment)
	out.ValidatedBy = cloneString(c.ValidatedBy)
	out.ValidatedAt = cloneTime(c.ValidatedAt)
	out.ExportedAt = cloneTime(c.ExportedAt)
	out.SentToAccountantAt = cloneTime(c.SentToAccountantAt)
	return out
}

// SameFigures reports whether every computed figure of a and b is equal.
func SameFigures(a, b Consolidation) bool {
	pairs := [][2]decimal.Decimal{
		{a.DaysWorkedShifts, b.DaysWorkedShifts},
		{a.DaysWorkedEvents, b.DaysWorkedEvents},
		{a.LeaveAccrued, b.LeaveAccrued},
		{a.LeaveConsumed, b.LeaveConsumed},
		{a.LeaveBalanceStart, b.LeaveBalanceStart},
		{a.LeaveBalanceEnd, b.LeaveBalanceEnd},
		{a.VariableItemsTotal, b.VariableItemsTotal},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}
	return sameDays(a.AbsenceDaysByType, b.AbsenceDaysByType)
}

func sameDays(a, b map[string]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || !v.Equal(other) {
			return false
		}
	}
	return true
}

// ========== STATE MACHINE ==========

func (c *Consolidation) requireStatus(operation string, allowed ...Status) error {
	for _, s := range allowed {
		if c.Status == s {
			return nil
		}
	}
	required := make([]string, len(allowed))
	for i, s := range allowed {
		required[i] = string(s)
	}
	return apperr.InvalidState(Resource, c.ID, operation, string(c.Status), required...)
}

// CanRefresh allows recomputation only while the record is a draft.
func (c *Consolidation) CanRefresh() error {
	return c.requireStatus("consolidate", StatusDraft)
}

func (c *Consolidation) CanDelete() error {
	return c.requireStatus("delete", StatusDraft)
}

func (c *Consolidation) MarkValidated(actorID string, now time.Time) error {
	if err := c.requireStatus("validate", StatusDraft); err != nil {
		return err
	}
	c.Status = StatusValidated
	c.ValidatedBy = &actorID
	c.ValidatedAt = &now
	return nil
}

// Reopen returns the record to draft. Validation stamps stay as history until
// the next validation overwrites them.
func (c *Consolidation) Reopen() error {
	if err := c.requireStatus("reopen", StatusValidated, StatusExported); err != nil {
		return err
	}
	c.Status = StatusDraft
	return nil
}

func (c *Consolidation) MarkExported(now time.Time) error {
	if err := c.requireStatus("export", StatusValidated); err != nil {
		return err
	}
	c.Status = StatusExported
	c.ExportedAt = &now
	return nil
}

// MarkSentToAccountant stamps metadata only; the status does not change.
func (c *Consolidation) MarkSentToAccountant(now time.Time) error {
	if err := c.requireStatus("mark sent to accountant", StatusExported, StatusArchived); err != nil {
		return err
	}
	c.SentToAccountantAt = &now
	return nil
}

func (c *Consolidation) Archive() error {
	if err := c.requireStatus("archive", StatusExported); err != nil {
		return err
	}
	c.Status = StatusArchived
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
