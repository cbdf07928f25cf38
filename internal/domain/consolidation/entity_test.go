package consolidation

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/absence"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecomputeTotals(t *testing.T) {
	c := Consolidation{
		LeaveBalanceStart: d("5"),
		LeaveAccrued:      d("2.5"),
		LeaveConsumed:     d("1"),
		LeaveBalanceEnd:   d("999"),
	}
	items := []variableitem.VariableItem{
		{Amount: d("200")},
		{Amount: d("-35.5")},
	}

	c.RecomputeTotals(items)

	assert.Equal(t, "6.5", c.LeaveBalanceEnd.String())
	assert.Equal(t, "164.5", c.VariableItemsTotal.String())
}

type transition struct {
	name    string
	allowed []Status
	apply   func(c *Consolidation) error
}

func transitions(now time.Time) []transition {
	return []transition{
		{"validate", []Status{StatusDraft}, func(c *Consolidation) error { return c.MarkValidated("admin", now) }},
		{"reopen", []Status{StatusValidated, StatusExported}, func(c *Consolidation) error { return c.Reopen() }},
		{"export", []Status{StatusValidated}, func(c *Consolidation) error { return c.MarkExported(now) }},
		{"sent to accountant", []Status{StatusExported, StatusArchived}, func(c *Consolidation) error { return c.MarkSentToAccountant(now) }},
		{"archive", []Status{StatusExported}, func(c *Consolidation) error { return c.Archive() }},
		{"refresh", []Status{StatusDraft}, func(c *Consolidation) error { return c.CanRefresh() }},
		{"delete", []Status{StatusDraft}, func(c *Consolidation) error { return c.CanDelete() }},
	}
}

func TestStateMachineClosure(t *testing.T) {
	now := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	all := []Status{StatusDraft, StatusValidated, StatusExported, StatusArchived}

	for _, tr := range transitions(now) {
		for _, from := range all {
			allowed := false
			for _, s := range tr.allowed {
				allowed = allowed || s == from
			}

			t.Run(tr.name+" from "+string(from), func(t *testing.T) {
				c := Consolidation{ID: "c-1", Status: from, AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("1")}}
				before := c.Clone()

				err := tr.apply(&c)
				if allowed {
					assert.NoError(t, err)
					return
				}

				require.Error(t, err)
				assert.True(t, apperr.IsInvalidState(err))
				var stateErr *apperr.InvalidStateError
				require.ErrorAs(t, err, &stateErr)
				assert.Equal(t, string(from), stateErr.Current)
				assert.Len(t, stateErr.Required, len(tr.allowed))
				assert.Equal(t, before, c)
			})
		}
	}
}

func TestReopenKeepsValidationStamps(t *testing.T) {
	validatedAt := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	c := Consolidation{ID: "c-1", Status: StatusDraft}

	require.NoError(t, c.MarkValidated("admin-1", validatedAt))
	require.NoError(t, c.Reopen())

	assert.Equal(t, StatusDraft, c.Status)
	require.NotNil(t, c.ValidatedAt)
	assert.Equal(t, validatedAt, *c.ValidatedAt)
	assert.Equal(t, "admin-1", *c.ValidatedBy)
}

func TestSentToAccountantKeepsStatus(t *testing.T) {
	now := time.Now()
	c := Consolidation{Status: StatusExported}
	require.NoError(t, c.MarkSentToAccountant(now))
	assert.Equal(t, StatusExported, c.Status)
	assert.Equal(t, now, *c.SentToAccountantAt)
}

func TestCloneIsDeep(t *testing.T) {
	comment := "original"
	c := Consolidation{AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("1")}, Comment: &comment}
	cp := c.Clone()

	cp.AbsenceDaysByType["sick"] = d("2")
	*cp.Comment = "changed"

	assert.Equal(t, "1", c.AbsenceDaysByType["sick"].String())
	assert.Equal(t, "original", *c.Comment)
}

func TestSameFigures(t *testing.T) {
	a := Consolidation{LeaveAccrued: d("2.50"), AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("1")}}
	b := Consolidation{LeaveAccrued: d("2.5"), AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("1.0")}}
	assert.True(t, SameFigures(a, b))

	b.AbsenceDaysByType["paid_leave"] = d("1")
	assert.False(t, SameFigures(a, b))
}

func TestProblemsReportsEachFailure(t *testing.T) {
	table := absence.NewTable(
		absence.Type{Code: "paid_leave", Counter: counter.KindPaidLeave},
		absence.Type{Code: "sick", RequiresJustification: true},
	)
	c := Consolidation{
		DaysWorkedShifts:  d("-3"),
		DaysWorkedEvents:  d("1"),
		AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("2"), "paid_leave": d("-1")},
		LeaveBalanceStart: d("0"),
		LeaveConsumed:     d("2"),
	}
	c.RecomputeBalance()
	items := []variableitem.VariableItem{
		{ID: "i-1", Label: "Bonus", Status: variableitem.StatusDraft},
		{ID: "i-2", Label: "Advance", Status: variableitem.StatusValidated},
	}

	problems := c.Problems(items, table)
	require.Len(t, problems, 5)

	messages := make([]string, len(problems))
	for i, p := range problems {
		messages[i] = p.Message
	}
	assert.Contains(t, messages, "worked days total -2 is negative")
	assert.Contains(t, messages, `absence days for "paid_leave" are negative`)
	assert.Contains(t, messages, `absence type "sick" requires a justification comment`)
	assert.Contains(t, messages, "leave balance end -2 is negative and no override was given")
	assert.Contains(t, messages, "variable item i-1 (Bonus) is not validated")
}

func TestProblemsCleared(t *testing.T) {
	comment := "medical certificate received"
	c := Consolidation{
		DaysWorkedShifts:  d("18"),
		AbsenceDaysByType: map[string]decimal.Decimal{"sick": d("2")},
		LeaveConsumed:     d("3"),
		LeaveOverride:     true,
		Comment:           &comment,
	}
	c.RecomputeBalance()
	table := absence.NewTable(absence.Type{Code: "sick", RequiresJustification: true})

	assert.Empty(t, c.Problems([]variableitem.VariableItem{{Status: variableitem.StatusValidated}}, table))
}
