package consolidation

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactsService_Record_FeedsConsolidation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFactsService(f.store, f.facts, f.employees)
	emp := f.hire(t, "E-001", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	june := month(2025, time.June)

	// Act
	resp, err := svc.Record(ctx, consolidation.RecordFactsRequest{
		EmployeeID:  emp.ID,
		YearMonth:   "2025-06",
		ShiftDays:   d("18"),
		EventDays:   d("1.5"),
		AbsenceDays: map[string]decimal.Decimal{"sick": d("2")},
	}, admin)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "18", resp.ShiftDays.String())
	assert.Equal(t, "2", resp.AbsenceDays["sick"].String())

	c := f.consolidate(t, emp, june).Consolidation
	assert.Equal(t, "18", c.DaysWorkedShifts.String())
	assert.Equal(t, "1.5", c.DaysWorkedEvents.String())
	assert.Equal(t, "19.5", c.DaysWorkedTotal().String())
	assert.Equal(t, "2", c.AbsenceDaysByType["sick"].String())
}

func TestFactsService_Record_ReplacesAbsenceDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFactsService(f.store, f.facts, f.employees)
	emp := f.hire(t, "E-001", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	req := consolidation.RecordFactsRequest{
		EmployeeID:  emp.ID,
		YearMonth:   "2025-06",
		ShiftDays:   d("20"),
		AbsenceDays: map[string]decimal.Decimal{"sick": d("1"), "paid_leave": d("2")},
	}
	_, err := svc.Record(ctx, req, admin)
	require.NoError(t, err)

	req.AbsenceDays = map[string]decimal.Decimal{"paid_leave": d("1")}
	resp, err := svc.Record(ctx, req, admin)
	require.NoError(t, err)

	assert.Len(t, resp.AbsenceDays, 1)
	assert.Equal(t, "1", resp.AbsenceDays["paid_leave"].String())
}

func TestFactsService_Record_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFactsService(f.store, f.facts, f.employees)
	emp := f.hire(t, "E-001", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	valid := consolidation.RecordFactsRequest{EmployeeID: emp.ID, YearMonth: "2025-06", ShiftDays: d("1")}

	negative := valid
	negative.EventDays = d("-1")
	negative.AbsenceDays = map[string]decimal.Decimal{"sick": d("-0.5")}
	_, err := svc.Record(ctx, negative, admin)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "event_days")
	assert.Contains(t, verrs.ToMap(), "absence_days.sick")

	precise := valid
	precise.ShiftDays = d("20.125")
	precise.AbsenceDays = map[string]decimal.Decimal{"sick": d("0.333")}
	_, err = svc.Record(ctx, precise, admin)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "shift_days")
	assert.Contains(t, verrs.ToMap(), "absence_days.sick")

	badMonth := valid
	badMonth.YearMonth = "2025-13"
	_, err = svc.Record(ctx, badMonth, admin)
	assert.True(t, validator.IsValidationError(err))

	_, err = svc.Record(ctx, valid, identity.Actor{ID: emp.ID, Role: identity.RoleEmployee})
	assert.ErrorIs(t, err, identity.ErrForbidden)

	unknown := valid
	unknown.EmployeeID = uuid.New().String()
	_, err = svc.Record(ctx, unknown, admin)
	assert.True(t, apperr.IsNotFound(err))

	resp, err := svc.Get(ctx, emp.ID, month(2025, time.June))
	require.NoError(t, err)
	assert.True(t, resp.ShiftDays.IsZero(), "rejected facts are never stored")
	assert.Empty(t, resp.AbsenceDays)
}
