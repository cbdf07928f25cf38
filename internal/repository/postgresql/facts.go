package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type factsRepositoryImpl struct {
	db *database.DB
}

// NewFactsRepository returns the store behind the attendance and absence providers.
func NewFactsRepository(db *database.DB) consolidation.FactsRepository {
	return &factsRepositoryImpl{db: db}
}

func (r *factsRepositoryImpl) WorkedDays(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.WorkedDays, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT shift_days, event_days
		FROM worked_day_facts
		WHERE employee_id = $1 AND year_month = $2
	`

	var days consolidation.WorkedDays
	err := q.QueryRow(ctx, query, employeeID, ym).Scan(&days.ShiftDays, &days.EventDays)
	if err == pgx.ErrNoRows {
		return consolidation.WorkedDays{ShiftDays: decimal.Zero, EventDays: decimal.Zero}, nil
	}
	if err != nil {
		return consolidation.WorkedDays{}, fmt.Errorf("failed to read worked days: %w", err)
	}
	return days, nil
}

func (r *factsRepositoryImpl) AbsenceDays(ctx context.Context, employeeID string, ym calendar.YearMonth) (map[string]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT absence_type_code, days
		FROM absence_facts
		WHERE employee_id = $1 AND year_month = $2
	`

	rows, err := q.Query(ctx, query, employeeID, ym)
	if err != nil {
		return nil, fmt.Errorf("failed to read absence days: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var code string
		var days decimal.Decimal
		if err := rows.Scan(&code, &days); err != nil {
			return nil, err
		}
		out[code] = days
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *factsRepositoryImpl) RecordWorkedDays(ctx context.Context, employeeID string, ym calendar.YearMonth, days consolidation.WorkedDays) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO worked_day_facts (employee_id, year_month, shift_days, event_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, year_month)
		DO UPDATE SET shift_days = EXCLUDED.shift_days, event_days = EXCLUDED.event_days
	`

	if _, err := q.Exec(ctx, query, employeeID, ym, days.ShiftDays, days.EventDays); err != nil {
		return fmt.Errorf("failed to record worked days: %w", err)
	}
	return nil
}

// RecordAbsenceDays replaces the absence facts of the month.
func (r *factsRepositoryImpl) RecordAbsenceDays(ctx context.Context, employeeID string, ym calendar.YearMonth, days map[string]decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx,
		`DELETE FROM absence_facts WHERE employee_id = $1 AND year_month = $2`, employeeID, ym,
	); err != nil {
		return fmt.Errorf("failed to clear absence days: %w", err)
	}

	for code, n := range days {
		query := `
			INSERT INTO absence_facts (employee_id, year_month, absence_type_code, days)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := q.Exec(ctx, query, employeeID, ym, code, n); err != nil {
			return fmt.Errorf("failed to record absence days for %s: %w", code, err)
		}
	}
	return nil
}
