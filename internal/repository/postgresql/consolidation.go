package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type consolidationRepositoryImpl struct {
	db *database.DB
}

func NewConsolidationRepository(db *database.DB) consolidation.ConsolidationRepository {
	return &consolidationRepositoryImpl{db: db}
}

// leave_balance_end is not stored; it is derived again on every read.
const consolidationColumns = `id, employee_id, year_month, status, days_worked_shifts, days_worked_events,
	absence_days_by_type, leave_accrued, leave_consumed, leave_balance_start, variable_items_total,
	leave_override, comment, validated_by, validated_at, exported_at, sent_to_accountant_at,
	created_at, updated_at`

func (r *consolidationRepositoryImpl) Create(ctx context.Context, c *consolidation.Consolidation) error {
	q := GetQuerier(ctx, r.db)

	days, err := json.Marshal(absenceDays(c.AbsenceDaysByType))
	if err != nil {
		return fmt.Errorf("failed to marshal absence days: %w", err)
	}

	query := `
		INSERT INTO consolidations (
			id, employee_id, year_month, status, days_worked_shifts, days_worked_events,
			absence_days_by_type, leave_accrued, leave_consumed, leave_balance_start, variable_items_total,
			leave_override, comment, validated_by, validated_at, exported_at, sent_to_accountant_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = q.Exec(ctx, query,
		c.ID, c.EmployeeID, c.YearMonth, string(c.Status), c.DaysWorkedShifts, c.DaysWorkedEvents,
		days, c.LeaveAccrued, c.LeaveConsumed, c.LeaveBalanceStart, c.VariableItemsTotal,
		c.LeaveOverride, c.Comment, c.ValidatedBy, c.ValidatedAt, c.ExportedAt, c.SentToAccountantAt,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapError(err, consolidation.Resource, consolidation.Key(c.EmployeeID, c.YearMonth))
	}
	return nil
}

func (r *consolidationRepositoryImpl) Update(ctx context.Context, c *consolidation.Consolidation) error {
	q := GetQuerier(ctx, r.db)

	days, err := json.Marshal(absenceDays(c.AbsenceDaysByType))
	if err != nil {
		return fmt.Errorf("failed to marshal absence days: %w", err)
	}

	query := `
		UPDATE consolidations
		SET status = $2, days_worked_shifts = $3, days_worked_events = $4, absence_days_by_type = $5,
			leave_accrued = $6, leave_consumed = $7, leave_balance_start = $8, variable_items_total = $9,
			leave_override = $10, comment = $11, validated_by = $12, validated_at = $13,
			exported_at = $14, sent_to_accountant_at = $15, updated_at = $16
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		c.ID, string(c.Status), c.DaysWorkedShifts, c.DaysWorkedEvents, days,
		c.LeaveAccrued, c.LeaveConsumed, c.LeaveBalanceStart, c.VariableItemsTotal,
		c.LeaveOverride, c.Comment, c.ValidatedBy, c.ValidatedAt,
		c.ExportedAt, c.SentToAccountantAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update consolidation %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(consolidation.Resource, c.ID)
	}
	return nil
}

// Delete cascades to the audit trail and unlinks items through the foreign keys.
func (r *consolidationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM consolidations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete consolidation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(consolidation.Resource, id)
	}
	return nil
}

func (r *consolidationRepositoryImpl) GetByID(ctx context.Context, id string) (consolidation.Consolidation, error) {
	return r.getOne(ctx, `id = $1`, "", id, id)
}

func (r *consolidationRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (consolidation.Consolidation, error) {
	return r.getOne(ctx, `id = $1`, "FOR UPDATE", id, id)
}

func (r *consolidationRepositoryImpl) GetByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, error) {
	return r.getOne(ctx, `employee_id = $1 AND year_month = $2`, "", consolidation.Key(employeeID, ym), employeeID, ym)
}

func (r *consolidationRepositoryImpl) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, error) {
	return r.getOne(ctx, `employee_id = $1 AND year_month = $2`, "FOR UPDATE", consolidation.Key(employeeID, ym), employeeID, ym)
}

func (r *consolidationRepositoryImpl) getOne(ctx context.Context, where, lock, key string, args ...interface{}) (consolidation.Consolidation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + consolidationColumns + ` FROM consolidations WHERE ` + where + ` ` + lock

	c, err := scanConsolidation(q.QueryRow(ctx, query, args...))
	if err != nil {
		return consolidation.Consolidation{}, mapError(err, consolidation.Resource, key)
	}
	return c, nil
}

func (r *consolidationRepositoryImpl) List(ctx context.Context, filter consolidation.ListFilter) ([]consolidation.Consolidation, int, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.YearMonth != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("year_month = $%d", argIndex))
		args = append(args, *filter.YearMonth)
		argIndex++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIndex))
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	where := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM consolidations WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count consolidations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM consolidations
		WHERE %s
		ORDER BY year_month DESC, employee_id
		LIMIT $%d OFFSET $%d
	`, consolidationColumns, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list consolidations: %w", err)
	}
	defer rows.Close()

	out := []consolidation.Consolidation{}
	for rows.Next() {
		c, err := scanConsolidation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func scanConsolidation(row pgx.Row) (consolidation.Consolidation, error) {
	var c consolidation.Consolidation
	var status string
	var days []byte
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.YearMonth, &status, &c.DaysWorkedShifts, &c.DaysWorkedEvents,
		&days, &c.LeaveAccrued, &c.LeaveConsumed, &c.LeaveBalanceStart, &c.VariableItemsTotal,
		&c.LeaveOverride, &c.Comment, &c.ValidatedBy, &c.ValidatedAt, &c.ExportedAt, &c.SentToAccountantAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	c.Status = consolidation.Status(status)
	c.AbsenceDaysByType = map[string]decimal.Decimal{}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &c.AbsenceDaysByType); err != nil {
			return consolidation.Consolidation{}, fmt.Errorf("failed to decode absence days of %s: %w", c.ID, err)
		}
	}
	c.RecomputeBalance()
	return c, nil
}

func absenceDays(days map[string]decimal.Decimal) map[string]decimal.Decimal {
	if days == nil {
		return map[string]decimal.Decimal{}
	}
	return days
}
