package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type variableItemRepositoryImpl struct {
	db *database.DB
}

func NewVariableItemRepository(db *database.DB) variableitem.VariableItemRepository {
	return &variableItemRepositoryImpl{db: db}
}

const variableItemColumns = `id, employee_id, year_month, consolidation_id, category, amount, label,
	description, status, validated_by, validated_at, created_at, updated_at`

func (r *variableItemRepositoryImpl) Create(ctx context.Context, it *variableitem.VariableItem) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO variable_items (
			id, employee_id, year_month, consolidation_id, category, amount, label,
			description, status, validated_by, validated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		it.ID, it.EmployeeID, it.YearMonth, it.ConsolidationID, string(it.Category), it.Amount, it.Label,
		it.Description, string(it.Status), it.ValidatedBy, it.ValidatedAt, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return mapError(err, variableitem.Resource, it.ID)
	}
	return nil
}

func (r *variableItemRepositoryImpl) GetByID(ctx context.Context, id string) (variableitem.VariableItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + variableItemColumns + ` FROM variable_items WHERE id = $1`

	it, err := scanVariableItem(q.QueryRow(ctx, query, id))
	if err != nil {
		return variableitem.VariableItem{}, mapError(err, variableitem.Resource, id)
	}
	return it, nil
}

func (r *variableItemRepositoryImpl) Update(ctx context.Context, it *variableitem.VariableItem) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE variable_items
		SET category = $2, amount = $3, label = $4, description = $5, status = $6,
			validated_by = $7, validated_at = $8, consolidation_id = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		it.ID, string(it.Category), it.Amount, it.Label, it.Description, string(it.Status),
		it.ValidatedBy, it.ValidatedAt, it.ConsolidationID, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update variable item %s: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(variableitem.Resource, it.ID)
	}
	return nil
}

func (r *variableItemRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM variable_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete variable item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(variableitem.Resource, id)
	}
	return nil
}

func (r *variableItemRepositoryImpl) ListByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) ([]variableitem.VariableItem, error) {
	return r.list(ctx, `employee_id = $1 AND year_month = $2`, employeeID, ym)
}

func (r *variableItemRepositoryImpl) ListByConsolidation(ctx context.Context, consolidationID string) ([]variableitem.VariableItem, error) {
	return r.list(ctx, `consolidation_id = $1`, consolidationID)
}

func (r *variableItemRepositoryImpl) LinkToConsolidation(ctx context.Context, employeeID string, ym calendar.YearMonth, consolidationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE variable_items
		SET consolidation_id = $3
		WHERE employee_id = $1 AND year_month = $2
			AND consolidation_id IS DISTINCT FROM $3
	`

	if _, err := q.Exec(ctx, query, employeeID, ym, consolidationID); err != nil {
		return fmt.Errorf("failed to link variable items: %w", err)
	}
	return nil
}

func (r *variableItemRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]variableitem.VariableItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + variableItemColumns + `
		FROM variable_items
		WHERE ` + where + `
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list variable items: %w", err)
	}
	defer rows.Close()

	items := []variableitem.VariableItem{}
	for rows.Next() {
		it, err := scanVariableItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanVariableItem(row pgx.Row) (variableitem.VariableItem, error) {
	var it variableitem.VariableItem
	var category, status string
	err := row.Scan(
		&it.ID, &it.EmployeeID, &it.YearMonth, &it.ConsolidationID, &category, &it.Amount, &it.Label,
		&it.Description, &status, &it.ValidatedBy, &it.ValidatedAt, &it.CreatedAt, &it.UpdatedAt,
	)
	it.Category = variableitem.Category(category)
	it.Status = variableitem.Status(status)
	return it, err
}
