package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveCounterRepositoryImpl struct {
	db *database.DB
}

func NewLeaveCounterRepository(db *database.DB) counter.LeaveCounterRepository {
	return &leaveCounterRepositoryImpl{db: db}
}

const leaveCounterColumns = `id, employee_id, kind, period_key, initial_balance, accrued, consumed,
	manual_adjustment, adjustment_comment, created_at, updated_at`

// CreateIfAbsent relies on the (employee, kind, period) constraint so that
// concurrent openers converge on one row.
func (r *leaveCounterRepositoryImpl) CreateIfAbsent(ctx context.Context, c *counter.LeaveCounter) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_counters (
			id, employee_id, kind, period_key, initial_balance, accrued, consumed,
			manual_adjustment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT uq_leave_counters_employee_period DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		c.ID, c.EmployeeID, string(c.Kind), c.PeriodKey, c.InitialBalance, c.Accrued, c.Consumed,
		c.ManualAdjustment, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create leave counter: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *leaveCounterRepositoryImpl) Get(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	return r.get(ctx, employeeID, kind, periodKey, "")
}

func (r *leaveCounterRepositoryImpl) GetForUpdate(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	return r.get(ctx, employeeID, kind, periodKey, "FOR UPDATE")
}

func (r *leaveCounterRepositoryImpl) get(ctx context.Context, employeeID string, kind counter.Kind, periodKey, lock string) (counter.LeaveCounter, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveCounterColumns + `
		FROM leave_counters
		WHERE employee_id = $1 AND kind = $2 AND period_key = $3
		` + lock

	c, err := scanLeaveCounter(q.QueryRow(ctx, query, employeeID, string(kind), periodKey))
	if err != nil {
		return counter.LeaveCounter{}, mapError(err, counter.Resource, counter.Key(employeeID, kind, periodKey))
	}
	return c, nil
}

// AddMovement inserts the movement and bumps the matching component additively,
// so the stored balance never depends on a value read earlier.
func (r *leaveCounterRepositoryImpl) AddMovement(ctx context.Context, m *counter.Movement) (counter.LeaveCounter, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO leave_counter_movements (id, counter_id, kind, days, source, comment, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := q.Exec(ctx, insert,
		m.ID, m.CounterID, string(m.Kind), m.Days, m.Source, m.Comment, m.ActorID, m.CreatedAt,
	); err != nil {
		return counter.LeaveCounter{}, fmt.Errorf("failed to insert leave counter movement: %w", err)
	}

	var set string
	switch m.Kind {
	case counter.MovementCarryOver:
		set = `initial_balance = initial_balance + $2`
	case counter.MovementAccrual:
		set = `accrued = accrued + $2`
	case counter.MovementConsumption:
		set = `consumed = consumed + $2`
	case counter.MovementAdjustment:
		set = `manual_adjustment = manual_adjustment + $2, adjustment_comment = COALESCE($4, adjustment_comment)`
	default:
		return counter.LeaveCounter{}, fmt.Errorf("unknown movement kind %q", m.Kind)
	}

	update := `
		UPDATE leave_counters
		SET ` + set + `, updated_at = $3
		WHERE id = $1
		RETURNING ` + leaveCounterColumns

	args := []interface{}{m.CounterID, m.Days, m.CreatedAt}
	if m.Kind == counter.MovementAdjustment {
		args = append(args, m.Comment)
	}

	c, err := scanLeaveCounter(q.QueryRow(ctx, update, args...))
	if err != nil {
		return counter.LeaveCounter{}, mapError(err, counter.Resource, m.CounterID)
	}
	return c, nil
}

// Movements returns the postings of a counter in the order they were made.
func (r *leaveCounterRepositoryImpl) Movements(ctx context.Context, counterID string) ([]counter.Movement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, counter_id, kind, days, source, comment, actor_id, created_at
		FROM leave_counter_movements
		WHERE counter_id = $1
		ORDER BY seq
	`

	rows, err := q.Query(ctx, query, counterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave counter movements: %w", err)
	}
	defer rows.Close()

	movements := []counter.Movement{}
	for rows.Next() {
		var m counter.Movement
		var kind string
		if err := rows.Scan(
			&m.ID, &m.CounterID, &kind, &m.Days, &m.Source, &m.Comment, &m.ActorID, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.Kind = counter.MovementKind(kind)
		movements = append(movements, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return movements, nil
}

func scanLeaveCounter(row pgx.Row) (counter.LeaveCounter, error) {
	var c counter.LeaveCounter
	var kind string
	err := row.Scan(
		&c.ID, &c.EmployeeID, &kind, &c.PeriodKey, &c.InitialBalance, &c.Accrued, &c.Consumed,
		&c.ManualAdjustment, &c.AdjustmentComment, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Kind = counter.Kind(kind)
	return c, err
}
