package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, employee_code, full_name, hire_date, termination_date, created_at, updated_at`

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, emp *employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (id, employee_code, full_name, hire_date, termination_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		emp.ID, emp.EmployeeCode, emp.FullName, emp.HireDate, emp.TerminationDate,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return mapError(err, "employee", emp.EmployeeCode)
	}
	return nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		return employee.Employee{}, mapError(err, "employee", id)
	}
	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context, ym calendar.YearMonth) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE hire_date <= $1 AND (termination_date IS NULL OR termination_date >= $2)
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, ym.LastDay(), ym.FirstDay())
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.HireDate,
		&emp.TerminationDate, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}
