package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/google/uuid"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) Create(_ context.Context, e *employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	for _, existing := range r.store.ledger.employees {
		if existing.EmployeeCode == e.EmployeeCode {
			return apperr.Conflict("employee", e.EmployeeCode, nil)
		}
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	r.store.ledger.employees[e.ID] = *e
	return nil
}

func (r *employeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.ledger.employees[id]
	if !ok {
		return employee.Employee{}, apperr.NotFound("employee", id)
	}
	return e, nil
}

func (r *employeeRepository) ListActive(_ context.Context, ym calendar.YearMonth) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.store.ledger.employees {
		if e.ActiveIn(ym) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}
