package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
)

type leaveCounterRepository struct {
	store *Store
}

func NewLeaveCounterRepository(store *Store) counter.LeaveCounterRepository {
	return &leaveCounterRepository{store: store}
}

func (r *leaveCounterRepository) CreateIfAbsent(_ context.Context, c *counter.LeaveCounter) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.findLocked(c.EmployeeID, c.Kind, c.PeriodKey); ok {
		return false, nil
	}
	r.store.ledger.counters[c.ID] = *c
	return true, nil
}

func (r *leaveCounterRepository) Get(_ context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.findLocked(employeeID, kind, periodKey)
	if !ok {
		return counter.LeaveCounter{}, apperr.NotFound(counter.Resource, counter.Key(employeeID, kind, periodKey))
	}
	return c, nil
}

// GetForUpdate needs no row lock here: transactions are already serialized.
func (r *leaveCounterRepository) GetForUpdate(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	return r.Get(ctx, employeeID, kind, periodKey)
}

func (r *leaveCounterRepository) AddMovement(_ context.Context, m *counter.Movement) (counter.LeaveCounter, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.ledger.counters[m.CounterID]
	if !ok {
		return counter.LeaveCounter{}, apperr.NotFound(counter.Resource, m.CounterID)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	c.Apply(*m)
	c.UpdatedAt = m.CreatedAt
	r.store.ledger.counters[c.ID] = c
	r.store.ledger.movements = append(r.store.ledger.movements, *m)
	return c, nil
}

func (r *leaveCounterRepository) Movements(_ context.Context, counterID string) ([]counter.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []counter.Movement{}
	for _, m := range r.store.ledger.movements {
		if m.CounterID == counterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *leaveCounterRepository) findLocked(employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, bool) {
	for _, c := range r.store.ledger.counters {
		if c.EmployeeID == employeeID && c.Kind == kind && c.PeriodKey == periodKey {
			return c, true
		}
	}
	return counter.LeaveCounter{}, false
}
