package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type variableItemRepository struct {
	store *Store
}

func NewVariableItemRepository(store *Store) variableitem.VariableItemRepository {
	return &variableItemRepository{store: store}
}

func (r *variableItemRepository) Create(_ context.Context, it *variableitem.VariableItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.employees[it.EmployeeID]; !ok {
		return apperr.NotFound("employee", it.EmployeeID)
	}
	if _, ok := r.store.ledger.items[it.ID]; ok {
		return apperr.Conflict(variableitem.Resource, it.ID, nil)
	}
	r.store.ledger.items[it.ID] = *it
	return nil
}

func (r *variableItemRepository) GetByID(_ context.Context, id string) (variableitem.VariableItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	it, ok := r.store.ledger.items[id]
	if !ok {
		return variableitem.VariableItem{}, apperr.NotFound(variableitem.Resource, id)
	}
	return it, nil
}

func (r *variableItemRepository) Update(_ context.Context, it *variableitem.VariableItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.items[it.ID]; !ok {
		return apperr.NotFound(variableitem.Resource, it.ID)
	}
	r.store.ledger.items[it.ID] = *it
	return nil
}

func (r *variableItemRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.items[id]; !ok {
		return apperr.NotFound(variableitem.Resource, id)
	}
	delete(r.store.ledger.items, id)
	return nil
}

func (r *variableItemRepository) ListByEmployeeMonth(_ context.Context, employeeID string, ym calendar.YearMonth) ([]variableitem.VariableItem, error) {
	return r.list(func(it variableitem.VariableItem) bool {
		return it.EmployeeID == employeeID && it.YearMonth == ym
	}), nil
}

func (r *variableItemRepository) ListByConsolidation(_ context.Context, consolidationID string) ([]variableitem.VariableItem, error) {
	return r.list(func(it variableitem.VariableItem) bool {
		return it.ConsolidationID != nil && *it.ConsolidationID == consolidationID
	}), nil
}

func (r *variableItemRepository) LinkToConsolidation(_ context.Context, employeeID string, ym calendar.YearMonth, consolidationID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, it := range r.store.ledger.items {
		if it.EmployeeID == employeeID && it.YearMonth == ym {
			link := consolidationID
			it.ConsolidationID = &link
			r.store.ledger.items[id] = it
		}
	}
	return nil
}

func (r *variableItemRepository) list(match func(variableitem.VariableItem) bool) []variableitem.VariableItem {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []variableitem.VariableItem{}
	for _, it := range r.store.ledger.items {
		if match(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
