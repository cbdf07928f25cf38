package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type consolidationRepository struct {
	store *Store
}

func NewConsolidationRepository(store *Store) consolidation.ConsolidationRepository {
	return &consolidationRepository{store: store}
}

func (r *consolidationRepository) Create(_ context.Context, c *consolidation.Consolidation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.employees[c.EmployeeID]; !ok {
		return apperr.NotFound("employee", c.EmployeeID)
	}
	if _, ok := r.findLocked(c.EmployeeID, c.YearMonth); ok {
		return apperr.Conflict(consolidation.Resource, consolidation.Key(c.EmployeeID, c.YearMonth), nil)
	}
	r.store.ledger.consolidations[c.ID] = c.Clone()
	return nil
}

func (r *consolidationRepository) Update(_ context.Context, c *consolidation.Consolidation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.consolidations[c.ID]; !ok {
		return apperr.NotFound(consolidation.Resource, c.ID)
	}
	r.store.ledger.consolidations[c.ID] = c.Clone()
	return nil
}

// Delete removes the record with its audit trail and unlinks its items.
func (r *consolidationRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.consolidations[id]; !ok {
		return apperr.NotFound(consolidation.Resource, id)
	}
	delete(r.store.ledger.consolidations, id)

	kept := r.store.ledger.audit[:0]
	for _, row := range r.store.ledger.audit {
		if row.entry.ConsolidationID != id {
			kept = append(kept, row)
		}
	}
	r.store.ledger.audit = kept

	for itemID, it := range r.store.ledger.items {
		if it.ConsolidationID != nil && *it.ConsolidationID == id {
			it.ConsolidationID = nil
			r.store.ledger.items[itemID] = it
		}
	}
	return nil
}

func (r *consolidationRepository) GetByID(_ context.Context, id string) (consolidation.Consolidation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.ledger.consolidations[id]
	if !ok {
		return consolidation.Consolidation{}, apperr.NotFound(consolidation.Resource, id)
	}
	return loaded(c), nil
}

func (r *consolidationRepository) GetByIDForUpdate(ctx context.Context, id string) (consolidation.Consolidation, error) {
	return r.GetByID(ctx, id)
}

func (r *consolidationRepository) GetByEmployeeMonth(_ context.Context, employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.findLocked(employeeID, ym)
	if !ok {
		return consolidation.Consolidation{}, apperr.NotFound(consolidation.Resource, consolidation.Key(employeeID, ym))
	}
	return loaded(c), nil
}

func (r *consolidationRepository) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, error) {
	return r.GetByEmployeeMonth(ctx, employeeID, ym)
}

func (r *consolidationRepository) List(_ context.Context, filter consolidation.ListFilter) ([]consolidation.Consolidation, int, error) {
	filter.Normalize()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []consolidation.Consolidation
	for _, c := range r.store.ledger.consolidations {
		if filter.Matches(c) {
			matched = append(matched, loaded(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].YearMonth != matched[j].YearMonth {
			return matched[j].YearMonth.Before(matched[i].YearMonth)
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	total := len(matched)
	start := filter.Offset()
	if start >= total {
		return []consolidation.Consolidation{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *consolidationRepository) findLocked(employeeID string, ym calendar.YearMonth) (consolidation.Consolidation, bool) {
	for _, c := range r.store.ledger.consolidations {
		if c.EmployeeID == employeeID && c.YearMonth == ym {
			return c, true
		}
	}
	return consolidation.Consolidation{}, false
}

// loaded returns a private copy with the balance re-derived, as read from storage.
func loaded(c consolidation.Consolidation) consolidation.Consolidation {
	out := c.Clone()
	out.RecomputeBalance()
	return out
}
