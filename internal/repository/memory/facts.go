package memory

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// FactsRepository holds worked-day and absence facts pushed by collaborators.
type FactsRepository struct {
	store *Store
}

func NewFactsRepository(store *Store) *FactsRepository {
	return &FactsRepository{store: store}
}

var (
	_ consolidation.AttendanceFacts = (*FactsRepository)(nil)
	_ consolidation.AbsenceFacts    = (*FactsRepository)(nil)
	_ consolidation.FactsRecorder   = (*FactsRepository)(nil)
)

func (r *FactsRepository) WorkedDays(_ context.Context, employeeID string, ym calendar.YearMonth) (consolidation.WorkedDays, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	days, ok := r.store.ledger.workedDays[factKey{employeeID, ym}]
	if !ok {
		return consolidation.WorkedDays{ShiftDays: decimal.Zero, EventDays: decimal.Zero}, nil
	}
	return days, nil
}

func (r *FactsRepository) AbsenceDays(_ context.Context, employeeID string, ym calendar.YearMonth) (map[string]decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return copyDays(r.store.ledger.absenceDays[factKey{employeeID, ym}]), nil
}

func (r *FactsRepository) RecordWorkedDays(_ context.Context, employeeID string, ym calendar.YearMonth, days consolidation.WorkedDays) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ledger.workedDays[factKey{employeeID, ym}] = days
	return nil
}

// RecordAbsenceDays replaces the absence facts of the month.
func (r *FactsRepository) RecordAbsenceDays(_ context.Context, employeeID string, ym calendar.YearMonth, days map[string]decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ledger.absenceDays[factKey{employeeID, ym}] = copyDays(days)
	return nil
}
