// Package memory keeps every ledger repository in process memory. It backs the
// service tests and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu sync.RWMutex
	// txMu serializes transactions: one writer at a time.
	txMu sync.Mutex

	ledger        ledgerState
	notifications []notification.Notification
}

// ledgerState is everything a transaction may roll back.
type ledgerState struct {
	employees      map[string]employee.Employee
	counters       map[string]counter.LeaveCounter
	movements      []counter.Movement
	items          map[string]variableitem.VariableItem
	consolidations map[string]consolidation.Consolidation
	audit          []auditRow
	workedDays     map[factKey]consolidation.WorkedDays
	absenceDays    map[factKey]map[string]decimal.Decimal
	seq            int64
}

type auditRow struct {
	entry audit.Entry
	seq   int64
}

type factKey struct {
	employeeID string
	yearMonth  calendar.YearMonth
}

func NewStore() *Store {
	return &Store{
		ledger: ledgerState{
			employees:      make(map[string]employee.Employee),
			counters:       make(map[string]counter.LeaveCounter),
			items:          make(map[string]variableitem.VariableItem),
			consolidations: make(map[string]consolidation.Consolidation),
			workedDays:     make(map[factKey]consolidation.WorkedDays),
			absenceDays:    make(map[factKey]map[string]decimal.Decimal),
		},
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type txKey struct{}

// WithinTransaction runs fn with a snapshot of the ledger and restores it when fn
// fails. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.ledger.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.ledger = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (l ledgerState) clone() ledgerState {
	out := ledgerState{
		employees:      make(map[string]employee.Employee, len(l.employees)),
		counters:       make(map[string]counter.LeaveCounter, len(l.counters)),
		movements:      append([]counter.Movement(nil), l.movements...),
		items:          make(map[string]variableitem.VariableItem, len(l.items)),
		consolidations: make(map[string]consolidation.Consolidation, len(l.consolidations)),
		audit:          append([]auditRow(nil), l.audit...),
		workedDays:     make(map[factKey]consolidation.WorkedDays, len(l.workedDays)),
		absenceDays:    make(map[factKey]map[string]decimal.Decimal, len(l.absenceDays)),
		seq:            l.seq,
	}
	for k, v := range l.employees {
		out.employees[k] = v
	}
	for k, v := range l.counters {
		out.counters[k] = v
	}
	for k, v := range l.items {
		out.items[k] = v
	}
	for k, v := range l.consolidations {
		out.consolidations[k] = v.Clone()
	}
	for k, v := range l.workedDays {
		out.workedDays[k] = v
	}
	for k, v := range l.absenceDays {
		out.absenceDays[k] = copyDays(v)
	}
	return out
}

func (l *ledgerState) nextSeq() int64 {
	l.seq++
	return l.seq
}

func copyDays(days map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(days))
	for k, v := range days {
		out[k] = v
	}
	return out
}
