package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
)

type auditRepository struct {
	store *Store
}

func NewAuditRepository(store *Store) audit.AuditRepository {
	return &auditRepository{store: store}
}

func (r *auditRepository) Append(_ context.Context, e *audit.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ledger.consolidations[e.ConsolidationID]; !ok {
		return apperr.NotFound(consolidation.Resource, e.ConsolidationID)
	}
	r.store.ledger.audit = append(r.store.ledger.audit, auditRow{entry: *e, seq: r.store.ledger.nextSeq()})
	return nil
}

func (r *auditRepository) ListByConsolidation(_ context.Context, consolidationID string) ([]audit.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var rows []auditRow
	for _, row := range r.store.ledger.audit {
		if row.entry.ConsolidationID == consolidationID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entry.CreatedAt.Equal(rows[j].entry.CreatedAt) {
			return rows[i].entry.CreatedAt.After(rows[j].entry.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]audit.Entry, len(rows))
	for i, row := range rows {
		out[i] = row.entry
	}
	return out, nil
}
