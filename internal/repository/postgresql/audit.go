package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

func (r *auditRepositoryImpl) Append(ctx context.Context, e *audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO consolidation_audit (
			id, consolidation_id, action, actor_id, actor_name, field, old_value, new_value, comment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		e.ID, e.ConsolidationID, string(e.Action), e.ActorID, e.ActorName, e.Field,
		rawText(e.OldValue), rawText(e.NewValue), e.Comment, e.CreatedAt,
	)
	if err != nil {
		return mapError(err, consolidation.Resource, e.ConsolidationID)
	}
	return nil
}

// ListByConsolidation orders by time, then insertion order for entries sharing a timestamp.
func (r *auditRepositoryImpl) ListByConsolidation(ctx context.Context, consolidationID string) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, consolidation_id, action, actor_id, COALESCE(actor_name, ''), field,
			old_value, new_value, comment, created_at
		FROM consolidation_audit
		WHERE consolidation_id = $1
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := q.Query(ctx, query, consolidationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var e audit.Entry
		var action string
		var oldValue, newValue *string
		if err := rows.Scan(
			&e.ID, &e.ConsolidationID, &action, &e.ActorID, &e.ActorName, &e.Field,
			&oldValue, &newValue, &e.Comment, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Action = audit.Action(action)
		e.OldValue = rawValue(oldValue)
		e.NewValue = rawValue(newValue)
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func rawText(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func rawValue(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	return json.RawMessage(*s)
}
