package audit

import "context"

// AuditRepository is append-only: entries are never updated, and only go away
// with their consolidation.
type AuditRepository interface {
	Append(ctx context.Context, entry *Entry) error
	// ListByConsolidation returns the trail newest first.
	ListByConsolidation(ctx context.Context, consolidationID string) ([]Entry, error)
}
