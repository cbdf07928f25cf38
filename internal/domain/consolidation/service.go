package consolidation

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

// Engine computes consolidations from their sources and enforces the status lifecycle.
type Engine interface {
	// Commands
	Consolidate(ctx context.Context, req ConsolidateRequest, actor identity.Actor) (ConsolidateResult, error)
	ConsolidateMonth(ctx context.Context, req ConsolidateMonthRequest, actor identity.Actor) (BatchResult, error)
	Validate(ctx context.Context, req ValidateRequest, actor identity.Actor) (Consolidation, error)
	Reopen(ctx context.Context, req ReopenRequest, actor identity.Actor) (Consolidation, error)
	CorrectField(ctx context.Context, req CorrectFieldRequest, actor identity.Actor) (Consolidation, error)
	CorrectVariableItem(ctx context.Context, req CorrectVariableItemRequest, actor identity.Actor) (Consolidation, error)
	MarkExported(ctx context.Context, id string, actor identity.Actor) (Consolidation, error)
	MarkSentToAccountant(ctx context.Context, id string, actor identity.Actor) (Consolidation, error)
	Archive(ctx context.Context, id string, actor identity.Actor) (Consolidation, error)
	Delete(ctx context.Context, id string, actor identity.Actor) error

	// Queries
	GetByID(ctx context.Context, id string) (Consolidation, error)
	GetByEmployeeMonth(ctx context.Context, employeeID string, ym calendar.YearMonth) (Consolidation, error)
	List(ctx context.Context, filter ListFilter) ([]Consolidation, int, error)
	AuditTrail(ctx context.Context, id string) ([]audit.Entry, error)
	ExportRows(ctx context.Context, ym calendar.YearMonth) ([]ExportRow, error)
}
