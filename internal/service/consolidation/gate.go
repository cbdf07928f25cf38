package consolidation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
)

type itemGate struct {
	repo      consolidation.ConsolidationRepository
	itemRepo  variableitem.VariableItemRepository
	auditRepo audit.AuditRepository
	now       func() time.Time
}

// NewItemGate keeps variable items editable while their month has no
// consolidation or only a draft one, and keeps that draft's item total in step
// with the edits.
func NewItemGate(
	repo consolidation.ConsolidationRepository,
	itemRepo variableitem.VariableItemRepository,
	auditRepo audit.AuditRepository,
) variableitem.MonthGate {
	return itemGate{repo: repo, itemRepo: itemRepo, auditRepo: auditRepo, now: time.Now}
}

func (g itemGate) ItemsEditable(ctx context.Context, employeeID string, ym calendar.YearMonth) (bool, string, error) {
	c, err := g.repo.GetByEmployeeMonth(ctx, employeeID, ym)
	if apperr.IsNotFound(err) {
		return true, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return c.Status == consolidation.StatusDraft, string(c.Status), nil
}

// ItemsChanged recomputes the variable item total of the month's draft
// consolidation. Must run in the transaction that changed the items.
func (g itemGate) ItemsChanged(ctx context.Context, employeeID string, ym calendar.YearMonth, actor identity.Actor) error {
	c, err := g.repo.GetByEmployeeMonthForUpdate(ctx, employeeID, ym)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.Status != consolidation.StatusDraft {
		return nil
	}

	if err := g.itemRepo.LinkToConsolidation(ctx, c.EmployeeID, c.YearMonth, c.ID); err != nil {
		return fmt.Errorf("failed to link variable items: %w", err)
	}
	linked, err := g.itemRepo.ListByConsolidation(ctx, c.ID)
	if err != nil {
		return err
	}

	old := c.VariableItemsTotal
	c.RecomputeTotals(linked)
	if c.VariableItemsTotal.Equal(old) {
		return nil
	}

	now := g.now()
	c.TouchUpdatedAt(now)
	if err := g.repo.Update(ctx, &c); err != nil {
		return err
	}

	entry, err := audit.NewEntry(c.ID, audit.ActionRefreshed, actor, now,
		audit.WithChange("variable_items_total", old, c.VariableItemsTotal))
	if err != nil {
		return err
	}
	if err := g.auditRepo.Append(ctx, &entry); err != nil {
		return fmt.Errorf("failed to append %s audit entry: %w", audit.ActionRefreshed, err)
	}

	slog.Info("Draft consolidation item total recomputed",
		"consolidation_id", c.ID,
		"old_total", old.String(),
		"new_total", c.VariableItemsTotal.String(),
		"actor_id", actor.ID,
	)
	return nil
}
