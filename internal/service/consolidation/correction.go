package consolidation

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

// CorrectField changes one correctable field in any status and recomputes the
// derived totals. Non-draft corrections are announced to the employee.
func (s *ConsolidationEngineImpl) CorrectField(ctx context.Context, req consolidation.CorrectFieldRequest, actor identity.Actor) (consolidation.Consolidation, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.Consolidation{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.Consolidation{}, err
	}

	var result consolidation.Consolidation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.consolidationRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		oldValue, newValue, err := c.SetField(req.Field, req.Value)
		if err != nil {
			return err
		}

		items, err := s.itemRepo.ListByConsolidation(ctx, c.ID)
		if err != nil {
			return err
		}
		c.RecomputeTotals(items)

		now := s.now()
		c.TouchUpdatedAt(now)
		if err := s.consolidationRepo.Update(ctx, &c); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, c, audit.ActionCorrection, actor, now,
			audit.WithChange(req.Field, oldValue, newValue),
			audit.WithComment(req.Comment),
		); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	slog.Info("Consolidation corrected",
		"consolidation_id", result.ID,
		"field", req.Field,
		"status", result.Status,
		"actor_id", actor.ID,
	)
	if result.Status != consolidation.StatusDraft {
		s.notifier.OnCorrected(ctx, result, req.Field, req.Comment)
	}
	return result, nil
}

// CorrectVariableItem changes the amount of an item linked to the consolidation.
// This is the only path that edits an item once its month is closed.
func (s *ConsolidationEngineImpl) CorrectVariableItem(ctx context.Context, req consolidation.CorrectVariableItemRequest, actor identity.Actor) (consolidation.Consolidation, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.Consolidation{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.Consolidation{}, err
	}
	field := consolidation.VariableItemFieldPrefix + req.ItemID

	var result consolidation.Consolidation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.consolidationRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		item, err := s.itemRepo.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item.ConsolidationID == nil || *item.ConsolidationID != c.ID {
			return validator.Single("item_id", "is not linked to this consolidation", req.ItemID)
		}
		if item.Amount.Equal(req.Amount) {
			return validator.Single("amount", "equals the current value", req.Amount.String())
		}

		now := s.now()
		oldAmount := item.Amount
		item.Amount = req.Amount
		item.UpdatedAt = now
		if err := s.itemRepo.Update(ctx, &item); err != nil {
			return err
		}

		items, err := s.itemRepo.ListByConsolidation(ctx, c.ID)
		if err != nil {
			return err
		}
		c.RecomputeTotals(items)
		c.TouchUpdatedAt(now)
		if err := s.consolidationRepo.Update(ctx, &c); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, c, audit.ActionCorrection, actor, now,
			audit.WithChange(field, oldAmount, req.Amount),
			audit.WithComment(req.Comment),
		); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	slog.Info("Variable item corrected",
		"consolidation_id", result.ID,
		"item_id", req.ItemID,
		"amount", req.Amount.String(),
		"variable_items_total", result.VariableItemsTotal.String(),
		"actor_id", actor.ID,
	)
	if result.Status != consolidation.StatusDraft {
		s.notifier.OnCorrected(ctx, result, field, req.Comment)
	}
	return result, nil
}
