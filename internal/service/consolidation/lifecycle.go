package consolidation

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

// Validate runs the pre-validation checks and moves a draft to validated. Every
// failed check is reported; nothing is written when any fails.
func (s *ConsolidationEngineImpl) Validate(ctx context.Context, req consolidation.ValidateRequest, actor identity.Actor) (consolidation.Consolidation, error) {
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
		overrideGranted := req.Override && !c.LeaveOverride

		now := s.now()
		if err := c.MarkValidated(actor.ID, now); err != nil {
			return err
		}
		if req.Override {
			c.LeaveOverride = true
		}

		items, err := s.linkedItems(ctx, c)
		if err != nil {
			return err
		}
		c.RecomputeTotals(items)

		if problems := c.Problems(items, s.rules.Absences); len(problems) > 0 {
			return problems
		}

		c.TouchUpdatedAt(now)
		if err := s.consolidationRepo.Update(ctx, &c); err != nil {
			return err
		}

		var opts []audit.Option
		if overrideGranted {
			opts = append(opts, audit.WithChange(consolidation.FieldLeaveOverride, false, true))
		}
		if err := s.appendAudit(ctx, c, audit.ActionValidated, actor, now, opts...); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	slog.Info("Consolidation validated",
		"consolidation_id", result.ID,
		"employee_id", result.EmployeeID,
		"year_month", result.YearMonth.String(),
		"leave_override", result.LeaveOverride,
		"actor_id", actor.ID,
	)
	s.notifier.OnValidated(ctx, result)
	return result, nil
}

// Reopen returns a validated or exported record to draft. The reason is kept in
// the audit trail.
func (s *ConsolidationEngineImpl) Reopen(ctx context.Context, req consolidation.ReopenRequest, actor identity.Actor) (consolidation.Consolidation, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.Consolidation{}, err
	}
	if err := req.Validate(); err != nil {
		return consolidation.Consolidation{}, err
	}

	var previous consolidation.Status
	result, err := s.transition(ctx, req.ID, actor, audit.ActionReopened, func(c *consolidation.Consolidation, _ time.Time) error {
		previous = c.Status
		return c.Reopen()
	}, audit.WithComment(req.Reason))
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	slog.Info("Consolidation reopened",
		"consolidation_id", result.ID,
		"employee_id", result.EmployeeID,
		"year_month", result.YearMonth.String(),
		"previous_status", previous,
		"actor_id", actor.ID,
	)
	s.notifier.OnReopened(ctx, result, req.Reason)
	return result, nil
}

func (s *ConsolidationEngineImpl) MarkExported(ctx context.Context, id string, actor identity.Actor) (consolidation.Consolidation, error) {
	return s.stamp(ctx, id, actor, audit.ActionExported, func(c *consolidation.Consolidation, now time.Time) error {
		return c.MarkExported(now)
	})
}

// MarkSentToAccountant records the hand-off; the status is unchanged.
func (s *ConsolidationEngineImpl) MarkSentToAccountant(ctx context.Context, id string, actor identity.Actor) (consolidation.Consolidation, error) {
	return s.stamp(ctx, id, actor, audit.ActionSentToAccountant, func(c *consolidation.Consolidation, now time.Time) error {
		return c.MarkSentToAccountant(now)
	})
}

func (s *ConsolidationEngineImpl) Archive(ctx context.Context, id string, actor identity.Actor) (consolidation.Consolidation, error) {
	return s.stamp(ctx, id, actor, audit.ActionArchived, func(c *consolidation.Consolidation, _ time.Time) error {
		return c.Archive()
	})
}

// Delete removes a draft with its audit trail; its items become unlinked.
func (s *ConsolidationEngineImpl) Delete(ctx context.Context, id string, actor identity.Actor) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return validator.Single("id", "must be a valid UUID", id)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.consolidationRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := c.CanDelete(); err != nil {
			return err
		}
		return s.consolidationRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("Consolidation deleted", "consolidation_id", id, "actor_id", actor.ID)
	return nil
}

func (s *ConsolidationEngineImpl) stamp(ctx context.Context, id string, actor identity.Actor, action audit.Action, apply func(*consolidation.Consolidation, time.Time) error) (consolidation.Consolidation, error) {
	if err := actor.RequireAdmin(); err != nil {
		return consolidation.Consolidation{}, err
	}
	if !validator.IsValidUUID(id) {
		return consolidation.Consolidation{}, validator.Single("id", "must be a valid UUID", id)
	}

	result, err := s.transition(ctx, id, actor, action, apply)
	if err != nil {
		return consolidation.Consolidation{}, err
	}

	slog.Info("Consolidation status recorded",
		"consolidation_id", result.ID,
		"action", action,
		"status", result.Status,
		"actor_id", actor.ID,
	)
	return result, nil
}

// transition locks the record, applies one state change and audits it in the
// same transaction.
func (s *ConsolidationEngineImpl) transition(ctx context.Context, id string, actor identity.Actor, action audit.Action, apply func(*consolidation.Consolidation, time.Time) error, opts ...audit.Option) (consolidation.Consolidation, error) {
	var result consolidation.Consolidation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.consolidationRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if err := apply(&c, now); err != nil {
			return err
		}
		c.TouchUpdatedAt(now)

		if err := s.consolidationRepo.Update(ctx, &c); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, c, action, actor, now, opts...); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}
