package counter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveCounterServiceImpl struct {
	tx           database.Transactor
	counterRepo  counter.LeaveCounterRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewLeaveCounterService(
	tx database.Transactor,
	counterRepo counter.LeaveCounterRepository,
	employeeRepo employee.EmployeeRepository,
) counter.LeaveCounterService {
	return &LeaveCounterServiceImpl{
		tx:           tx,
		counterRepo:  counterRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

// GetOrCreate returns the counter for (employee, kind, period), creating it with the
// prior period's current balance carried over as initial balance. Concurrent callers
// converge on the same row through the (employee, kind, period) uniqueness.
func (s *LeaveCounterServiceImpl) GetOrCreate(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	period, err := parseIdentity(employeeID, kind, periodKey)
	if err != nil {
		return counter.LeaveCounter{}, err
	}

	var result counter.LeaveCounter
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.counterRepo.Get(ctx, employeeID, kind, periodKey)
		if err == nil {
			result = existing
			return nil
		}
		if !apperr.IsNotFound(err) {
			return err
		}

		if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
			return err
		}

		now := s.now()
		c := counter.LeaveCounter{
			ID:               uuid.New().String(),
			EmployeeID:       employeeID,
			Kind:             kind,
			PeriodKey:        periodKey,
			InitialBalance:   decimal.Zero,
			Accrued:          decimal.Zero,
			Consumed:         decimal.Zero,
			ManualAdjustment: decimal.Zero,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		created, err := s.counterRepo.CreateIfAbsent(ctx, &c)
		if err != nil {
			return err
		}
		if !created {
			result, err = s.counterRepo.Get(ctx, employeeID, kind, periodKey)
			return err
		}

		result, err = s.carryOver(ctx, c, period)
		if err != nil {
			return err
		}

		slog.Info("Leave counter opened",
			"employee_id", employeeID,
			"kind", kind,
			"period_key", periodKey,
			"initial_balance", result.InitialBalance.String(),
		)
		return nil
	})
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	return result, nil
}

func (s *LeaveCounterServiceImpl) CarryOver(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, error) {
	period, err := parseIdentity(employeeID, kind, periodKey)
	if err != nil {
		return counter.LeaveCounter{}, err
	}

	var result counter.LeaveCounter
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetOrCreate(ctx, employeeID, kind, periodKey); err != nil {
			return err
		}
		locked, err := s.counterRepo.GetForUpdate(ctx, employeeID, kind, periodKey)
		if err != nil {
			return err
		}
		result, err = s.carryOver(ctx, locked, period)
		return err
	})
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	return result, nil
}

// carryOver posts the difference between the prior period's current balance
// and what c has already carried over from it.
func (s *LeaveCounterServiceImpl) carryOver(ctx context.Context, c counter.LeaveCounter, period calendar.Period) (counter.LeaveCounter, error) {
	priorKey := period.Previous().Key()

	target := decimal.Zero
	prior, err := s.counterRepo.Get(ctx, c.EmployeeID, c.Kind, priorKey)
	switch {
	case err == nil:
		target = prior.CurrentBalance()
	case !apperr.IsNotFound(err):
		return counter.LeaveCounter{}, fmt.Errorf("failed to load prior period counter: %w", err)
	}

	movements, err := s.counterRepo.Movements(ctx, c.ID)
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	delta := target.Sub(counter.PostedFor(movements, counter.MovementCarryOver, priorKey))
	if delta.IsZero() {
		return c, nil
	}

	updated, err := s.addMovement(ctx, c, counter.Movement{Kind: counter.MovementCarryOver, Days: delta, Source: priorKey})
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	slog.Info("Leave counter carry-over posted",
		"employee_id", c.EmployeeID,
		"kind", c.Kind,
		"period_key", c.PeriodKey,
		"from_period", priorKey,
		"delta", delta.String(),
		"initial_balance", updated.InitialBalance.String(),
	)
	return updated, nil
}

func (s *LeaveCounterServiceImpl) Accrue(ctx context.Context, employeeID string, kind counter.Kind, periodKey string, days decimal.Decimal, source string) (counter.LeaveCounter, error) {
	if err := checkDays(days); err != nil {
		return counter.LeaveCounter{}, err
	}
	return s.post(ctx, employeeID, kind, periodKey, counter.Movement{
		Kind:   counter.MovementAccrual,
		Days:   days,
		Source: source,
	})
}

func (s *LeaveCounterServiceImpl) Consume(ctx context.Context, employeeID string, kind counter.Kind, periodKey string, days decimal.Decimal, source string) (counter.LeaveCounter, error) {
	if err := checkDays(days); err != nil {
		return counter.LeaveCounter{}, err
	}
	return s.post(ctx, employeeID, kind, periodKey, counter.Movement{
		Kind:   counter.MovementConsumption,
		Days:   days,
		Source: source,
	})
}

// Adjust applies a manual administrative correction. The balance may go negative.
func (s *LeaveCounterServiceImpl) Adjust(ctx context.Context, req counter.AdjustRequest, actor identity.Actor) (counter.LeaveCounter, error) {
	if err := actor.RequireAdmin(); err != nil {
		return counter.LeaveCounter{}, err
	}
	if err := req.Validate(); err != nil {
		return counter.LeaveCounter{}, err
	}

	comment := req.Comment
	actorID := actor.ID
	c, err := s.post(ctx, req.EmployeeID, req.Kind, req.PeriodKey, counter.Movement{
		Kind:    counter.MovementAdjustment,
		Days:    req.Delta,
		Comment: &comment,
		ActorID: &actorID,
	})
	if err != nil {
		return counter.LeaveCounter{}, err
	}

	slog.Info("Leave counter adjusted",
		"employee_id", req.EmployeeID,
		"kind", req.Kind,
		"period_key", req.PeriodKey,
		"delta", req.Delta.String(),
		"actor_id", actor.ID,
		"balance", c.CurrentBalance().String(),
	)
	return c, nil
}

func (s *LeaveCounterServiceImpl) Reconcile(ctx context.Context, employeeID string, kind counter.Kind, periodKey string, movement counter.MovementKind, source string, target decimal.Decimal) (counter.LeaveCounter, error) {
	if movement != counter.MovementAccrual && movement != counter.MovementConsumption {
		return counter.LeaveCounter{}, validator.Single("movement", "must be accrual or consumption", string(movement))
	}
	if validator.IsEmpty(source) {
		return counter.LeaveCounter{}, validator.Single("source", "is required", source)
	}
	if !validator.FitsPlaces(target, counter.AccrualPlaces) {
		return counter.LeaveCounter{}, validator.Single("target", fmt.Sprintf("must have at most %d decimal places", counter.AccrualPlaces), target.String())
	}

	var result counter.LeaveCounter
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetOrCreate(ctx, employeeID, kind, periodKey); err != nil {
			return err
		}
		locked, err := s.counterRepo.GetForUpdate(ctx, employeeID, kind, periodKey)
		if err != nil {
			return err
		}

		movements, err := s.counterRepo.Movements(ctx, locked.ID)
		if err != nil {
			return err
		}

		delta := target.Sub(counter.PostedFor(movements, movement, source))
		if delta.IsZero() {
			result = locked
			return nil
		}

		result, err = s.addMovement(ctx, locked, counter.Movement{Kind: movement, Days: delta, Source: source})
		return err
	})
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	return result, nil
}

func (s *LeaveCounterServiceImpl) NetSince(ctx context.Context, counterID string, from calendar.YearMonth) (decimal.Decimal, error) {
	movements, err := s.counterRepo.Movements(ctx, counterID)
	if err != nil {
		return decimal.Zero, err
	}
	return counter.NetSince(movements, from), nil
}

func (s *LeaveCounterServiceImpl) Balance(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.BalanceResponse, error) {
	c, movements, err := s.load(ctx, employeeID, kind, periodKey)
	if err != nil {
		return counter.BalanceResponse{}, err
	}
	return counter.NewBalanceResponse(c, movements), nil
}

func (s *LeaveCounterServiceImpl) History(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) ([]counter.Movement, error) {
	_, movements, err := s.load(ctx, employeeID, kind, periodKey)
	return movements, err
}

func (s *LeaveCounterServiceImpl) load(ctx context.Context, employeeID string, kind counter.Kind, periodKey string) (counter.LeaveCounter, []counter.Movement, error) {
	if _, err := parseIdentity(employeeID, kind, periodKey); err != nil {
		return counter.LeaveCounter{}, nil, err
	}

	c, err := s.counterRepo.Get(ctx, employeeID, kind, periodKey)
	if err != nil {
		return counter.LeaveCounter{}, nil, err
	}
	movements, err := s.counterRepo.Movements(ctx, c.ID)
	if err != nil {
		return counter.LeaveCounter{}, nil, err
	}
	return c, movements, nil
}

// post applies m to the counter under a row lock, creating the counter first if needed.
func (s *LeaveCounterServiceImpl) post(ctx context.Context, employeeID string, kind counter.Kind, periodKey string, m counter.Movement) (counter.LeaveCounter, error) {
	var result counter.LeaveCounter
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetOrCreate(ctx, employeeID, kind, periodKey); err != nil {
			return err
		}
		locked, err := s.counterRepo.GetForUpdate(ctx, employeeID, kind, periodKey)
		if err != nil {
			return err
		}
		result, err = s.addMovement(ctx, locked, m)
		return err
	})
	if err != nil {
		return counter.LeaveCounter{}, err
	}
	return result, nil
}

func (s *LeaveCounterServiceImpl) addMovement(ctx context.Context, c counter.LeaveCounter, m counter.Movement) (counter.LeaveCounter, error) {
	m.ID = uuid.New().String()
	m.CounterID = c.ID
	m.CreatedAt = s.now()

	updated, err := s.counterRepo.AddMovement(ctx, &m)
	if err != nil {
		return counter.LeaveCounter{}, fmt.Errorf("failed to post %s movement: %w", m.Kind, err)
	}
	return updated, nil
}

func checkDays(days decimal.Decimal) error {
	var errs validator.ValidationErrors
	if !days.IsPositive() {
		errs.Add("days", "must be positive", days.String())
	}
	errs.AddPlaces("days", days, counter.AccrualPlaces)
	return errs.OrNil()
}

func parseIdentity(employeeID string, kind counter.Kind, periodKey string) (period calendar.Period, err error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs.Add("employee_id", "is required", employeeID)
	}
	if !kind.Valid() {
		errs.Add("kind", "must be 'paid_leave' or 'annual'", string(kind))
	} else {
		p, perr := kind.ParsePeriodKey(periodKey)
		if perr != nil {
			errs.Add("period_key", perr.Error(), periodKey)
		}
		period = p
	}

	if len(errs) > 0 {
		return period, errs
	}
	return period, nil
}
