package counter

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

type LeaveCounterService interface {
	GetOrCreate(ctx context.Context, employeeID string, kind Kind, periodKey string) (LeaveCounter, error)
	// CarryOver brings the initial balance in line with the prior period's
	// current balance, which may have changed since the counter was opened.
	CarryOver(ctx context.Context, employeeID string, kind Kind, periodKey string) (LeaveCounter, error)
	Accrue(ctx context.Context, employeeID string, kind Kind, periodKey string, days decimal.Decimal, source string) (LeaveCounter, error)
	Consume(ctx context.Context, employeeID string, kind Kind, periodKey string, days decimal.Decimal, source string) (LeaveCounter, error)
	Adjust(ctx context.Context, req AdjustRequest, actor identity.Actor) (LeaveCounter, error)
	// Reconcile brings the total posted for (kind, source) to target by posting
	// only the difference. It is how the consolidation engine stays idempotent.
	Reconcile(ctx context.Context, employeeID string, kind Kind, periodKey string, movement MovementKind, source string, target decimal.Decimal) (LeaveCounter, error)
	// NetSince returns what the engine posted for months from onwards.
	NetSince(ctx context.Context, counterID string, from calendar.YearMonth) (decimal.Decimal, error)
	Balance(ctx context.Context, employeeID string, kind Kind, periodKey string) (BalanceResponse, error)
	History(ctx context.Context, employeeID string, kind Kind, periodKey string) ([]Movement, error)
}
