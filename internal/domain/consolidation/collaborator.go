package consolidation

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

type WorkedDays struct {
	ShiftDays decimal.Decimal `json:"shift_days"`
	EventDays decimal.Decimal `json:"event_days"`
}

// AttendanceFacts supplies worked days; a month without facts reports zero.
type AttendanceFacts interface {
	WorkedDays(ctx context.Context, employeeID string, ym calendar.YearMonth) (WorkedDays, error)
}

// AbsenceFacts supplies absence days keyed by absence-type code.
type AbsenceFacts interface {
	AbsenceDays(ctx context.Context, employeeID string, ym calendar.YearMonth) (map[string]decimal.Decimal, error)
}

// FactsRecorder stores facts pushed by the attendance and absence collaborators.
type FactsRecorder interface {
	RecordWorkedDays(ctx context.Context, employeeID string, ym calendar.YearMonth, days WorkedDays) error
	RecordAbsenceDays(ctx context.Context, employeeID string, ym calendar.YearMonth, days map[string]decimal.Decimal) error
}

// Notifier receives lifecycle events after they are committed. Delivery and
// retry belong to the notifier; it must not block.
type Notifier interface {
	OnValidated(ctx context.Context, c Consolidation)
	OnCorrected(ctx context.Context, c Consolidation, field, comment string)
	OnReopened(ctx context.Context, c Consolidation, reason string)
}
