package consolidation

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/absence"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// Rules carries the ledger policy in domain terms.
type Rules struct {
	PaidLeaveRate    decimal.Decimal
	PaidLeaveStart   time.Month
	AnnualAllocation decimal.Decimal
	Absences         *absence.Table
	// BatchConcurrency bounds ConsolidateMonth; values below 1 mean 1.
	BatchConcurrency int
}

type ConsolidationEngineImpl struct {
	tx                database.Transactor
	consolidationRepo consolidation.ConsolidationRepository
	itemRepo          variableitem.VariableItemRepository
	auditRepo         audit.AuditRepository
	employeeRepo      employee.EmployeeRepository
	counters          counter.LeaveCounterService
	attendance        consolidation.AttendanceFacts
	absences          consolidation.AbsenceFacts
	notifier          consolidation.Notifier
	rules             Rules
	now               func() time.Time
}

func NewConsolidationEngine(
	tx database.Transactor,
	consolidationRepo consolidation.ConsolidationRepository,
	itemRepo variableitem.VariableItemRepository,
	auditRepo audit.AuditRepository,
	employeeRepo employee.EmployeeRepository,
	counters counter.LeaveCounterService,
	attendance consolidation.AttendanceFacts,
	absences consolidation.AbsenceFacts,
	notifier consolidation.Notifier,
	rules Rules,
) consolidation.Engine {
	if rules.Absences == nil {
		rules.Absences = absence.NewTable()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if rules.BatchConcurrency < 1 {
		rules.BatchConcurrency = 1
	}
	return &ConsolidationEngineImpl{
		tx:                tx,
		consolidationRepo: consolidationRepo,
		itemRepo:          itemRepo,
		auditRepo:         auditRepo,
		employeeRepo:      employeeRepo,
		counters:          counters,
		attendance:        attendance,
		absences:          absences,
		notifier:          notifier,
		rules:             rules,
		now:               time.Now,
	}
}

// appendAudit writes one trail entry for c.
func (s *ConsolidationEngineImpl) appendAudit(ctx context.Context, c consolidation.Consolidation, action audit.Action, actor identity.Actor, now time.Time, opts ...audit.Option) error {
	entry, err := audit.NewEntry(c.ID, action, actor, now, opts...)
	if err != nil {
		return err
	}
	if err := s.auditRepo.Append(ctx, &entry); err != nil {
		return fmt.Errorf("failed to append %s audit entry: %w", action, err)
	}
	return nil
}

// linkedItems attaches every item of the month to c and returns them.
func (s *ConsolidationEngineImpl) linkedItems(ctx context.Context, c consolidation.Consolidation) ([]variableitem.VariableItem, error) {
	if err := s.itemRepo.LinkToConsolidation(ctx, c.EmployeeID, c.YearMonth, c.ID); err != nil {
		return nil, fmt.Errorf("failed to link variable items: %w", err)
	}
	return s.itemRepo.ListByConsolidation(ctx, c.ID)
}

type nopNotifier struct{}

func (nopNotifier) OnValidated(context.Context, consolidation.Consolidation)                 {}
func (nopNotifier) OnCorrected(context.Context, consolidation.Consolidation, string, string) {}
func (nopNotifier) OnReopened(context.Context, consolidation.Consolidation, string)          {}
