package consolidation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/absence"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/repository/memory"
	countersvc "github.com/cmlabs-hris/payroll-ledger-go/internal/service/counter"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var admin = identity.Actor{ID: uuid.New().String(), Name: "Payroll Admin", Role: identity.RoleAdmin}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func month(year int, m time.Month) calendar.YearMonth {
	return calendar.NewYearMonth(year, m)
}

type notifierSpy struct {
	mu        sync.Mutex
	validated []string
	corrected []string
	reopened  []string
}

func (n *notifierSpy) OnValidated(_ context.Context, c consolidation.Consolidation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.validated = append(n.validated, c.ID)
}

func (n *notifierSpy) OnCorrected(_ context.Context, _ consolidation.Consolidation, field, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.corrected = append(n.corrected, field)
}

func (n *notifierSpy) OnReopened(_ context.Context, _ consolidation.Consolidation, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reopened = append(n.reopened, reason)
}

type fixture struct {
	engine    consolidation.Engine
	store     *memory.Store
	repo      consolidation.ConsolidationRepository
	items     variableitem.VariableItemRepository
	auditRepo audit.AuditRepository
	employees employee.EmployeeRepository
	counters  counter.LeaveCounterService
	facts     *memory.FactsRepository
	notifier  *notifierSpy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		repo:      memory.NewConsolidationRepository(store),
		items:     memory.NewVariableItemRepository(store),
		auditRepo: memory.NewAuditRepository(store),
		employees: memory.NewEmployeeRepository(store),
		facts:     memory.NewFactsRepository(store),
		notifier:  &notifierSpy{},
	}
	f.counters = countersvc.NewLeaveCounterService(store, memory.NewLeaveCounterRepository(store), f.employees)

	rules := Rules{
		PaidLeaveRate:    d("2.5"),
		PaidLeaveStart:   time.June,
		AnnualAllocation: d("10"),
		Absences: absence.NewTable(
			absence.Type{Code: "paid_leave", Label: "Paid leave", Counter: counter.KindPaidLeave},
			absence.Type{Code: "annual_leave", Label: "Annual leave day", Counter: counter.KindAnnual},
			absence.Type{Code: "sick", Label: "Sick leave", RequiresJustification: true},
		),
		BatchConcurrency: 3,
	}
	f.engine = NewConsolidationEngine(store, f.repo, f.items, f.auditRepo, f.employees,
		f.counters, f.facts, f.facts, f.notifier, rules)

	var mu sync.Mutex
	clock := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)
	f.engine.(*ConsolidationEngineImpl).now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func (f *fixture) hire(t *testing.T, code string, hireDate time.Time) employee.Employee {
	t.Helper()
	emp := employee.Employee{
		ID:           uuid.New().String(),
		EmployeeCode: code,
		FullName:     "Employee " + code,
		HireDate:     hireDate,
	}
	require.NoError(t, f.employees.Create(context.Background(), &emp))
	return emp
}

func (f *fixture) consolidate(t *testing.T, emp employee.Employee, ym calendar.YearMonth) consolidation.ConsolidateResult {
	t.Helper()
	res, err := f.engine.Consolidate(context.Background(), consolidation.ConsolidateRequest{
		EmployeeID: emp.ID,
		YearMonth:  ym.String(),
	}, admin)
	require.NoError(t, err)
	return res
}

func (f *fixture) absent(t *testing.T, emp employee.Employee, ym calendar.YearMonth, days map[string]decimal.Decimal) {
	t.Helper()
	require.NoError(t, f.facts.RecordAbsenceDays(context.Background(), emp.ID, ym, days))
}

func (f *fixture) addItem(t *testing.T, emp employee.Employee, ym calendar.YearMonth, amount string, status variableitem.Status) variableitem.VariableItem {
	t.Helper()
	now := time.Now()
	item := variableitem.VariableItem{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		YearMonth:  ym,
		Category:   variableitem.CategoryBonus,
		Amount:     d(amount),
		Label:      "Bonus",
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.items.Create(context.Background(), &item))
	return item
}

func (f *fixture) trail(t *testing.T, id string) []audit.Entry {
	t.Helper()
	entries, err := f.engine.AuditTrail(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func (f *fixture) get(t *testing.T, id string) consolidation.Consolidation {
	t.Helper()
	c, err := f.engine.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

// reach drives a fresh consolidation of emp for ym into status.
func (f *fixture) reach(t *testing.T, emp employee.Employee, ym calendar.YearMonth, status consolidation.Status) consolidation.Consolidation {
	t.Helper()
	ctx := context.Background()
	c := f.consolidate(t, emp, ym).Consolidation
	if status == consolidation.StatusDraft {
		return c
	}

	c, err := f.engine.Validate(ctx, consolidation.ValidateRequest{ID: c.ID}, admin)
	require.NoError(t, err)
	if status == consolidation.StatusValidated {
		return c
	}

	c, err = f.engine.MarkExported(ctx, c.ID, admin)
	require.NoError(t, err)
	if status == consolidation.StatusExported {
		return c
	}

	c, err = f.engine.Archive(ctx, c.ID, admin)
	require.NoError(t, err)
	return c
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
