package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineStub records ConsolidateMonth calls; the other operations are unused here.
type engineStub struct {
	consolidation.Engine

	mu     sync.Mutex
	calls  []consolidation.ConsolidateMonthRequest
	actors []identity.Actor
	result consolidation.BatchResult
	err    error
}

func (e *engineStub) ConsolidateMonth(_ context.Context, req consolidation.ConsolidateMonthRequest, actor identity.Actor) (consolidation.BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, req)
	e.actors = append(e.actors, actor)
	return e.result, e.err
}

func (e *engineStub) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func TestLedgerJobs_RefreshOpenMonth(t *testing.T) {
	stub := &engineStub{}
	jobs := NewLedgerJobs(stub, time.Hour)
	jobs.now = func() time.Time { return time.Date(2024, time.July, 18, 3, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.RefreshOpenMonth(context.Background()))

	require.Len(t, stub.calls, 1)
	assert.Equal(t, calendar.NewYearMonth(2024, time.July).String(), stub.calls[0].YearMonth)
	assert.Equal(t, SchedulerActor, stub.actors[0])
	assert.True(t, stub.actors[0].IsAdmin())
}

func TestLedgerJobs_RefreshOpenMonth_ReportsFailures(t *testing.T) {
	stub := &engineStub{result: consolidation.BatchResult{
		Outcomes: []consolidation.EmployeeOutcome{
			{EmployeeID: "a", Outcome: consolidation.OutcomeRefreshed},
			{EmployeeID: "b", Outcome: consolidation.OutcomeFailed, Error: "boom"},
			{EmployeeID: "c", Outcome: consolidation.OutcomeSkipped},
		},
	}}
	jobs := NewLedgerJobs(stub, time.Hour)

	err := jobs.RefreshOpenMonth(context.Background())
	assert.ErrorContains(t, err, "1 employee(s) failed")

	stub.err = errors.New("database down")
	stub.result = consolidation.BatchResult{}
	err = jobs.RefreshOpenMonth(context.Background())
	assert.ErrorContains(t, err, "database down")
}

func TestLedgerJobs_RegisterJobs(t *testing.T) {
	scheduler := NewScheduler()
	NewLedgerJobs(&engineStub{}, 0).RegisterJobs(scheduler)
	assert.Equal(t, 0, scheduler.Len())

	NewLedgerJobs(&engineStub{}, time.Minute).RegisterJobs(scheduler)
	assert.Equal(t, 1, scheduler.Len())
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	stub := &engineStub{}
	scheduler := NewScheduler()
	NewLedgerJobs(stub, time.Hour).RegisterJobs(scheduler)

	scheduler.Start(context.Background())
	require.Eventually(t, func() bool { return stub.callCount() == 1 }, time.Second, 5*time.Millisecond)
	scheduler.Stop()

	assert.Equal(t, 1, stub.callCount())
}

func TestScheduler_RunOnce_JoinsErrors(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("ok", time.Hour, func(context.Context) error { return nil })
	scheduler.AddJob("broken", time.Hour, func(context.Context) error { return errors.New("boom") })

	err := scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.NotContains(t, err.Error(), "ok:")
}
