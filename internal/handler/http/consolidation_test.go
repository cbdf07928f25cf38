package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consolidateData struct {
	Outcome       consolidation.Outcome               `json:"outcome"`
	Consolidation consolidation.ConsolidationResponse `json:"consolidation"`
}

// consolidateJuly records July 2024 facts for emp and consolidates them.
func consolidateJuly(t *testing.T, s *testServer, employeeID string) consolidation.ConsolidationResponse {
	t.Helper()

	status, env := s.do(t, http.MethodPut, "/api/v1/employees/"+employeeID+"/facts/2024-07", &s.admin, map[string]interface{}{
		"shift_days":   "20",
		"event_days":   "1",
		"absence_days": map[string]string{"paid_leave": "1"},
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodPost, "/api/v1/consolidations", &s.admin, map[string]string{
		"employee_id": employeeID,
		"year_month":  "2024-07",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	var data consolidateData
	decodeData(t, env, &data)
	assert.Equal(t, consolidation.OutcomeCreated, data.Outcome)
	return data.Consolidation
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/v1/consolidations", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestConsolidationHandler_Consolidate(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	// Act
	c := consolidateJuly(t, s, emp.ID)

	// Assert
	assert.Equal(t, consolidation.StatusDraft, c.Status)
	assert.Equal(t, "21", c.DaysWorkedTotal.String())
	assert.Equal(t, "2.5", c.LeaveAccrued.String())
	assert.Equal(t, "1", c.LeaveConsumed.String())
	assert.Equal(t, "1.5", c.LeaveBalanceEnd.String())

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations", &s.admin, map[string]string{
		"employee_id": emp.ID,
		"year_month":  "2024-07",
	})
	require.Equal(t, http.StatusOK, status)
	var again consolidateData
	decodeData(t, env, &again)
	assert.Equal(t, consolidation.OutcomeUnchanged, again.Outcome)
	assert.Equal(t, c.ID, again.Consolidation.ID)
}

func TestConsolidationHandler_Consolidate_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations", &s.admin, map[string]string{
		"employee_id": "not-a-uuid",
		"year_month":  "July",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "employee_id")
	assert.Contains(t, env.Error.Details, "year_month")
}

func TestConsolidationHandler_CommandsAreAdminOnly(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	c := consolidateJuly(t, s, emp.ID)

	status, _ := s.do(t, http.MethodPost, "/api/v1/consolidations/"+c.ID+"/validate", &emp, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/consolidations", &emp, map[string]string{
		"employee_id": emp.ID,
		"year_month":  "2024-07",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestConsolidationHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	c := consolidateJuly(t, s, emp.ID)
	base := "/api/v1/consolidations/" + c.ID

	status, env := s.do(t, http.MethodPost, base+"/validate", &s.admin, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var validated consolidation.ConsolidationResponse
	decodeData(t, env, &validated)
	assert.Equal(t, consolidation.StatusValidated, validated.Status)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, s.admin.ID, *validated.ValidatedBy)

	t.Run("validating twice is an invalid state", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, base+"/validate", &s.admin, nil)
		assert.Equal(t, http.StatusConflict, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
		assert.Equal(t, "validated", env.Error.Details["current"])
	})

	t.Run("archive requires exported", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, base+"/archive", &s.admin, nil)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	status, env = s.do(t, http.MethodPost, base+"/export", &s.admin, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodGet, "/api/v1/exports/2024-07", &s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	var rows []consolidation.ExportRow
	decodeData(t, env, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "EMP-001", rows[0].EmployeeCode)
	assert.Equal(t, consolidation.StatusExported, rows[0].Status)

	status, _ = s.do(t, http.MethodPost, base+"/archive", &s.admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, base+"/audit", &s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	var trail []audit.EntryResponse
	decodeData(t, env, &trail)
	require.Len(t, trail, 4)
	assert.Equal(t, audit.ActionArchived, trail[0].Action)
	assert.Equal(t, audit.ActionCreated, trail[3].Action)
}

func TestConsolidationHandler_CorrectField(t *testing.T) {
	s := newTestServer(t)
	emp := s.hire(t, "EMP-001", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	c := consolidateJuly(t, s, emp.ID)

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations/"+c.ID+"/corrections", &s.admin, map[string]interface{}{
		"field":   "leave_consumed",
		"value":   "2",
		"comment": "late sick note",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	var corrected consolidation.ConsolidationResponse
	decodeData(t, env, &corrected)
	assert.Equal(t, "2", corrected.LeaveConsumed.String())
	assert.Equal(t, "0.5", corrected.LeaveBalanceEnd.String())

	status, env = s.do(t, http.MethodPost, "/api/v1/consolidations/"+c.ID+"/corrections", &s.admin, map[string]interface{}{
		"field":   "leave_balance_end",
		"value":   "9",
		"comment": "nope",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Error.Details, "field")
}

func TestConsolidationHandler_EmployeeSeesOnlyOwnRecords(t *testing.T) {
	s := newTestServer(t)
	hired := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	alice := s.hire(t, "EMP-001", hired)
	bob := s.hire(t, "EMP-002", hired)
	aliceJuly := consolidateJuly(t, s, alice.ID)
	consolidateJuly(t, s, bob.ID)

	status, env := s.do(t, http.MethodGet, "/api/v1/consolidations?year_month=2024-07", &alice, nil)
	require.Equal(t, http.StatusOK, status)
	var list []consolidation.ConsolidationResponse
	decodeData(t, env, &list)
	require.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].EmployeeID)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	status, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+alice.ID+"/consolidations/2024-07", &alice, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+alice.ID+"/consolidations/2024-07", &bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/consolidations/"+aliceJuly.ID, &bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/consolidations?year_month=2024-07", &s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	assert.Len(t, list, 2)
}

func TestConsolidationHandler_ConsolidateMonth(t *testing.T) {
	s := newTestServer(t)
	hired := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	s.hire(t, "EMP-001", hired)
	s.hire(t, "EMP-002", hired)
	s.hire(t, "EMP-003", time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC))

	status, env := s.do(t, http.MethodPost, "/api/v1/consolidations/batch", &s.admin, map[string]string{"year_month": "2024-07"})
	require.Equal(t, http.StatusOK, status, env.Error)

	var result consolidation.BatchResult
	decodeData(t, env, &result)
	assert.Equal(t, "2024-07", result.YearMonth)
	require.Len(t, result.Outcomes, 2)
	for _, o := range result.Outcomes {
		assert.Equal(t, consolidation.OutcomeCreated, o.Outcome)
	}
}
