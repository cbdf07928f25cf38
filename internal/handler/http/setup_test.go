package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/config"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/repository/memory"
	consolidationService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/consolidation"
	counterService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/counter"
	notificationService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/notification"
	variableItemService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/variableitem"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	router    *chi.Mux
	jwt       jwt.Service
	employees employee.EmployeeRepository
	admin     identity.Actor
}

// envelope mirrors response.Response with the payload kept raw.
type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
	Meta    *response.Meta        `json:"meta"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	employeeRepo := memory.NewEmployeeRepository(store)
	consolidationRepo := memory.NewConsolidationRepository(store)
	itemRepo := memory.NewVariableItemRepository(store)
	factsRepo := memory.NewFactsRepository(store)

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(memory.NewNotificationRepository(store), hub, notificationService.Config{
		BatchSize:     1,
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
		QueueSize:     100,
	})
	t.Cleanup(func() {
		notifSvc.Stop()
		hub.Close()
	})

	policy, err := config.LoadPolicy("")
	require.NoError(t, err)

	auditRepo := memory.NewAuditRepository(store)
	counters := counterService.NewLeaveCounterService(store, memory.NewLeaveCounterRepository(store), employeeRepo)
	engine := consolidationService.NewConsolidationEngine(
		store,
		consolidationRepo,
		itemRepo,
		auditRepo,
		employeeRepo,
		counters,
		factsRepo,
		factsRepo,
		notificationService.NewLedgerNotifier(notifSvc),
		consolidationService.NewRules(policy, 2),
	)
	items := variableItemService.NewVariableItemService(store, itemRepo, employeeRepo, consolidationService.NewItemGate(consolidationRepo, itemRepo, auditRepo))
	facts := consolidationService.NewFactsService(store, factsRepo, employeeRepo)

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	router := NewRouter(
		config.AppConfig{Env: "test"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		jwtSvc,
		NewConsolidationHandler(engine),
		NewCounterHandler(counters),
		NewVariableItemHandler(items),
		NewFactsHandler(facts),
		NewNotificationHandler(notifSvc, jwtSvc),
	)

	return &testServer{
		router:    router,
		jwt:       jwtSvc,
		employees: employeeRepo,
		admin:     identity.Actor{ID: uuid.New().String(), Name: "Payroll Admin", Role: identity.RoleAdmin},
	}
}

// hire registers an employee and returns the actor the employee authenticates as.
func (s *testServer) hire(t *testing.T, code string, hireDate time.Time) identity.Actor {
	t.Helper()
	e := &employee.Employee{
		ID:           uuid.New().String(),
		EmployeeCode: code,
		FullName:     "Employee " + code,
		HireDate:     hireDate,
	}
	require.NoError(t, s.employees.Create(context.Background(), e))
	return identity.Actor{ID: e.ID, Name: e.FullName, Role: identity.RoleEmployee}
}

// do performs a request as actor; a nil actor sends no Authorization header.
func (s *testServer) do(t *testing.T, method, path string, actor *identity.Actor, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, _, err := s.jwt.GenerateAccessToken(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
