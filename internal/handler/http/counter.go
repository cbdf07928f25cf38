package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/go-chi/chi/v5"
)

type CounterHandler interface {
	Balance(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
}

type counterHandlerImpl struct {
	counters counter.LeaveCounterService
}

func NewCounterHandler(counters counter.LeaveCounterService) CounterHandler {
	return &counterHandlerImpl{counters: counters}
}

// Balance returns the counter with its movements.
func (h *counterHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	kind := counter.Kind(chi.URLParam(r, "kind"))
	periodKey := chi.URLParam(r, "periodKey")
	if !canRead(actor, employeeID) {
		response.HandleError(w, apperr.NotFound(counter.Resource, counter.Key(employeeID, kind, periodKey)))
		return
	}

	balance, err := h.counters.Balance(r.Context(), employeeID, kind, periodKey)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balance)
}

// Adjust applies a manual adjustment.
func (h *counterHandlerImpl) Adjust(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req counter.AdjustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Kind = counter.Kind(chi.URLParam(r, "kind"))
	req.PeriodKey = chi.URLParam(r, "periodKey")

	if _, err := h.counters.Adjust(r.Context(), req, actor); err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := h.counters.Balance(r.Context(), req.EmployeeID, req.Kind, req.PeriodKey)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave counter adjusted", balance)
}
