package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type FactsHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type factsHandlerImpl struct {
	facts consolidation.FactsService
}

func NewFactsHandler(facts consolidation.FactsService) FactsHandler {
	return &factsHandlerImpl{facts: facts}
}

// Record stores the worked and absence days of one employee month.
func (h *factsHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.RecordFactsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.YearMonth = chi.URLParam(r, "yearMonth")

	facts, err := h.facts.Record(r.Context(), req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Facts recorded", facts)
}

func (h *factsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	raw := chi.URLParam(r, "yearMonth")
	ym, err := calendar.ParseYearMonth(raw)
	if err != nil {
		response.HandleError(w, validator.Single("year_month", "must be in YYYY-MM format", raw))
		return
	}

	if !canRead(actor, employeeID) {
		response.HandleError(w, apperr.NotFound("employee", employeeID))
		return
	}

	facts, err := h.facts.Get(r.Context(), employeeID, ym)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, facts)
}
