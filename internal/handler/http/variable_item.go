package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type VariableItemHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
}

type variableItemHandlerImpl struct {
	items variableitem.VariableItemService
}

func NewVariableItemHandler(items variableitem.VariableItemService) VariableItemHandler {
	return &variableItemHandlerImpl{items: items}
}

// Create implements VariableItemHandler.
func (h *variableItemHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req variableitem.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := h.items.Create(r.Context(), req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Variable item created", variableitem.NewResponse(it))
}

// List implements VariableItemHandler.
func (h *variableItemHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := variableitem.ListFilter{EmployeeID: query.Get("employee_id")}
	if raw := query.Get("year_month"); raw != "" {
		ym, err := calendar.ParseYearMonth(raw)
		if err != nil {
			response.HandleError(w, validator.Single("year_month", "must be in YYYY-MM format", raw))
			return
		}
		filter.YearMonth = ym
	}
	if !actor.IsAdmin() {
		filter.EmployeeID = actor.ID
	}

	items, err := h.items.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]variableitem.VariableItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, variableitem.NewResponse(it))
	}
	response.Success(w, out)
}

// GetByID implements VariableItemHandler.
func (h *variableItemHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	it, err := h.items.GetByID(r.Context(), id)
	if err == nil && !canRead(actor, it.EmployeeID) {
		err = apperr.NotFound(variableitem.Resource, id)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, variableitem.NewResponse(it))
}

// Update implements VariableItemHandler.
func (h *variableItemHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req variableitem.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	it, err := h.items.Update(r.Context(), req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Variable item updated", variableitem.NewResponse(it))
}

// Delete implements VariableItemHandler.
func (h *variableItemHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Variable item deleted", nil)
}

// Validate implements VariableItemHandler.
func (h *variableItemHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	it, err := h.items.Validate(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Variable item validated", variableitem.NewResponse(it))
}
