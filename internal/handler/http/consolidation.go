package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ConsolidationHandler interface {
	// Commands
	Consolidate(w http.ResponseWriter, r *http.Request)
	ConsolidateMonth(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	Reopen(w http.ResponseWriter, r *http.Request)
	CorrectField(w http.ResponseWriter, r *http.Request)
	CorrectVariableItem(w http.ResponseWriter, r *http.Request)
	MarkExported(w http.ResponseWriter, r *http.Request)
	MarkSentToAccountant(w http.ResponseWriter, r *http.Request)
	Archive(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Queries
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetByEmployeeMonth(w http.ResponseWriter, r *http.Request)
	AuditTrail(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type consolidationHandlerImpl struct {
	engine consolidation.Engine
}

func NewConsolidationHandler(engine consolidation.Engine) ConsolidationHandler {
	return &consolidationHandlerImpl{engine: engine}
}

// Consolidate implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Consolidate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.ConsolidateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.engine.Consolidate(r.Context(), req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := map[string]interface{}{
		"outcome":       result.Outcome,
		"consolidation": consolidation.NewResponse(result.Consolidation),
	}
	if result.Outcome == consolidation.OutcomeCreated {
		response.Created(w, "Consolidation created", data)
		return
	}
	response.Success(w, data)
}

// ConsolidateMonth implements ConsolidationHandler.
func (h *consolidationHandlerImpl) ConsolidateMonth(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.ConsolidateMonthRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.engine.ConsolidateMonth(r.Context(), req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Validate implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.ValidateRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	h.respond(w, "Consolidation validated")(h.engine.Validate(r.Context(), req, actor))
}

// Reopen implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.ReopenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	h.respond(w, "Consolidation reopened")(h.engine.Reopen(r.Context(), req, actor))
}

// CorrectField implements ConsolidationHandler.
func (h *consolidationHandlerImpl) CorrectField(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.CorrectFieldRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	h.respond(w, "Correction recorded")(h.engine.CorrectField(r.Context(), req, actor))
}

// CorrectVariableItem implements ConsolidationHandler.
func (h *consolidationHandlerImpl) CorrectVariableItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req consolidation.CorrectVariableItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ItemID = chi.URLParam(r, "itemID")

	h.respond(w, "Variable item corrected")(h.engine.CorrectVariableItem(r.Context(), req, actor))
}

// MarkExported implements ConsolidationHandler.
func (h *consolidationHandlerImpl) MarkExported(w http.ResponseWriter, r *http.Request) {
	h.stamp(w, r, "Consolidation exported", h.engine.MarkExported)
}

// MarkSentToAccountant implements ConsolidationHandler.
func (h *consolidationHandlerImpl) MarkSentToAccountant(w http.ResponseWriter, r *http.Request) {
	h.stamp(w, r, "Consolidation sent to accountant", h.engine.MarkSentToAccountant)
}

// Archive implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Archive(w http.ResponseWriter, r *http.Request) {
	h.stamp(w, r, "Consolidation archived", h.engine.Archive)
}

// Delete implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Consolidation deleted", nil)
}

// List implements ConsolidationHandler. Employees only ever see their own records.
func (h *consolidationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := consolidation.ListFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 50),
	}

	if v := query.Get("year_month"); v != "" {
		ym, err := calendar.ParseYearMonth(v)
		if err != nil {
			response.HandleError(w, validator.Single("year_month", "must be in YYYY-MM format", v))
			return
		}
		filter.YearMonth = &ym
	}
	if v := query.Get("status"); v != "" {
		status := consolidation.Status(v)
		filter.Status = &status
	}
	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if !actor.IsAdmin() {
		own := actor.ID
		filter.EmployeeID = &own
	}

	items, total, err := h.engine.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.Normalize()

	out := make([]consolidation.ConsolidationResponse, 0, len(items))
	for _, c := range items {
		out = append(out, consolidation.NewResponse(c))
	}

	response.SuccessWithMeta(w, out, response.NewMeta(filter.Page, filter.Limit, total))
}

// GetByID implements ConsolidationHandler.
func (h *consolidationHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.engine.GetByID(r.Context(), id)
	if err == nil && !canRead(actor, c.EmployeeID) {
		err = apperr.NotFound(consolidation.Resource, id)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, consolidation.NewResponse(c))
}

// GetByEmployeeMonth implements ConsolidationHandler.
func (h *consolidationHandlerImpl) GetByEmployeeMonth(w http.ResponseWriter, r *http.Request) {
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
		response.HandleError(w, apperr.NotFound(consolidation.Resource, consolidation.Key(employeeID, ym)))
		return
	}

	c, err := h.engine.GetByEmployeeMonth(r.Context(), employeeID, ym)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, consolidation.NewResponse(c))
}

// AuditTrail implements ConsolidationHandler.
func (h *consolidationHandlerImpl) AuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.AuditTrail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, audit.NewEntryResponse(e))
	}
	response.Success(w, out)
}

// Export implements ConsolidationHandler.
func (h *consolidationHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "yearMonth")
	ym, err := calendar.ParseYearMonth(raw)
	if err != nil {
		response.HandleError(w, validator.Single("year_month", "must be in YYYY-MM format", raw))
		return
	}

	rows, err := h.engine.ExportRows(r.Context(), ym)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rows)
}

func (h *consolidationHandlerImpl) stamp(w http.ResponseWriter, r *http.Request, message string,
	op func(ctx context.Context, id string, actor identity.Actor) (consolidation.Consolidation, error),
) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	h.respond(w, message)(op(r.Context(), chi.URLParam(r, "id"), actor))
}

// respond writes the outcome of a command returning the updated record.
func (h *consolidationHandlerImpl) respond(w http.ResponseWriter, message string) func(consolidation.Consolidation, error) {
	return func(c consolidation.Consolidation, err error) {
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, message, consolidation.NewResponse(c))
	}
}
