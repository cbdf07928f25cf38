package variableitem

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type CreateRequest struct {
	EmployeeID  string          `json:"employee_id" validate:"required,uuid"`
	YearMonth   string          `json:"year_month" validate:"required,datetime=2006-01"`
	Category    Category        `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Label       string          `json:"label" validate:"required,max=255"`
	Description *string         `json:"description,omitempty"`
}

func (r *CreateRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Category != "" && !r.Category.Valid() {
		errs.Add("category", "is not a known category", string(r.Category))
	}
	if r.Amount.IsZero() {
		errs.Add("amount", "must not be zero", r.Amount.String())
	}
	errs.AddPlaces("amount", r.Amount, AmountPlaces)

	return errs.OrNil()
}

type UpdateRequest struct {
	ID          string           `json:"-"`
	Category    *Category        `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Label       *string          `json:"label,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "must be a valid UUID", r.ID)
	}
	if r.Category != nil && !r.Category.Valid() {
		errs.Add("category", "is not a known category", string(*r.Category))
	}
	if r.Amount != nil {
		if r.Amount.IsZero() {
			errs.Add("amount", "must not be zero", r.Amount.String())
		}
		errs.AddPlaces("amount", *r.Amount, AmountPlaces)
	}
	if r.Label != nil && validator.IsEmpty(*r.Label) {
		errs.Add("label", "must not be empty", *r.Label)
	}
	if r.Category == nil && r.Amount == nil && r.Label == nil && r.Description == nil {
		errs.Add("request", "nothing to update", nil)
	}

	return errs.OrNil()
}

type ListFilter struct {
	EmployeeID string
	YearMonth  calendar.YearMonth
}

// ========== RESPONSE DTOs ==========

type VariableItemResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	YearMonth       string          `json:"year_month"`
	ConsolidationID *string         `json:"consolidation_id,omitempty"`
	Category        Category        `json:"category"`
	ExpectedSign    int             `json:"expected_sign"`
	Amount          decimal.Decimal `json:"amount"`
	Label           string          `json:"label"`
	Description     *string         `json:"description,omitempty"`
	Status          Status          `json:"status"`
	ValidatedBy     *string         `json:"validated_by,omitempty"`
	ValidatedAt     *time.Time      `json:"validated_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewResponse(it VariableItem) VariableItemResponse {
	return VariableItemResponse{
		ID:              it.ID,
		EmployeeID:      it.EmployeeID,
		YearMonth:       it.YearMonth.String(),
		ConsolidationID: it.ConsolidationID,
		Category:        it.Category,
		ExpectedSign:    it.Category.ExpectedSign(),
		Amount:          it.Amount,
		Label:           it.Label,
		Description:     it.Description,
		Status:          it.Status,
		ValidatedBy:     it.ValidatedBy,
		ValidatedAt:     it.ValidatedAt,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}
