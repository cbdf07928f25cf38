package counter

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== ADJUSTMENT DTOs ==========

type AdjustRequest struct {
	EmployeeID string          `json:"-"`
	Kind       Kind            `json:"-"`
	PeriodKey  string          `json:"-"`
	Delta      decimal.Decimal `json:"delta"`
	Comment    string          `json:"comment"`
}

func (r *AdjustRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "must be a valid UUID", r.EmployeeID)
	}
	if !r.Kind.Valid() {
		errs.Add("kind", "must be 'paid_leave' or 'annual'", string(r.Kind))
	} else if _, err := r.Kind.ParsePeriodKey(r.PeriodKey); err != nil {
		errs.Add("period_key", err.Error(), r.PeriodKey)
	}
	if r.Delta.IsZero() {
		errs.Add("delta", "must not be zero", r.Delta.String())
	}
	errs.AddPlaces("delta", r.Delta, AccrualPlaces)
	if validator.IsEmpty(r.Comment) {
		errs.Add("comment", "is required", r.Comment)
	}

	return errs.OrNil()
}

// ========== RESPONSE DTOs ==========

type MovementResponse struct {
	ID        string          `json:"id"`
	Kind      MovementKind    `json:"kind"`
	Days      decimal.Decimal `json:"days"`
	Source    string          `json:"source,omitempty"`
	Comment   *string         `json:"comment,omitempty"`
	ActorID   *string         `json:"actor_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type BalanceResponse struct {
	ID                string             `json:"id"`
	EmployeeID        string             `json:"employee_id"`
	Kind              Kind               `json:"kind"`
	PeriodKey         string             `json:"period_key"`
	InitialBalance    decimal.Decimal    `json:"initial_balance"`
	Accrued           decimal.Decimal    `json:"accrued"`
	Consumed          decimal.Decimal    `json:"consumed"`
	ManualAdjustment  decimal.Decimal    `json:"manual_adjustment"`
	AdjustmentComment *string            `json:"adjustment_comment,omitempty"`
	CurrentBalance    decimal.Decimal    `json:"current_balance"`
	Movements         []MovementResponse `json:"movements"`
}

func NewBalanceResponse(c LeaveCounter, movements []Movement) BalanceResponse {
	resp := BalanceResponse{
		ID:                c.ID,
		EmployeeID:        c.EmployeeID,
		Kind:              c.Kind,
		PeriodKey:         c.PeriodKey,
		InitialBalance:    c.InitialBalance,
		Accrued:           c.Accrued,
		Consumed:          c.Consumed,
		ManualAdjustment:  c.ManualAdjustment,
		AdjustmentComment: c.AdjustmentComment,
		CurrentBalance:    c.CurrentBalance(),
		Movements:         make([]MovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, MovementResponse{
			ID:        m.ID,
			Kind:      m.Kind,
			Days:      m.Days,
			Source:    m.Source,
			Comment:   m.Comment,
			ActorID:   m.ActorID,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp
}
