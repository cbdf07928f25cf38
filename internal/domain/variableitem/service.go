package variableitem

import (
	"context"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
)

type VariableItemService interface {
	Create(ctx context.Context, req CreateRequest, actor identity.Actor) (VariableItem, error)
	Update(ctx context.Context, req UpdateRequest, actor identity.Actor) (VariableItem, error)
	Delete(ctx context.Context, id string, actor identity.Actor) error
	Validate(ctx context.Context, id string, actor identity.Actor) (VariableItem, error)
	GetByID(ctx context.Context, id string) (VariableItem, error)
	List(ctx context.Context, filter ListFilter) ([]VariableItem, error)
}
