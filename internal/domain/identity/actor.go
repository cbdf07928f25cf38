package identity

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

var (
	ErrUnauthenticated = errors.New("no authenticated actor")
	ErrUnknownRole     = errors.New("unknown actor role")
	ErrForbidden       = errors.New("administrator role required")
)

// Actor is the party a command is performed for; it is stamped into audit entries.
type Actor struct {
	ID   string
	Name string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAdmin fails unless a is an identified administrator.
func (a Actor) RequireAdmin() error {
	if validator.IsEmpty(a.ID) {
		return ErrUnauthenticated
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Resolver resolves the acting party of the current request.
type Resolver interface {
	Resolve(ctx context.Context) (Actor, error)
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
