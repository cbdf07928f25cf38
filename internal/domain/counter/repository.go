package counter

import (
	"context"
)

type LeaveCounterRepository interface {
	// CreateIfAbsent inserts c unless a counter already exists for its
	// (employee, kind, period); it reports whether c was inserted.
	CreateIfAbsent(ctx context.Context, c *LeaveCounter) (bool, error)
	Get(ctx context.Context, employeeID string, kind Kind, periodKey string) (LeaveCounter, error)
	// GetForUpdate locks the counter row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, employeeID string, kind Kind, periodKey string) (LeaveCounter, error)
	// AddMovement records m and adds its amount to the matching component in one
	// statement, returning the updated counter.
	AddMovement(ctx context.Context, m *Movement) (LeaveCounter, error)
	Movements(ctx context.Context, counterID string) ([]Movement, error)
}
