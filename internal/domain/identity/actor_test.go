package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, Actor{ID: "u1", Role: RoleAdmin}.RequireAdmin())

	assert.ErrorIs(t, Actor{ID: "u2", Role: RoleEmployee}.RequireAdmin(), ErrForbidden)
	assert.ErrorIs(t, Actor{Role: RoleAdmin}.RequireAdmin(), ErrUnauthenticated)
}

func TestActorContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{ID: "u1", Name: "Ana", Role: RoleAdmin})
	a, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ana", a.Name)
}
