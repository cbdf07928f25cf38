package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = identity.Actor{ID: "5f0c6c3e-8f1b-4a47-9a53-2d4f5ab0d001", Name: "Payroll Admin", Role: identity.RoleAdmin}

func newService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidExpiration(t *testing.T) {
	_, err := NewJWTService("secret", "soon")
	assert.Error(t, err)
}

func TestResolver_ResolvesVerifiedAccessToken(t *testing.T) {
	// Arrange
	svc := newService(t)
	token, _, err := svc.GenerateAccessToken(admin)
	require.NoError(t, err)

	var resolved identity.Actor
	var resolveErr error
	handler := jwtauth.Verifier(svc.JWTAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, resolveErr = Resolver{}.Resolve(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Assert
	require.NoError(t, resolveErr)
	assert.Equal(t, admin, resolved)
}

func TestResolver_RejectsSSETokenAsAccessToken(t *testing.T) {
	svc := newService(t)
	token, _, err := svc.GenerateSSEToken(admin)
	require.NoError(t, err)

	var resolveErr error
	handler := jwtauth.Verifier(svc.JWTAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, resolveErr = Resolver{}.Resolve(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.ErrorIs(t, resolveErr, ErrInvalidToken)
}

func TestResolver_WithoutToken(t *testing.T) {
	_, err := Resolver{}.Resolve(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)

	ctx := identity.WithActor(context.Background(), admin)
	actor, err := Resolver{}.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, actor.ID)
}

func TestValidateSSEToken(t *testing.T) {
	svc := newService(t)

	sseToken, expiresIn, err := svc.GenerateSSEToken(admin)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	actor, err := svc.ValidateSSEToken(sseToken)
	require.NoError(t, err)
	assert.Equal(t, admin, actor)

	accessToken, _, err := svc.GenerateAccessToken(admin)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorFromClaims(t *testing.T) {
	_, err := ActorFromClaims(map[string]interface{}{"role": "admin"})
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)

	_, err = ActorFromClaims(map[string]interface{}{"sub": "u1", "role": "owner"})
	assert.ErrorIs(t, err, identity.ErrUnknownRole)

	actor, err := ActorFromClaims(map[string]interface{}{"sub": "u1", "role": "employee"})
	require.NoError(t, err)
	assert.False(t, actor.IsAdmin())
}
