package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Service interface {
	GenerateAccessToken(actor identity.Actor) (token string, expiresAt int64, err error)
	// GenerateSSEToken issues a short-lived token for EventSource clients, which
	// cannot send an Authorization header.
	GenerateSSEToken(actor identity.Actor) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (identity.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpirationTime: expiration,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) GenerateAccessToken(actor identity.Actor) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()
	token, err = j.encode(actor, TokenTypeAccess, expiresAt)
	return token, expiresAt, err
}

func (j *JWTService) GenerateSSEToken(actor identity.Actor) (token string, expiresIn int, err error) {
	token, err = j.encode(actor, TokenTypeSSE, time.Now().Add(sseTokenTTL).Unix())
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the actor it was issued for
func (j *JWTService) ValidateSSEToken(tokenString string) (identity.Actor, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return identity.Actor{}, ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return identity.Actor{}, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return identity.Actor{}, ErrInvalidToken
	}
	return ActorFromClaims(claims)
}

func (j *JWTService) encode(actor identity.Actor, tokenType string, expiresAt int64) (string, error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  actor.ID,
		"name": actor.Name,
		"role": string(actor.Role),
		"type": tokenType,
		"exp":  expiresAt,
	})
	return tokenString, err
}

// ActorFromClaims maps verified token claims to the acting party.
func ActorFromClaims(claims map[string]interface{}) (identity.Actor, error) {
	id, _ := claims["sub"].(string)
	if id == "" {
		return identity.Actor{}, identity.ErrUnauthenticated
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	actor := identity.Actor{ID: id, Name: name, Role: identity.Role(role)}
	if actor.Role != identity.RoleAdmin && actor.Role != identity.RoleEmployee {
		return identity.Actor{}, identity.ErrUnknownRole
	}
	return actor, nil
}

// Resolver resolves the actor from the token verified by jwtauth.Verifier.
type Resolver struct{}

var _ identity.Resolver = Resolver{}

func (Resolver) Resolve(ctx context.Context) (identity.Actor, error) {
	if actor, ok := identity.FromContext(ctx); ok {
		return actor, nil
	}

	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return identity.Actor{}, identity.ErrUnauthenticated
	}
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeAccess {
		return identity.Actor{}, ErrInvalidToken
	}
	return ActorFromClaims(claims)
}
