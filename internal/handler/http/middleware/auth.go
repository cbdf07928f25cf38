package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
)

// AuthRequired resolves the actor of a verified access token and stores it in
// the request context for the handlers.
func AuthRequired(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.Resolve(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
