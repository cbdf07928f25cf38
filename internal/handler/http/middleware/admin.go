package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.FromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		if !actor.IsAdmin() {
			response.Forbidden(w, "Administrator access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
