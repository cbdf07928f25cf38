package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/response"
)

// actorFromRequest returns the actor stored by middleware.AuthRequired
func actorFromRequest(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return identity.Actor{}, false
	}
	return actor, true
}

// decodeBody decodes the JSON request body into dst, answering 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// canRead reports whether actor may see data of employeeID
func canRead(actor identity.Actor, employeeID string) bool {
	return actor.IsAdmin() || actor.ID == employeeID
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
