package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
)

// RequireSupervisor admits SUPERVISOR and ADMIN tokens.
func RequireSupervisor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Role(r.Context()).CanSupervise() {
			response.HandleError(w, response.ErrSupervisorRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
