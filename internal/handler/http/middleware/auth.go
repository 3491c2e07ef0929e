package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type ctxKey int

const (
	workerIDKey ctxKey = iota
	roleKey
)

// AuthRequired accepts only access tokens carrying a worker_id claim and
// stores the worker identity on the request context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Missing token")
			return
		}

		if typ, _ := claims["type"].(string); typ != jwt.TokenTypeAccess {
			response.Unauthorized(w, "Invalid token type")
			return
		}
		workerID, _ := claims["worker_id"].(string)
		if workerID == "" {
			response.HandleError(w, response.ErrMissingWorkerClaim)
			return
		}
		roleStr, _ := claims["role"].(string)
		role, _ := worker.ParseRole(roleStr)

		ctx := context.WithValue(r.Context(), workerIDKey, workerID)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WorkerID returns the authenticated worker, "" outside AuthRequired.
func WorkerID(ctx context.Context) string {
	id, _ := ctx.Value(workerIDKey).(string)
	return id
}

// Role returns the authenticated worker's role, "" when unknown.
func Role(ctx context.Context) worker.Role {
	role, _ := ctx.Value(roleKey).(worker.Role)
	return role
}

// WithWorker attaches a worker identity, for tests and internal callers.
func WithWorker(ctx context.Context, workerID string, role worker.Role) context.Context {
	ctx = context.WithValue(ctx, workerIDKey, workerID)
	return context.WithValue(ctx, roleKey, role)
}
