package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/enforcer"
)

const (
	forbiddenCode              = "forbidden"
	forbiddenMessage           = "You do not have access to this resource"
	internalServerErrorCode    = "internal_error"
	internalServerErrorMessage = "An internal error occurred"
)

// AuthorizationMiddleware asks the enforcer whether the authenticated user may call the route.
// It must run after JWTAuthMiddleware.
type AuthorizationMiddleware struct {
	enforcer enforcer.Enforcer
	logger   *slog.Logger
}

func (m *AuthorizationMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok || userID == "" {
			response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedCode, unauthorizedMessage)
			return
		}

		allowed, err := m.enforcer.Enforce(
			r.Context(),
			&enforcer.AccessRequest{
				Subject:  userID,
				Resource: r.URL.Path,
				Action:   r.Method,
			},
		)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to enforce access policy", "user_id", userID, "error", err)
			response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorCode, internalServerErrorMessage)
			return
		}

		if !allowed {
			m.logger.WarnContext(r.Context(), "access_denied", "user_id", userID, "method", r.Method, "path", r.URL.Path)
			response.JSONErrorResponse(w, http.StatusForbidden, forbiddenCode, forbiddenMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewAuthorizationMiddleware(e enforcer.Enforcer, logger *slog.Logger) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		enforcer: e,
		logger:   logger,
	}
}
