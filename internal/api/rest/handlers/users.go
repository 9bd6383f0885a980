package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// UserHandler exposes the user directory to administrators
type UserHandler struct {
	repo   UserLister
	logger *slog.Logger
}

func NewUserHandler(repo UserLister, logger *slog.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "failed to list users", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, users)
}
