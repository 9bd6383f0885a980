package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/authn"
	"github.com/CameronXie/nsa-protrack/internal/domain"
)

type AccountRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, profile domain.Profile, now time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, now time.Time) error
}

type UpdateAccountRequest struct {
	Name    string         `json:"name"`
	Profile domain.Profile `json:"profile"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AccountHandler serves the signed-in user's own account
type AccountHandler struct {
	repo   AccountRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewAccountHandler(repo AccountRepository, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{repo: repo, now: time.Now, logger: logger}
}

// GetAccount handles GET /api/v1/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSONResponse(w, http.StatusOK, user)
}

// UpdateAccount handles PUT /api/v1/account. Email and roles cannot be changed here.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}

	req := UpdateAccountRequest{Name: user.Name, Profile: user.Profile}
	if !decodeJSON(w, r, &req) {
		return
	}

	user.Name = req.Name
	user.Profile = req.Profile
	if err := user.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid account", err)
		return
	}

	now := h.now().UTC()
	if err := h.repo.UpdateProfile(r.Context(), user.ID, user.Name, user.Profile, now); err != nil {
		writeError(w, r, h.logger, "failed to update account", err)
		return
	}
	user.UpdatedAt = now

	response.JSONResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/v1/account/password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !authn.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		response.ValidationErrorResponse(w, map[string]string{"currentPassword": "is incorrect"})
		return
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		response.ValidationErrorResponse(w, map[string]string{"newPassword": "must be at least 8 characters"})
		return
	}

	hash, err := authn.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, h.logger, "failed to hash password", err)
		return
	}

	if err := h.repo.UpdatePasswordHash(r.Context(), user.ID, hash, h.now().UTC()); err != nil {
		writeError(w, r, h.logger, "failed to update password", err)
		return
	}

	h.logger.InfoContext(r.Context(), "password_changed", "user_id", user.ID)
	response.NoContent(w)
}

func (h *AccountHandler) load(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}

	user, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "failed to get account", err)
		return nil, false
	}

	return user, true
}
