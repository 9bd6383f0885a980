package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const (
	defaultExpiringDays = 30
	maxExpiringDays     = 3650
)

type CredentialRepository interface {
	CreateCredential(ctx context.Context, c *domain.Credential) error
	GetCredentialByID(ctx context.Context, userID, id uuid.UUID) (*domain.Credential, error)
	ListCredentials(ctx context.Context, userID uuid.UUID) ([]*domain.Credential, error)
	ListExpiring(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Credential, error)
	UpdateCredential(ctx context.Context, c *domain.Credential) error
	DeleteCredential(ctx context.Context, userID, id uuid.UUID) error
}

// CredentialHandler manages commissions, policies, and platform logins
type CredentialHandler struct {
	repo   CredentialRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewCredentialHandler(repo CredentialRepository, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{repo: repo, now: time.Now, logger: logger}
}

func (h *CredentialHandler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	c := new(domain.Credential)
	if !decodeJSON(w, r, c) {
		return
	}
	c.ID = uuid.New()
	c.UserID = userID
	c.CreatedAt = time.Time{}

	if err := c.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid credential", err)
		return
	}
	c.Touch(h.now().UTC())

	if err := h.repo.CreateCredential(r.Context(), c); err != nil {
		writeError(w, r, h.logger, "failed to create credential", err)
		return
	}

	response.JSONResponse(w, http.StatusCreated, c)
}

func (h *CredentialHandler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	creds, err := h.repo.ListCredentials(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "failed to list credentials", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, creds)
}

// ExpiringCredentials handles GET /api/v1/credentials/expiring?days=30
func (h *CredentialHandler) ExpiringCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	days := defaultExpiringDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxExpiringDays {
			badRequest(w, "days must be a whole number between 0 and 3650")
			return
		}
		days = n
	}

	now := h.now()
	window := time.Duration(days) * 24 * time.Hour
	from := domain.NewDate(now).Time
	to := from.Add(window)

	creds, err := h.repo.ListExpiring(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, h.logger, "failed to list expiring credentials", err)
		return
	}

	expiring := make([]*domain.Credential, 0, len(creds))
	for _, c := range creds {
		if c.ExpiresWithin(now, window) {
			expiring = append(expiring, c)
		}
	}

	response.JSONResponse(w, http.StatusOK, expiring)
}

func (h *CredentialHandler) GetCredential(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSONResponse(w, http.StatusOK, c)
}

func (h *CredentialHandler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}

	id, userID, createdAt := c.ID, c.UserID, c.CreatedAt
	if !decodeJSON(w, r, c) {
		return
	}
	c.ID, c.UserID, c.CreatedAt = id, userID, createdAt

	if err := c.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid credential", err)
		return
	}
	c.Touch(h.now().UTC())

	if err := h.repo.UpdateCredential(r.Context(), c); err != nil {
		writeError(w, r, h.logger, "failed to update credential", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, c)
}

func (h *CredentialHandler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteCredential(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, "failed to delete credential", err)
		return
	}

	response.NoContent(w)
}

func (h *CredentialHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Credential, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	c, err := h.repo.GetCredentialByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, "failed to get credential", err)
		return nil, false
	}

	return c, true
}
