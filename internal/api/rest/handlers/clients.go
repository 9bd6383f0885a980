package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
)

type ClientRepository interface {
	CreateClient(ctx context.Context, client *domain.Client) error
	GetClientByID(ctx context.Context, userID, id uuid.UUID) (*domain.Client, error)
	ListClients(ctx context.Context, userID uuid.UUID) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, userID, id uuid.UUID) error
}

// ClientHandler manages the user's client directory
type ClientHandler struct {
	repo   ClientRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewClientHandler(repo ClientRepository, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{repo: repo, now: time.Now, logger: logger}
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	client := new(domain.Client)
	if !decodeJSON(w, r, client) {
		return
	}
	client.ID = uuid.New()
	client.UserID = userID
	client.CreatedAt = time.Time{}

	if err := client.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid client", err)
		return
	}
	client.Touch(h.now().UTC())

	if err := h.repo.CreateClient(r.Context(), client); err != nil {
		writeError(w, r, h.logger, "failed to create client", err)
		return
	}

	response.JSONResponse(w, http.StatusCreated, client)
}

func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	clients, err := h.repo.ListClients(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "failed to list clients", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSONResponse(w, http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	client, ok := h.load(w, r)
	if !ok {
		return
	}

	id, userID, createdAt := client.ID, client.UserID, client.CreatedAt
	if !decodeJSON(w, r, client) {
		return
	}
	client.ID, client.UserID, client.CreatedAt = id, userID, createdAt

	if err := client.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid client", err)
		return
	}
	client.Touch(h.now().UTC())

	if err := h.repo.UpdateClient(r.Context(), client); err != nil {
		writeError(w, r, h.logger, "failed to update client", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteClient(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, "failed to delete client", err)
		return
	}

	response.NoContent(w)
}

func (h *ClientHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Client, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	client, err := h.repo.GetClientByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, "failed to get client", err)
		return nil, false
	}

	return client, true
}
