package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const defaultNearbyRadiusKm = 50

// OrderRepository defines the interface for order repository operations
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter) ([]*domain.Order, error)
	ListOrdersNear(ctx context.Context, userID uuid.UUID, lng, lat, radiusKm float64) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, userID, id uuid.UUID) error
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type ConfirmOrderRequest struct {
	ConfirmedBy string `json:"confirmedBy"`
	Notes       string `json:"notes"`
	MessageLeft bool   `json:"messageLeft"`
}

// OrderHandler handles HTTP requests for signing orders
type OrderHandler struct {
	repo   OrderRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewOrderHandler(repo OrderRepository, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	order := new(domain.Order)
	if !decodeJSON(w, r, order) {
		return
	}

	order.ID = uuid.New()
	order.UserID = userID
	order.CreatedAt = time.Time{}
	order.ApplyDefaults()
	if err := order.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid order", err)
		return
	}
	order.Touch(h.now().UTC())

	if err := h.repo.CreateOrder(r.Context(), order); err != nil {
		writeError(w, r, h.logger, "failed to create order", err)
		return
	}

	h.logger.InfoContext(r.Context(), "order_created", "order_id", order.ID, "user_id", userID)
	response.JSONResponse(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?status=&from=&to=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var filter repository.OrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := domain.ParseOrderStatus(s)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		filter.Status = status
	}

	from, err := queryDate(r, "from")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if from != nil {
		filter.From = from.Time
	}
	if to != nil {
		filter.To = to.Time
	}

	orders, err := h.repo.ListOrders(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, h.logger, "failed to list orders", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, orders)
}

// NearbyOrders handles GET /api/v1/orders/nearby?lng=&lat=&radius=
func (h *OrderHandler) NearbyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Get("lng") == "" || q.Get("lat") == "" {
		badRequest(w, "lng and lat are required")
		return
	}

	lng, err := queryFloat(r, "lng", 0)
	if err != nil || lng < -180 || lng > 180 {
		badRequest(w, "lng must be a longitude")
		return
	}
	lat, err := queryFloat(r, "lat", 0)
	if err != nil || lat < -90 || lat > 90 {
		badRequest(w, "lat must be a latitude")
		return
	}
	radius, err := queryFloat(r, "radius", defaultNearbyRadiusKm)
	if err != nil || radius <= 0 {
		badRequest(w, "radius must be a positive number of kilometres")
		return
	}

	orders, err := h.repo.ListOrdersNear(r.Context(), userID, lng, lat, radius)
	if err != nil {
		writeError(w, r, h.logger, "failed to list nearby orders", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}

	response.JSONResponse(w, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/{id}. Fields absent from the body keep their stored values.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}

	id, userID, createdAt := order.ID, order.UserID, order.CreatedAt
	if !decodeJSON(w, r, order) {
		return
	}
	order.ID, order.UserID, order.CreatedAt = id, userID, createdAt

	h.save(w, r, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		response.ValidationErrorResponse(w, map[string]string{"status": "must be one of pending, confirmed, completed, cancelled"})
		return
	}

	order, ok := h.load(w, r)
	if !ok {
		return
	}
	order.Status = status

	h.save(w, r, order)
}

// ConfirmOrder handles POST /api/v1/orders/{id}/confirm
func (h *OrderHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	var req ConfirmOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, ok := h.load(w, r)
	if !ok {
		return
	}
	order.Confirm(req.ConfirmedBy, req.Notes, req.MessageLeft, h.now().UTC())

	h.save(w, r, order)
}

// DeleteOrder handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteOrder(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, "failed to delete order", err)
		return
	}

	h.logger.InfoContext(r.Context(), "order_deleted", "order_id", id, "user_id", userID)
	response.NoContent(w)
}

func (h *OrderHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	order, err := h.repo.GetOrderByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, "failed to get order", err)
		return nil, false
	}

	return order, true
}

func (h *OrderHandler) save(w http.ResponseWriter, r *http.Request, order *domain.Order) {
	order.ApplyDefaults()
	if err := order.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid order", err)
		return
	}
	order.Touch(h.now().UTC())

	if err := h.repo.UpdateOrder(r.Context(), order); err != nil {
		writeError(w, r, h.logger, "failed to update order", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, order)
}
