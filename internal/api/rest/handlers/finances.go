package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/finance"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

type OrderLister interface {
	ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter) ([]*domain.Order, error)
}

type FinanceHandler struct {
	orders OrderLister
	logger *slog.Logger
}

func NewFinanceHandler(orders OrderLister, logger *slog.Logger) *FinanceHandler {
	return &FinanceHandler{orders: orders, logger: logger}
}

// Summary handles GET /api/v1/finances/summary?from=&to=
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
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
	if from != nil && to != nil && to.Before(from.Time) {
		badRequest(w, "to must not precede from")
		return
	}

	var filter repository.OrderFilter
	if from != nil {
		filter.From = from.Time
	}
	if to != nil {
		filter.To = to.Time
	}

	orders, err := h.orders.ListOrders(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, h.logger, "failed to list orders for summary", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, finance.Summarize(orders, from, to))
}
