package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payrexx-gateway/internal/http/middleware"
	"payrexx-gateway/internal/http/validation"
	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/shared/apperr"
)

// OrdersHandler is the merchant-side order surface: inspect an order
// with its audit trail, and refund captured payments.
type OrdersHandler struct {
	Logger *slog.Logger
	Orders *orders.Service
}

func NewOrdersHandler(logger *slog.Logger, o *orders.Service) *OrdersHandler {
	return &OrdersHandler{Logger: logger, Orders: o}
}

// GET /admin/orders/:number
func (h *OrdersHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()

	o, err := h.Orders.ByNumber(ctx, c.Param("number"))
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	notes, err := h.Orders.Notes(ctx, o.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": o, "notes": notes})
}

type refundRequest struct {
	// Amount in major currency units; omitted means a full refund.
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
}

// POST /admin/orders/:number/refund
func (h *OrdersHandler) Refund(c *gin.Context) {
	ctx := c.Request.Context()

	var req refundRequest
	// an empty body is a full refund
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid refund request.", validation.FromBindError(err, &req)))
			return
		}
	}

	o, err := h.Orders.ByNumber(ctx, c.Param("number"))
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if req.Amount != nil {
		err = h.Orders.PartialRefund(ctx, o, *req.Amount)
	} else {
		err = h.Orders.Refund(ctx, o)
	}
	if err != nil {
		if errors.Is(err, orders.ErrInvalidTransition) {
			middleware.Fail(c, apperr.ConflictErr("Order cannot be refunded in its current state."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "order": o})
}
