package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payrexx-gateway/internal/http/middleware"
	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/modules/payments"
	"payrexx-gateway/internal/shared/apperr"
)

type CheckoutHandler struct {
	Logger   *slog.Logger
	Payments *payments.Service
}

func NewCheckoutHandler(logger *slog.Logger, p *payments.Service) *CheckoutHandler {
	return &CheckoutHandler{Logger: logger, Payments: p}
}

// GET /checkout/pay/:number
// Sends the payer to the hosted payment page. On any gateway failure
// the service hands back the order-details URL instead; raw error text
// never reaches the payer.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	number := c.Param("number")

	target, err := h.Payments.PaymentLink(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.Redirect(http.StatusFound, target)
}

// POST /checkout/cancel/:number
// Deletes the pending remote invoice of an unpaid order.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	number := c.Param("number")

	if err := h.Payments.CancelPayment(c.Request.Context(), number); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
		case errors.Is(err, payments.ErrOrderNotPayable):
			middleware.Fail(c, apperr.ConflictErr("Order is not awaiting payment."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
