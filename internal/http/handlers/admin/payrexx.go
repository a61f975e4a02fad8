package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payrexx-gateway/internal/http/middleware"
	"payrexx-gateway/internal/http/validation"
	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/modules/payments"
	"payrexx-gateway/internal/payrexx"
	"payrexx-gateway/internal/shared/apperr"
)

// PayrexxHandler exposes the merchant-side operations: credentials
// check after configuration, provider listing, transaction lookup and
// manual capture of authorized orders.
type PayrexxHandler struct {
	Logger   *slog.Logger
	Manager  *payrexx.Manager
	Payments *payments.Service
}

func NewPayrexxHandler(logger *slog.Logger, m *payrexx.Manager, p *payments.Service) *PayrexxHandler {
	return &PayrexxHandler{Logger: logger, Manager: m, Payments: p}
}

// GET /admin/payrexx/credentials
func (h *PayrexxHandler) CheckCredentials(c *gin.Context) {
	ctx := payrexx.WithActor(c.Request.Context(), "admin")

	valid, err := h.Manager.CheckCredentials(ctx)
	if err != nil {
		if errors.Is(err, payrexx.ErrNotConfigured) {
			middleware.Fail(c, apperr.ConflictErr("Gateway is not configured."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// GET /admin/payrexx/providers
func (h *PayrexxHandler) ListProviders(c *gin.Context) {
	ctx := payrexx.WithActor(c.Request.Context(), "admin")

	providers, err := h.Manager.PaymentProviders(ctx)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// GET /admin/payrexx/transactions/:id
func (h *PayrexxHandler) GetTransaction(c *gin.Context) {
	ctx := payrexx.WithActor(c.Request.Context(), "admin")

	tx, err := h.Manager.GetTransaction(ctx, c.Param("id"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if tx == nil {
		middleware.Fail(c, apperr.NotFoundErr("Transaction not found."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

type createInvoiceRequest struct {
	Title       string   `json:"title" binding:"required"`
	Purpose     string   `json:"purpose"`
	ReferenceID string   `json:"referenceId" binding:"required"`
	Amount      int      `json:"amount" binding:"required,gt=0"`
	Currency    string   `json:"currency" binding:"required,len=3"`
	VatRate     *float64 `json:"vatRate" binding:"omitempty,gte=0"`
}

// POST /admin/payrexx/invoices
// Creates a standalone invoice payment page, detached from any local
// order; useful for one-off charges.
func (h *PayrexxHandler) CreateInvoice(c *gin.Context) {
	ctx := payrexx.WithActor(c.Request.Context(), "admin")

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid invoice request.", validation.FromBindError(err, &req)))
		return
	}

	inv, err := h.Manager.CreateInvoice(ctx, payrexx.CreateInvoiceRequest{
		Title:        req.Title,
		Purpose:      req.Purpose,
		ReferenceID:  req.ReferenceID,
		TotalAmount:  req.Amount,
		CurrencyCode: req.Currency,
		VatRate:      req.VatRate,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if inv == nil {
		middleware.Fail(c, apperr.Wrap(errors.New("invoice creation returned no payload")))
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// POST /admin/orders/:number/capture
// Charges the authorized transaction of an order and marks it paid.
func (h *PayrexxHandler) CaptureOrder(c *gin.Context) {
	ctx := payrexx.WithActor(c.Request.Context(), "admin")
	number := c.Param("number")

	if err := h.Payments.Capture(ctx, number); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
		case errors.Is(err, payments.ErrOrderNotPayable):
			middleware.Fail(c, apperr.ConflictErr("Order has no capturable authorization."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
