package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payrexx-gateway/internal/http/middleware"
	"payrexx-gateway/internal/modules/payments"
	"payrexx-gateway/internal/storage"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Reconciler *payments.Reconciler

	// Archive is optional; nil disables delivery archiving.
	Archive storage.Archive
}

func NewWebhookHandler(logger *slog.Logger, r *payments.Reconciler) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Reconciler: r}
}

// POST /webhooks/payrexx
// Payrexx webhooks are unsigned; authenticity comes from re-fetching
// the referenced invoice from the API and cross-checking the stored
// invoice id. Reconciliation failures still answer 200 so the sender
// has no reason to retry or escalate; only an unparseable body is 400.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	// archive every delivery before touching it, best-effort
	if h.Archive != nil && len(body) > 0 {
		if _, err := h.Archive.Store(c.Request.Context(), body); err != nil {
			h.Logger.Error("webhook archive failed",
				"request_id", middleware.GetRequestID(c), "err", err)
		}
	}

	if err := h.Reconciler.Process(c.Request.Context(), body); err != nil {
		if errors.Is(err, payments.ErrMalformedWebhook) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid payload"})
			return
		}
		h.Logger.Error("webhook reconciliation failed",
			"request_id", middleware.GetRequestID(c), "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
