package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/payrexx"
)

// Reconciler maps webhook notifications onto local order transitions.
// The webhook's own status is never trusted: the authoritative state
// is re-fetched from the API by invoice id before any mutation.
type Reconciler struct {
	gateway GatewayClient
	orders  OrderService
	logger  *slog.Logger
}

func NewReconciler(gateway GatewayClient, orderSvc OrderService, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{gateway: gateway, orders: orderSvc, logger: logger}
}

// Process runs one webhook delivery through the reconciliation
// preconditions and, when they hold, the status transition table. Only
// ErrMalformedWebhook should change the HTTP answer; every other
// failure is an operational concern and the sender still gets 200.
func (r *Reconciler) Process(ctx context.Context, raw []byte) error {
	tx, err := r.gateway.ParseWebhookTransaction(ctx, raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedWebhook, err)
	}

	if tx.Invoice == nil {
		return errors.New("webhook transaction carries no invoice")
	}
	invoiceID := tx.Invoice.InvoiceID.String()
	if invoiceID == "" {
		return errors.New("webhook invoice names no invoice id")
	}

	o, err := r.orders.ByNumber(ctx, tx.Invoice.ReferenceID)
	if err != nil {
		return fmt.Errorf("order %q: %w", tx.Invoice.ReferenceID, err)
	}

	// reject stale or forged notifications referencing the wrong invoice
	stored, err := r.orders.Attribute(ctx, o.ID, payrexx.InvoiceIDAttribute)
	if err != nil {
		return err
	}
	if stored == "" || stored != invoiceID {
		return fmt.Errorf("invoice id mismatch: webhook %q, order %q", invoiceID, stored)
	}

	note := fmt.Sprintf("Payrexx webhook received at %s (transaction %s, reported status %s)",
		time.Now().UTC().Format(time.RFC3339), tx.ID.String(), tx.Status)
	if err := r.orders.AddNote(ctx, o.ID, note, raw); err != nil {
		return err
	}

	gw, err := r.gateway.GetGateway(ctx, invoiceID)
	if err != nil {
		return err
	}
	if gw == nil {
		return errors.New("gateway state unavailable")
	}

	return r.apply(ctx, o, gw, invoiceID)
}

// apply is the transition table. Host-side Can* guards are consulted
// before every mutation; a closed guard is an expected no-op, not an
// error.
func (r *Reconciler) apply(ctx context.Context, o *orders.Order, gw *payrexx.Gateway, invoiceID string) error {
	switch gw.Status {
	case payrexx.StatusPending:
		if err := r.orders.SetPending(ctx, o); err != nil && !errors.Is(err, orders.ErrInvalidTransition) {
			return err
		}
		return r.orders.RecheckStatus(ctx, o)

	case payrexx.StatusConfirmed:
		if gw.TotalAmount != o.TotalCents() {
			return fmt.Errorf("amount mismatch: invoice %d, order %d", gw.TotalAmount, o.TotalCents())
		}
		if !o.CanMarkPaid() {
			return nil
		}
		return r.orders.MarkPaid(ctx, o, invoiceID)

	case payrexx.StatusAuthorized, payrexx.StatusReserved:
		if gw.TotalAmount != o.TotalCents() {
			return fmt.Errorf("amount mismatch: invoice %d, order %d", gw.TotalAmount, o.TotalCents())
		}
		if !o.CanMarkAuthorized() {
			return nil
		}
		return r.orders.MarkAuthorized(ctx, o, invoiceID)

	case payrexx.StatusRefunded:
		if !o.CanRefund() {
			return nil
		}
		return r.orders.Refund(ctx, o)

	case payrexx.StatusPartiallyRefunded:
		amount := float64(gw.TotalAmount) / 100
		if !o.CanPartialRefund(amount) {
			return nil
		}
		return r.orders.PartialRefund(ctx, o, amount)

	case payrexx.StatusCancelled, payrexx.StatusDeclined, payrexx.StatusChargeback:
		if !o.CanCancel() {
			return nil
		}
		return r.orders.Cancel(ctx, o, true)

	default:
		// error and unrecognized statuses fail closed: no mutation
		r.logger.WarnContext(ctx, "webhook status ignored",
			"order_id", o.ID, "status", string(gw.Status))
		return nil
	}
}
