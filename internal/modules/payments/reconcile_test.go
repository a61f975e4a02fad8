package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/payrexx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOrder(status string) *orders.Order {
	return &orders.Order{
		ID:          "9c1f0e7a-0000-0000-0000-000000000001",
		Number:      "ORD-1001",
		Status:      status,
		TotalAmount: 19.99,
		Currency:    "CHF",
	}
}

// webhookBody builds a notification whose invoice reports the given
// status and amount in minor units.
func webhookBody(invoiceID string, status payrexx.InvoiceStatus, amount int) []byte {
	return []byte(fmt.Sprintf(`{
		"transaction": {
			"id": 301,
			"status": %q,
			"invoice": {
				"referenceId": "ORD-1001",
				"paymentRequestId": %q,
				"status": %q,
				"amount": %d,
				"currency": "CHF"
			}
		}
	}`, status, invoiceID, status, amount))
}

func setup(orderStatus string, gwStatus payrexx.InvoiceStatus, gwAmount int) (*Reconciler, *fakeGateway, *fakeOrders) {
	gw := newFakeGateway()
	gw.state["9001"] = &payrexx.Gateway{
		ID:          "55",
		Status:      gwStatus,
		ReferenceID: "ORD-1001",
		TotalAmount: gwAmount,
		InvoiceID:   "9001",
	}
	ord := newFakeOrders(testOrder(orderStatus))
	ord.attrs[ord.order.ID+"/"+payrexx.InvoiceIDAttribute] = "9001"
	return NewReconciler(gw, ord, testLogger()), gw, ord
}

func TestProcessMalformedBody(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	err := r.Process(context.Background(), []byte(`{{{`))
	assert.ErrorIs(t, err, ErrMalformedWebhook)
	assert.Empty(t, ord.notes)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessMissingTransactionIsMalformed(t *testing.T) {
	r, _, _ := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	err := r.Process(context.Background(), []byte(`{"transaction": null}`))
	assert.ErrorIs(t, err, ErrMalformedWebhook)
}

func TestProcessMissingInvoice(t *testing.T) {
	r, gw, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	err := r.Process(context.Background(), []byte(`{"transaction":{"id":301,"status":"confirmed"}}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedWebhook)
	assert.Zero(t, gw.getCalls)
	assert.Empty(t, ord.notes)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessMissingInvoiceID(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	err := r.Process(context.Background(), webhookBody("", payrexx.StatusConfirmed, 1999))
	require.Error(t, err)
	assert.Empty(t, ord.notes)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessUnknownOrder(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)
	ord.order.Number = "ORD-OTHER"

	err := r.Process(context.Background(), webhookBody("9001", payrexx.StatusConfirmed, 1999))
	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessInvoiceIDMismatch(t *testing.T) {
	r, gw, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	err := r.Process(context.Background(), webhookBody("6666", payrexx.StatusConfirmed, 1999))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
	// preconditions failed: no note, no lookup, no mutation
	assert.Empty(t, ord.notes)
	assert.Zero(t, gw.getCalls)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessNoStoredInvoiceID(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)
	delete(ord.attrs, ord.order.ID+"/"+payrexx.InvoiceIDAttribute)

	err := r.Process(context.Background(), webhookBody("9001", payrexx.StatusConfirmed, 1999))
	require.Error(t, err)
	assert.Zero(t, ord.mutationCount())
}

func TestProcessConfirmedMarksPaid(t *testing.T) {
	r, gw, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)

	body := webhookBody("9001", payrexx.StatusConfirmed, 1999)
	require.NoError(t, r.Process(context.Background(), body))

	require.Len(t, ord.markPaidIDs, 1)
	assert.Equal(t, "9001", ord.markPaidIDs[0])
	assert.Equal(t, orders.StatusPaid, ord.order.Status)

	// authoritative state was re-fetched, the webhook status not trusted
	assert.Equal(t, 1, gw.getCalls)

	// audit note carries the raw payload and a UTC timestamp
	require.Len(t, ord.notes, 1)
	assert.Equal(t, body, ord.notes[0].payload)
	assert.Contains(t, ord.notes[0].note, "transaction 301")
	assert.Contains(t, ord.notes[0].note, time.Now().UTC().Format("2006-01-02"))
}

func TestProcessTrustsFetchedStateOverWebhook(t *testing.T) {
	// webhook claims confirmed, the API says waiting: no paid transition
	r, _, ord := setup(orders.StatusPending, payrexx.StatusPending, 1999)

	require.NoError(t, r.Process(context.Background(), webhookBody("9001", payrexx.StatusConfirmed, 1999)))
	assert.Empty(t, ord.markPaidIDs)
	assert.Equal(t, orders.StatusPending, ord.order.Status)
}

func TestProcessAmountMismatch(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1998)

	err := r.Process(context.Background(), webhookBody("9001", payrexx.StatusConfirmed, 1998))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount mismatch")
	assert.Empty(t, ord.markPaidIDs)
	assert.Equal(t, orders.StatusPending, ord.order.Status)
	// the delivery itself is still recorded
	assert.Len(t, ord.notes, 1)
}

func TestProcessReplayIsNoOp(t *testing.T) {
	r, _, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)
	body := webhookBody("9001", payrexx.StatusConfirmed, 1999)

	require.NoError(t, r.Process(context.Background(), body))
	require.NoError(t, r.Process(context.Background(), body))

	// the second delivery finds the guard closed and changes nothing
	assert.Len(t, ord.markPaidIDs, 1)
	assert.Equal(t, orders.StatusPaid, ord.order.Status)
	// both deliveries are audited
	assert.Len(t, ord.notes, 2)
}

func TestProcessPendingRechecks(t *testing.T) {
	r, _, ord := setup(orders.StatusAuthorized, payrexx.StatusPending, 1999)

	require.NoError(t, r.Process(context.Background(), webhookBody("9001", payrexx.StatusPending, 1999)))
	assert.Equal(t, 1, ord.setPending)
	assert.Equal(t, 1, ord.rechecks)
	assert.Equal(t, orders.StatusPending, ord.order.Status)
}

func TestProcessPendingRestoresCapturedOrder(t *testing.T) {
	r, _, ord := setup(orders.StatusPaid, payrexx.StatusPending, 1999)
	now := time.Now()
	captureID := "817"
	ord.order.PaidAt = &now
	ord.order.CaptureTransactionID = &captureID

	require.NoError(t, r.Process(context.Background(), webhookBody("9001", payrexx.StatusPending, 1999)))
	// recheck promotes the order straight back to paid
	assert.Equal(t, orders.StatusPaid, ord.order.Status)
}

func TestProcessStatusTable(t *testing.T) {
	cases := []struct {
		name        string
		orderStatus string
		gwStatus    payrexx.InvoiceStatus
		gwAmount    int
		wantStatus  string
		check       func(t *testing.T, ord *fakeOrders)
	}{
		{
			name:        "authorized",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusAuthorized,
			gwAmount:    1999,
			wantStatus:  orders.StatusAuthorized,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Equal(t, []string{"9001"}, ord.markAuthIDs)
			},
		},
		{
			name:        "reserved behaves like authorized",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusReserved,
			gwAmount:    1999,
			wantStatus:  orders.StatusAuthorized,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Len(t, ord.markAuthIDs, 1)
			},
		},
		{
			name:        "cancelled",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusCancelled,
			gwAmount:    1999,
			wantStatus:  orders.StatusCancelled,
			check: func(t *testing.T, ord *fakeOrders) {
				// the customer is notified
				assert.Equal(t, []bool{true}, ord.cancels)
			},
		},
		{
			name:        "declined cancels",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusDeclined,
			gwAmount:    1999,
			wantStatus:  orders.StatusCancelled,
		},
		{
			name:        "chargeback cancels",
			orderStatus: orders.StatusAuthorized,
			gwStatus:    payrexx.StatusChargeback,
			gwAmount:    1999,
			wantStatus:  orders.StatusCancelled,
		},
		{
			name:        "cancelled on paid order is a no-op",
			orderStatus: orders.StatusPaid,
			gwStatus:    payrexx.StatusCancelled,
			gwAmount:    1999,
			wantStatus:  orders.StatusPaid,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Empty(t, ord.cancels)
			},
		},
		{
			name:        "refunded",
			orderStatus: orders.StatusPaid,
			gwStatus:    payrexx.StatusRefunded,
			gwAmount:    1999,
			wantStatus:  orders.StatusRefunded,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Equal(t, 1, ord.refunds)
				assert.InEpsilon(t, 19.99, ord.order.RefundedAmount, 1e-9)
			},
		},
		{
			name:        "refunded before payment is a no-op",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusRefunded,
			gwAmount:    1999,
			wantStatus:  orders.StatusPending,
		},
		{
			name:        "partially refunded converts minor units",
			orderStatus: orders.StatusPaid,
			gwStatus:    payrexx.StatusPartiallyRefunded,
			gwAmount:    500,
			wantStatus:  orders.StatusPartiallyRefunded,
			check: func(t *testing.T, ord *fakeOrders) {
				require.Len(t, ord.partials, 1)
				assert.InEpsilon(t, 5.00, ord.partials[0], 1e-9)
			},
		},
		{
			name:        "error status fails closed",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.StatusError,
			gwAmount:    1999,
			wantStatus:  orders.StatusPending,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Zero(t, ord.mutationCount())
			},
		},
		{
			name:        "unknown status fails closed",
			orderStatus: orders.StatusPending,
			gwStatus:    payrexx.InvoiceStatus("weird-new-state"),
			gwAmount:    1999,
			wantStatus:  orders.StatusPending,
			check: func(t *testing.T, ord *fakeOrders) {
				assert.Zero(t, ord.mutationCount())
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _, ord := setup(tc.orderStatus, tc.gwStatus, tc.gwAmount)

			err := r.Process(context.Background(), webhookBody("9001", tc.gwStatus, tc.gwAmount))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, ord.order.Status)
			if tc.check != nil {
				tc.check(t, ord)
			}
		})
	}
}

func TestProcessGatewayLookupFailure(t *testing.T) {
	r, gw, ord := setup(orders.StatusPending, payrexx.StatusConfirmed, 1999)
	gw.getErr = fmt.Errorf("gateway down")

	err := r.Process(context.Background(), webhookBody("9001", payrexx.StatusConfirmed, 1999))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedWebhook)
	assert.Zero(t, ord.mutationCount())
	// the delivery was still audited before the lookup
	assert.Len(t, ord.notes, 1)
}
