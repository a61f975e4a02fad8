package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/payrexx"
)

// fakeGateway is an in-memory GatewayClient. Lookups serve the
// configured state; every call is recorded.
type fakeGateway struct {
	state      map[string]*payrexx.Gateway
	getErr     error
	getCalls   int
	created    []payrexx.CreateGatewayRequest
	createResp *payrexx.Gateway
	createErr  error
	deleted    []string
	deleteErr  error
	captures   []fakeCapture
	captureTx  *payrexx.Transaction
	captureErr error
}

type fakeCapture struct {
	id     string
	amount int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{state: map[string]*payrexx.Gateway{}}
}

func (f *fakeGateway) CreateGateway(ctx context.Context, req payrexx.CreateGatewayRequest) (*payrexx.Gateway, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeGateway) GetGateway(ctx context.Context, id string) (*payrexx.Gateway, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	gw, ok := f.state[id]
	if !ok {
		return nil, fmt.Errorf("gateway %s not found", id)
	}
	return gw, nil
}

func (f *fakeGateway) DeleteInvoice(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeGateway) CaptureTransaction(ctx context.Context, id string, amount int) (*payrexx.Transaction, error) {
	f.captures = append(f.captures, fakeCapture{id: id, amount: amount})
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.captureTx, nil
}

func (f *fakeGateway) ParseWebhookTransaction(ctx context.Context, raw []byte) (*payrexx.Transaction, error) {
	var hook payrexx.Webhook
	if err := json.Unmarshal(raw, &hook); err != nil {
		return nil, fmt.Errorf("parse webhook: %w", err)
	}
	if hook.Transaction == nil {
		return nil, errors.New("webhook carries no transaction")
	}
	return hook.Transaction, nil
}

// fakeOrders is an in-memory OrderService: one order, an attribute map
// and a note log. Transitions honor the Can* guards the way the real
// service does, answering ErrInvalidTransition through a closed guard.
type fakeOrders struct {
	order *orders.Order
	attrs map[string]string
	notes []fakeNote

	markPaidIDs []string
	markAuthIDs []string
	setPending  int
	rechecks    int
	cancels     []bool
	refunds     int
	partials    []float64
}

type fakeNote struct {
	note    string
	payload []byte
}

func newFakeOrders(o *orders.Order) *fakeOrders {
	return &fakeOrders{order: o, attrs: map[string]string{}}
}

func (f *fakeOrders) ByNumber(ctx context.Context, number string) (*orders.Order, error) {
	if f.order == nil || f.order.Number != number {
		return nil, orders.ErrNotFound
	}
	return f.order, nil
}

func (f *fakeOrders) Attribute(ctx context.Context, orderID, name string) (string, error) {
	return f.attrs[orderID+"/"+name], nil
}

func (f *fakeOrders) SaveAttribute(ctx context.Context, orderID, name, value string) error {
	f.attrs[orderID+"/"+name] = value
	return nil
}

func (f *fakeOrders) DeleteAttribute(ctx context.Context, orderID, name string) error {
	delete(f.attrs, orderID+"/"+name)
	return nil
}

func (f *fakeOrders) AddNote(ctx context.Context, orderID, note string, payload []byte) error {
	f.notes = append(f.notes, fakeNote{note: note, payload: payload})
	return nil
}

func (f *fakeOrders) MarkPaid(ctx context.Context, o *orders.Order, captureTransactionID string) error {
	if !o.CanMarkPaid() {
		return orders.ErrInvalidTransition
	}
	f.markPaidIDs = append(f.markPaidIDs, captureTransactionID)
	o.Status = orders.StatusPaid
	o.CaptureTransactionID = &captureTransactionID
	return nil
}

func (f *fakeOrders) MarkAuthorized(ctx context.Context, o *orders.Order, authorizationTransactionID string) error {
	if !o.CanMarkAuthorized() {
		return orders.ErrInvalidTransition
	}
	f.markAuthIDs = append(f.markAuthIDs, authorizationTransactionID)
	o.Status = orders.StatusAuthorized
	o.AuthorizationTransactionID = &authorizationTransactionID
	return nil
}

func (f *fakeOrders) SetPending(ctx context.Context, o *orders.Order) error {
	f.setPending++
	o.Status = orders.StatusPending
	return nil
}

func (f *fakeOrders) RecheckStatus(ctx context.Context, o *orders.Order) error {
	f.rechecks++
	if o.Status == orders.StatusPending && o.PaidAt != nil && o.CaptureTransactionID != nil {
		o.Status = orders.StatusPaid
	}
	return nil
}

func (f *fakeOrders) Cancel(ctx context.Context, o *orders.Order, notifyCustomer bool) error {
	if !o.CanCancel() {
		return orders.ErrInvalidTransition
	}
	f.cancels = append(f.cancels, notifyCustomer)
	o.Status = orders.StatusCancelled
	return nil
}

func (f *fakeOrders) Refund(ctx context.Context, o *orders.Order) error {
	if !o.CanRefund() {
		return orders.ErrInvalidTransition
	}
	f.refunds++
	o.Status = orders.StatusRefunded
	o.RefundedAmount = o.TotalAmount
	return nil
}

func (f *fakeOrders) PartialRefund(ctx context.Context, o *orders.Order, amount float64) error {
	if !o.CanPartialRefund(amount) {
		return orders.ErrInvalidTransition
	}
	f.partials = append(f.partials, amount)
	o.RefundedAmount += amount
	if o.RefundedAmount >= o.TotalAmount {
		o.Status = orders.StatusRefunded
	} else {
		o.Status = orders.StatusPartiallyRefunded
	}
	return nil
}

// mutationCount sums every state-changing call the fake saw.
func (f *fakeOrders) mutationCount() int {
	return len(f.markPaidIDs) + len(f.markAuthIDs) + f.setPending +
		f.rechecks + len(f.cancels) + f.refunds + len(f.partials)
}
