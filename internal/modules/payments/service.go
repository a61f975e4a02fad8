package payments

import (
	"context"
	"fmt"
	"log/slog"

	"payrexx-gateway/internal/modules/orders"
	"payrexx-gateway/internal/payrexx"
)

// GatewayClient is the slice of the payrexx manager this module
// consumes; injected so tests can stub the remote side.
type GatewayClient interface {
	CreateGateway(ctx context.Context, req payrexx.CreateGatewayRequest) (*payrexx.Gateway, error)
	GetGateway(ctx context.Context, id string) (*payrexx.Gateway, error)
	DeleteInvoice(ctx context.Context, id string) error
	CaptureTransaction(ctx context.Context, id string, amount int) (*payrexx.Transaction, error)
	ParseWebhookTransaction(ctx context.Context, raw []byte) (*payrexx.Transaction, error)
}

// OrderService is the host-side order contract: lookup, one attribute,
// audit notes and the guarded lifecycle transitions.
type OrderService interface {
	ByNumber(ctx context.Context, number string) (*orders.Order, error)
	Attribute(ctx context.Context, orderID, name string) (string, error)
	SaveAttribute(ctx context.Context, orderID, name, value string) error
	DeleteAttribute(ctx context.Context, orderID, name string) error
	AddNote(ctx context.Context, orderID, note string, payload []byte) error

	MarkPaid(ctx context.Context, o *orders.Order, captureTransactionID string) error
	MarkAuthorized(ctx context.Context, o *orders.Order, authorizationTransactionID string) error
	SetPending(ctx context.Context, o *orders.Order) error
	RecheckStatus(ctx context.Context, o *orders.Order) error
	Cancel(ctx context.Context, o *orders.Order, notifyCustomer bool) error
	Refund(ctx context.Context, o *orders.Order) error
	PartialRefund(ctx context.Context, o *orders.Order, amount float64) error
}

// Service drives the checkout redirect flow: create (or reuse) a
// hosted payment page for an order and hand the payer its link.
type Service struct {
	gateway GatewayClient
	orders  OrderService
	logger  *slog.Logger

	baseURL   string
	storeName string
}

func NewService(gateway GatewayClient, orderSvc OrderService, logger *slog.Logger, baseURL, storeName string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway:   gateway,
		orders:    orderSvc,
		logger:    logger,
		baseURL:   baseURL,
		storeName: storeName,
	}
}

func (s *Service) successURL(o *orders.Order) string {
	return s.baseURL + "/checkout/completed/" + o.Number
}

func (s *Service) detailsURL(o *orders.Order) string {
	return s.baseURL + "/orders/" + o.Number
}

// PaymentLink returns the URL the payer should be redirected to. Any
// gateway failure yields the order-details page instead of an error;
// raw error text never reaches the payer.
func (s *Service) PaymentLink(ctx context.Context, orderNumber string) (string, error) {
	o, err := s.orders.ByNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	failURL := s.detailsURL(o)

	// reuse a previously created invoice while it is still pending
	invoiceID, err := s.orders.Attribute(ctx, o.ID, payrexx.InvoiceIDAttribute)
	if err != nil {
		return "", err
	}
	if invoiceID != "" {
		gw, err := s.gateway.GetGateway(ctx, invoiceID)
		if err == nil && gw != nil {
			if gw.PaymentLink != "" && gw.Status == payrexx.StatusPending {
				return gw.PaymentLink, nil
			}
			return failURL, nil
		}
		// lookup failed: the invoice is gone, create a fresh one
	}

	req := payrexx.CreateGatewayRequest{
		TotalAmount:        o.TotalCents(),
		CurrencyCode:       o.Currency,
		Purpose:            fmt.Sprintf("%s. Order #%s", s.storeName, o.Number),
		SuccessRedirectURL: s.successURL(o),
		FailedRedirectURL:  failURL,
		ReferenceID:        o.Number,
		SkipResultPage:     true,
		AdditionalFields:   contactFields(o),
	}

	gw, err := s.gateway.CreateGateway(ctx, req)
	if err != nil || gw == nil || gw.PaymentLink == "" {
		return failURL, nil
	}

	if err := s.orders.SaveAttribute(ctx, o.ID, payrexx.InvoiceIDAttribute, gw.ID.String()); err != nil {
		s.logger.ErrorContext(ctx, "saving invoice id attribute failed",
			"order_id", o.ID, "invoice_id", gw.ID.String(), "err", err)
		return failURL, nil
	}
	return gw.PaymentLink, nil
}

// CancelPayment deletes the remote invoice of a still-unpaid order and
// clears the stored attribute.
func (s *Service) CancelPayment(ctx context.Context, orderNumber string) error {
	o, err := s.orders.ByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	if o.Status != orders.StatusPending {
		return ErrOrderNotPayable
	}

	invoiceID, err := s.orders.Attribute(ctx, o.ID, payrexx.InvoiceIDAttribute)
	if err != nil {
		return err
	}
	if invoiceID == "" {
		return nil
	}
	if err := s.gateway.DeleteInvoice(ctx, invoiceID); err != nil {
		return err
	}
	return s.orders.DeleteAttribute(ctx, o.ID, payrexx.InvoiceIDAttribute)
}

// Capture charges the authorized transaction of an order and marks it
// paid on success.
func (s *Service) Capture(ctx context.Context, orderNumber string) error {
	o, err := s.orders.ByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	if o.AuthorizationTransactionID == nil || !o.CanMarkPaid() {
		return ErrOrderNotPayable
	}

	tx, err := s.gateway.CaptureTransaction(ctx, *o.AuthorizationTransactionID, o.TotalCents())
	if err != nil {
		return err
	}
	captureID := *o.AuthorizationTransactionID
	if tx != nil && tx.ID.String() != "" {
		captureID = tx.ID.String()
	}
	return s.orders.MarkPaid(ctx, o, captureID)
}

func contactFields(o *orders.Order) []payrexx.AdditionalField {
	fields := []struct {
		name  string
		value string
	}{
		{"forename", o.BillingForename},
		{"surname", o.BillingSurname},
		{"phone", o.BillingPhone},
		{"email", o.BillingEmail},
		{"street", o.BillingStreet},
		{"place", o.BillingCity},
		{"country", o.BillingCountry},
		{"postcode", o.BillingPostcode},
	}
	out := make([]payrexx.AdditionalField, 0, len(fields))
	for _, f := range fields {
		v := f.value
		out = append(out, payrexx.AdditionalField{Name: f.name, Value: &v})
	}
	return out
}
