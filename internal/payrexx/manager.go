package payrexx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotConfigured short-circuits every operation while the
	// instance name or secret key is unset. No network call is made.
	ErrNotConfigured = errors.New("payment gateway not configured")

	// ErrNoResponse marks a call that produced no envelope at all.
	ErrNoResponse = errors.New("no response from service")
)

type actorKey struct{}

// WithActor attaches the acting customer/admin identity to the
// context; it shows up in every error log line.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// Manager is the orchestration layer over the transport client. Every
// operation follows the same discipline: guard (configured?), execute,
// classify. Failures never escape; they are logged with the system
// prefix and returned as errors.
type Manager struct {
	client *Client
	logger *slog.Logger
}

func NewManager(client *Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{client: client, logger: logger}
}

// IsConfigured reports whether the credentials required to reach the
// API are present.
func (m *Manager) IsConfigured() bool {
	return m.client.InstanceName != "" && m.client.SecretKey != ""
}

func (m *Manager) fail(ctx context.Context, err error) error {
	wrapped := fmt.Errorf("%s error: %w", SystemName, err)
	m.logger.ErrorContext(ctx, "gateway operation failed",
		"system", SystemName,
		"actor", actorFrom(ctx),
		"err", err,
	)
	return wrapped
}

// handleRequest executes one guarded operation and unwraps the first
// payload of the envelope. A nil result with a nil error is possible:
// some calls (signature check) succeed with an empty payload, so
// callers must branch on the error, not on payload presence.
func handleRequest[T any](ctx context.Context, m *Manager, req Request) (*T, error) {
	if !m.IsConfigured() {
		return nil, m.fail(ctx, ErrNotConfigured)
	}
	resp, err := send[T](ctx, m.client, req)
	if err != nil {
		return nil, m.fail(ctx, err)
	}
	if resp == nil {
		return nil, m.fail(ctx, ErrNoResponse)
	}
	if resp.Status != ResponseSuccess {
		return nil, m.fail(ctx, fmt.Errorf("request status - %s. %s", resp.Status, resp.ErrorMessage))
	}
	return resp.First(), nil
}

// handleListRequest is handleRequest for operations whose payload is
// the whole data list rather than its first element.
func handleListRequest[T any](ctx context.Context, m *Manager, req Request) ([]T, error) {
	if !m.IsConfigured() {
		return nil, m.fail(ctx, ErrNotConfigured)
	}
	resp, err := send[T](ctx, m.client, req)
	if err != nil {
		return nil, m.fail(ctx, err)
	}
	if resp == nil {
		return nil, m.fail(ctx, ErrNoResponse)
	}
	if resp.Status != ResponseSuccess {
		return nil, m.fail(ctx, fmt.Errorf("request status - %s. %s", resp.Status, resp.ErrorMessage))
	}
	return resp.Data, nil
}

// CheckCredentials issues a signature-check request. Success means the
// call went through with the configured credentials; the payload
// contents are irrelevant.
func (m *Manager) CheckCredentials(ctx context.Context) (bool, error) {
	data, err := handleRequest[json.RawMessage](ctx, m, SignatureCheckRequest{})
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// CreateGateway creates a hosted payment page and returns it.
func (m *Manager) CreateGateway(ctx context.Context, req CreateGatewayRequest) (*Gateway, error) {
	return handleRequest[Gateway](ctx, m, req)
}

// GetGateway fetches the authoritative gateway state by id.
func (m *Manager) GetGateway(ctx context.Context, id string) (*Gateway, error) {
	return handleRequest[Gateway](ctx, m, GetGatewayRequest{ID: id})
}

// CreateInvoice creates a standalone invoice payment page.
func (m *Manager) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Gateway, error) {
	return handleRequest[Gateway](ctx, m, req)
}

// DeleteInvoice removes an invoice by id.
func (m *Manager) DeleteInvoice(ctx context.Context, id string) error {
	_, err := handleRequest[json.RawMessage](ctx, m, DeleteInvoiceRequest{ID: id})
	return err
}

// GetTransaction fetches a transaction by id.
func (m *Manager) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	return handleRequest[Transaction](ctx, m, GetTransactionRequest{ID: id})
}

// CaptureTransaction charges a pre-authorized or reserved transaction
// for the given amount in minor currency units.
func (m *Manager) CaptureTransaction(ctx context.Context, id string, amount int) (*Transaction, error) {
	return handleRequest[Transaction](ctx, m, CaptureTransactionRequest{ID: id, TotalAmount: &amount})
}

// PaymentProviders lists the payment providers available to the
// configured instance.
func (m *Manager) PaymentProviders(ctx context.Context) ([]PaymentProvider, error) {
	return handleListRequest[PaymentProvider](ctx, m, GetPaymentProvidersRequest{})
}

// ParseWebhookTransaction decodes an inbound webhook body. The body is
// shaped {"transaction": {...}}; a parseable body without a
// transaction is still an error.
func (m *Manager) ParseWebhookTransaction(ctx context.Context, raw []byte) (*Transaction, error) {
	var hook Webhook
	if err := json.Unmarshal(raw, &hook); err != nil {
		return nil, m.fail(ctx, fmt.Errorf("parse webhook: %w", err))
	}
	if hook.Transaction == nil {
		return nil, m.fail(ctx, errors.New("webhook carries no transaction"))
	}
	return hook.Transaction, nil
}
