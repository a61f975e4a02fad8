package payments

import "errors"

var (
	// ErrMalformedWebhook marks a body that could not be parsed into a
	// webhook transaction at all. It is the only reconciliation error
	// the webhook endpoint answers with a non-2xx status.
	ErrMalformedWebhook = errors.New("malformed webhook body")

	ErrOrderNotPayable = errors.New("order not payable")
)
