package payrexx

import "time"

const (
	// SystemName prefixes every logged error so gateway failures are
	// easy to grep out of the application log.
	SystemName = "Payments.Payrexx"

	// APIBaseURL is the Payrexx v1.0 REST endpoint.
	APIBaseURL = "https://api.payrexx.com/v1.0/"

	// UserAgent sent with every outbound request.
	UserAgent = "payrexx-gateway/1.0"

	// SignatureParam is the form field carrying the request signature.
	// It signs the encoded body without itself included.
	SignatureParam = "ApiSignature"

	// InstanceParam is the query parameter naming the merchant instance.
	InstanceParam = "instance"

	// InvoiceIDAttribute is the order attribute key under which the
	// remote invoice id is stored on gateway creation.
	InvoiceIDAttribute = "PayrexxInvoiceId"

	// DefaultTimeout applies when no request timeout is configured.
	DefaultTimeout = 10 * time.Second
)
