package payrexx

import (
	"net/http"
	"strconv"
	"strings"
)

// Field is one name/value pair of a request's canonical form body.
// Field order is part of the canonical encoding.
type Field struct {
	Name  string
	Value string
}

// AdditionalField is a free-form name/value pair merged into a create
// request under the bracketed fields[...] key pattern. These prefill
// the payer's contact form on the hosted payment page.
type AdditionalField struct {
	Name  string
	Value *string
}

// Request is a pure data descriptor of one remote operation. Path and
// method are fixed per concrete type; building a request never
// performs I/O.
type Request interface {
	Path() string
	Method() string
	Fields() []Field
}

// additionalFielder is implemented by the create requests that carry
// contact prefill fields. The codec appends them after the object's
// own field set, in the order supplied.
type additionalFielder interface {
	additionalFields() []AdditionalField
}

type fieldList []Field

func (f *fieldList) add(name, value string) {
	if value == "" {
		return
	}
	*f = append(*f, Field{Name: name, Value: value})
}

func (f *fieldList) addInt(name string, value *int) {
	if value == nil {
		return
	}
	*f = append(*f, Field{Name: name, Value: strconv.Itoa(*value)})
}

func (f *fieldList) addFloat(name string, value *float64) {
	if value == nil {
		return
	}
	*f = append(*f, Field{Name: name, Value: strconv.FormatFloat(*value, 'f', -1, 64)})
}

func (f *fieldList) addBool(name string, value Bool) {
	*f = append(*f, Field{Name: name, Value: value.FormValue()})
}

// addList joins enumerated wire values with commas; list fields never
// render as repeated form keys.
func (f *fieldList) addList(name string, values []string) {
	if len(values) == 0 {
		return
	}
	*f = append(*f, Field{Name: name, Value: strings.Join(values, ",")})
}

// SignatureCheckRequest validates the configured credentials. The call
// succeeds with an empty payload.
type SignatureCheckRequest struct{}

func (SignatureCheckRequest) Path() string    { return "SignatureCheck/" }
func (SignatureCheckRequest) Method() string  { return http.MethodGet }
func (SignatureCheckRequest) Fields() []Field { return nil }

// CreateGatewayRequest creates a hosted payment page.
type CreateGatewayRequest struct {
	TotalAmount        int
	VatRate            *float64
	CurrencyCode       string
	Sku                string
	Purpose            string
	SuccessRedirectURL string
	FailedRedirectURL  string
	// PaymentServiceProviders and PaymentMethods restrict the page to
	// the named PSPs/means; empty enables everything.
	PaymentServiceProviders []string
	PaymentMethods          []string
	Authorized              Bool
	Reserved                Bool
	ReferenceID             string
	SkipResultPage          Bool
	AdditionalFields        []AdditionalField
}

func (CreateGatewayRequest) Path() string   { return "Gateway/" }
func (CreateGatewayRequest) Method() string { return http.MethodPost }

func (r CreateGatewayRequest) Fields() []Field {
	var f fieldList
	f.addInt("amount", &r.TotalAmount)
	f.addFloat("vatRate", r.VatRate)
	f.add("currency", r.CurrencyCode)
	f.add("sku", r.Sku)
	f.add("purpose", r.Purpose)
	f.add("successRedirectUrl", r.SuccessRedirectURL)
	f.add("failedRedirectUrl", r.FailedRedirectURL)
	f.addList("psp", r.PaymentServiceProviders)
	f.addList("pm", r.PaymentMethods)
	f.addBool("preAuthorization", r.Authorized)
	f.addBool("reservation", r.Reserved)
	f.add("referenceId", r.ReferenceID)
	f.addBool("skipResultPage", r.SkipResultPage)
	return f
}

func (r CreateGatewayRequest) additionalFields() []AdditionalField { return r.AdditionalFields }

// GetGatewayRequest fetches a gateway by id.
type GetGatewayRequest struct {
	ID string
}

func (r GetGatewayRequest) Path() string  { return "Gateway/" + r.ID + "/" }
func (GetGatewayRequest) Method() string  { return http.MethodGet }
func (GetGatewayRequest) Fields() []Field { return nil }

// CreateInvoiceRequest creates a standalone invoice payment page.
type CreateInvoiceRequest struct {
	Title                  string
	Description            string
	PaymentServiceProvider string
	ReferenceID            string
	Purpose                string
	TotalAmount            int
	VatRate                *float64
	CurrencyCode           string
	Sku                    string
	Authorized             Bool
	Reserved               Bool
	Name                   string
	HideAdditionalFields   Bool
	AdditionalFields       []AdditionalField
}

func (CreateInvoiceRequest) Path() string   { return "Invoice/" }
func (CreateInvoiceRequest) Method() string { return http.MethodPost }

func (r CreateInvoiceRequest) Fields() []Field {
	var f fieldList
	f.add("title", r.Title)
	f.add("description", r.Description)
	f.add("psp", r.PaymentServiceProvider)
	f.add("referenceId", r.ReferenceID)
	f.add("purpose", r.Purpose)
	f.addInt("amount", &r.TotalAmount)
	f.addFloat("vatRate", r.VatRate)
	f.add("currency", r.CurrencyCode)
	f.add("sku", r.Sku)
	f.addBool("preAuthorization", r.Authorized)
	f.addBool("reservation", r.Reserved)
	f.add("name", r.Name)
	f.addBool("hideFields", r.HideAdditionalFields)
	return f
}

func (r CreateInvoiceRequest) additionalFields() []AdditionalField { return r.AdditionalFields }

// DeleteInvoiceRequest removes an invoice by id.
type DeleteInvoiceRequest struct {
	ID string
}

func (r DeleteInvoiceRequest) Path() string  { return "Invoice/" + r.ID + "/" }
func (DeleteInvoiceRequest) Method() string  { return http.MethodDelete }
func (DeleteInvoiceRequest) Fields() []Field { return nil }

// GetTransactionRequest fetches a transaction by id.
type GetTransactionRequest struct {
	ID string
}

func (r GetTransactionRequest) Path() string  { return "Transaction/" + r.ID + "/" }
func (GetTransactionRequest) Method() string  { return http.MethodGet }
func (GetTransactionRequest) Fields() []Field { return nil }

// CaptureTransactionRequest charges a pre-authorized or reserved
// transaction.
type CaptureTransactionRequest struct {
	ID          string
	TotalAmount *int
}

func (r CaptureTransactionRequest) Path() string { return "Transaction/" + r.ID }
func (CaptureTransactionRequest) Method() string { return http.MethodPost }

func (r CaptureTransactionRequest) Fields() []Field {
	var f fieldList
	f.addInt("amount", r.TotalAmount)
	return f
}

// GetPaymentProvidersRequest lists the available payment providers.
type GetPaymentProvidersRequest struct{}

func (GetPaymentProvidersRequest) Path() string    { return "PaymentProvider/" }
func (GetPaymentProvidersRequest) Method() string  { return http.MethodGet }
func (GetPaymentProvidersRequest) Fields() []Field { return nil }
