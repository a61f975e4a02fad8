package payrexx

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ResponseStatus is the top-level status of an API response envelope.
type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "success"
	ResponseError   ResponseStatus = "error"
)

// Response is the generic envelope every API call returns. The current
// payload is the first element of Data, or absent; an error status or
// an empty list is always a failure regardless of list contents.
type Response[T any] struct {
	Status       ResponseStatus `json:"status"`
	ErrorMessage string         `json:"message"`
	Data         []T            `json:"data"`
}

// First returns the current payload, if any.
func (r *Response[T]) First() *T {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return &r.Data[0]
}

// InvoiceStatus is the remote status vocabulary driving reconciliation.
// Values not in this set must be treated as errors (fail closed).
type InvoiceStatus string

const (
	StatusPending           InvoiceStatus = "waiting"
	StatusConfirmed         InvoiceStatus = "confirmed"
	StatusCancelled         InvoiceStatus = "cancelled"
	StatusDeclined          InvoiceStatus = "declined"
	StatusAuthorized        InvoiceStatus = "authorized"
	StatusReserved          InvoiceStatus = "reserved"
	StatusRefunded          InvoiceStatus = "refunded"
	StatusPartiallyRefunded InvoiceStatus = "partially-refunded"
	StatusChargeback        InvoiceStatus = "chargeback"
	StatusError             InvoiceStatus = "error"
)

// Known reports whether s is part of the closed status enumeration.
func (s InvoiceStatus) Known() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusDeclined,
		StatusAuthorized, StatusReserved, StatusRefunded,
		StatusPartiallyRefunded, StatusChargeback, StatusError:
		return true
	}
	return false
}

// Bool is the wire-level boolean: encoded as "1"/"0", decoded from the
// synonyms true/yes/y/1 and false/no/n/0 (case-insensitive, trimmed)
// as well as native JSON booleans and numbers.
type Bool bool

func (b Bool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"1"`), nil
	}
	return []byte(`"0"`), nil
}

// FormValue renders the encoded form representation.
func (b Bool) FormValue() string {
	if b {
		return "1"
	}
	return "0"
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.TrimSpace(strings.Trim(string(data), `"`)))
	switch s {
	case "true", "yes", "y", "1":
		*b = true
		return nil
	case "false", "no", "n", "0", "null", "":
		*b = false
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

// StringInt is an identifier the API serves either as a JSON number or
// a string.
type StringInt string

func (s StringInt) String() string { return string(s) }

func (s *StringInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = StringInt(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = StringInt(n.String())
	return nil
}

// UnixTime decodes the API's unix-seconds timestamps.
type UnixTime struct {
	time.Time
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// Gateway is the remote representation of a single payment request
// (the API calls the same payload a gateway or an invoice depending on
// how it was created). Amounts are integer minor-currency units.
type Gateway struct {
	ID           StringInt     `json:"id"`
	Status       InvoiceStatus `json:"status"`
	Hash         string        `json:"hash"`
	ReferenceID  string        `json:"referenceId"`
	PaymentLink  string        `json:"link"`
	Authorized   Bool          `json:"preAuthorization"`
	Reserved     Bool          `json:"reservation"`
	Name         string        `json:"name"`
	APIUsed      Bool          `json:"api"`
	Purpose      string        `json:"purpose"`
	TotalAmount  int           `json:"amount"`
	VatRate      float64       `json:"vatRate"`
	CurrencyCode string        `json:"currency"`
	Sku          string        `json:"sku"`
	CreatedAt    UnixTime      `json:"createdAt"`
	// InvoiceID is set on invoices created through the API; webhooks
	// reference the originating gateway through it.
	InvoiceID StringInt `json:"paymentRequestId"`
}

// Contact is the payer's contact section of a webhook transaction. Not
// used for reconciliation.
type Contact struct {
	ID       StringInt `json:"id"`
	Forename string    `json:"firstname"`
	Surname  string    `json:"lastname"`
	Company  string    `json:"company"`
	Street   string    `json:"street"`
	ZipCode  string    `json:"zip"`
	Place    string    `json:"place"`
	Country  string    `json:"country"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
}

// Subscription describes a recurring payment a transaction belongs to.
type Subscription struct {
	ID        StringInt `json:"id"`
	Active    Bool      `json:"active"`
	ValidTo   string    `json:"valid_to"`
	Interval  string    `json:"interval"`
	CancelURL string    `json:"action_cancel"`
}

// Transaction is the payload of a webhook notification. Its embedded
// status exists for logging only; reconciliation re-fetches the
// authoritative gateway state by invoice id.
type Transaction struct {
	ID           StringInt     `json:"id"`
	UUID         string        `json:"uuid"`
	CreatedAt    string        `json:"time"`
	Status       InvoiceStatus `json:"status"`
	LanguageCode string        `json:"lang"`
	PSPName      string        `json:"psp"`
	PSPID        StringInt     `json:"pspId"`
	ServiceFee   int           `json:"payrexx_fee"`
	Invoice      *Gateway      `json:"invoice"`
	Contact      *Contact      `json:"contact"`
	Subscription *Subscription `json:"subscription"`
}

// Webhook is the inbound notification body: {"transaction": {...}}.
type Webhook struct {
	Transaction *Transaction `json:"transaction"`
}

// PaymentProvider is one entry of the PaymentProvider/ listing.
type PaymentProvider struct {
	ID     StringInt `json:"id"`
	Name   string    `json:"name"`
	Active Bool      `json:"active"`
}
