package orders

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending           = "pending"
	StatusAuthorized        = "authorized"
	StatusPaid              = "paid"
	StatusCancelled         = "cancelled"
	StatusRefunded          = "refunded"
	StatusPartiallyRefunded = "partially_refunded"
)

type Order struct {
	ID string `gorm:"type:char(36);primaryKey"`
	// Number is the human-facing order number; remote invoices carry
	// it as their reference id.
	Number string `gorm:"type:varchar(32);not null;uniqueIndex:ux_orders_number"`
	Status string `gorm:"type:varchar(32);not null"`

	TotalAmount    float64 `gorm:"type:decimal(12,2);not null"`
	RefundedAmount float64 `gorm:"type:decimal(12,2);not null;default:0"`
	Currency       string  `gorm:"type:char(3);not null"`

	CaptureTransactionID       *string `gorm:"type:varchar(128)"`
	AuthorizationTransactionID *string `gorm:"type:varchar(128)"`

	BillingForename string `gorm:"type:varchar(128)"`
	BillingSurname  string `gorm:"type:varchar(128)"`
	BillingPhone    string `gorm:"type:varchar(32)"`
	BillingEmail    string `gorm:"type:varchar(255)"`
	BillingStreet   string `gorm:"type:varchar(255)"`
	BillingCity     string `gorm:"type:varchar(128)"`
	BillingCountry  string `gorm:"type:char(2)"`
	BillingPostcode string `gorm:"type:varchar(16)"`

	PaidAt      *time.Time `gorm:"type:datetime(3)"`
	CancelledAt *time.Time `gorm:"type:datetime(3)"`
	RefundedAt  *time.Time `gorm:"type:datetime(3)"`
	CreatedAt   time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt   time.Time  `gorm:"type:datetime(3);not null"`
}

func (Order) TableName() string { return "orders" }

// TotalCents is the order total in minor currency units, rounded away
// from zero. Remote invoice amounts are compared against this value.
func (o Order) TotalCents() int {
	return int(math.Round(o.TotalAmount * 100))
}

// The Can* guards are the idempotence mechanism for webhook-driven
// transitions: a replayed notification finds the guard closed and the
// transition becomes a silent no-op.

func (o Order) CanMarkPaid() bool {
	return o.Status == StatusPending || o.Status == StatusAuthorized
}

func (o Order) CanMarkAuthorized() bool {
	return o.Status == StatusPending
}

func (o Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusAuthorized
}

func (o Order) CanRefund() bool {
	return o.Status == StatusPaid
}

func (o Order) CanPartialRefund(amount float64) bool {
	if amount <= 0 {
		return false
	}
	if o.Status != StatusPaid && o.Status != StatusPartiallyRefunded {
		return false
	}
	return o.RefundedAmount+amount <= o.TotalAmount
}

// OrderNote is an internal audit entry; webhook deliveries append one
// carrying the raw notification payload.
type OrderNote struct {
	ID                string         `gorm:"type:char(36);primaryKey"`
	OrderID           string         `gorm:"type:char(36);not null;index:ix_order_notes_order_id"`
	Note              string         `gorm:"type:text;not null"`
	Payload           datatypes.JSON `gorm:"type:json"`
	DisplayToCustomer bool           `gorm:"not null;default:0"`
	CreatedAt         time.Time      `gorm:"type:datetime(3);not null"`
}

func (OrderNote) TableName() string { return "order_notes" }

// OrderAttribute is a string key/value stored on an order. The remote
// invoice id lives here under a fixed key.
type OrderAttribute struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	OrderID   string    `gorm:"type:char(36);not null;uniqueIndex:ux_order_attributes_order_name,priority:1"`
	Name      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_order_attributes_order_name,priority:2"`
	Value     string    `gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (OrderAttribute) TableName() string { return "order_attributes" }
