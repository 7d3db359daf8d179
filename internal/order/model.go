package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentPix        PaymentMethod = "PIX"
	PaymentBoleto     PaymentMethod = "BOLETO"
)

func (pm PaymentMethod) String() string {
	return string(pm)
}

func (pm PaymentMethod) Valid() bool {
	switch pm {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentBoleto:
		return true
	}
	return false
}

// OrderedItem is one line of an order. UnitaryPrice is a snapshot of the
// product price taken when the item was written, not a live link.
type OrderedItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitaryPrice decimal.Decimal `json:"unitary_price" db:"unitary_price"`

	// Denormalized for reads, never stored on the item row.
	ProductDescription string          `json:"product_description" db:"-"`
	ProductPrice       decimal.Decimal `json:"product_price" db:"-"`
}

type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	DateCreated   time.Time       `json:"date_created" db:"date_created"`
	Status        Status          `json:"status" db:"status"`
	Items         []OrderedItem   `json:"items" db:"-"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	TotalPrice    decimal.Decimal `json:"total_price" db:"total_price"`
	Discount      int             `json:"discount" db:"discount"`
	ShippingFee   decimal.Decimal `json:"shipping_fee" db:"shipping_fee"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemInput references a product to order. The price is resolved and
// snapshotted at write time.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateInput struct {
	Items         []ItemInput
	PaymentMethod PaymentMethod
	Discount      int
	ShippingFee   decimal.Decimal
}

type UpdateInput struct {
	Items       []ItemInput
	Status      Status
	Discount    int
	ShippingFee decimal.Decimal
}

// Filter holds the optional order search parameters. Nil fields impose no
// constraint; both range bounds are inclusive.
type Filter struct {
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	MinTotal  *decimal.Decimal
	MaxTotal  *decimal.Decimal
}
