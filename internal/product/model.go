package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

func (s Status) String() string {
	return string(s)
}

type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Category      string          `json:"category" db:"category"`
	QuantityStock int             `json:"quantity_stock" db:"quantity_stock"`
	Status        Status          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Disabled reports whether the product was soft-deleted.
func (p *Product) Disabled() bool {
	return p.Status == StatusDisabled
}

// Filter holds the optional product search parameters. Nil fields impose
// no constraint.
type Filter struct {
	Description *string
	Category    *string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}
