package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	CreatedAt   time.Time
	Name        string
	Description string
	Category    string
	PriceUSD    decimal.Decimal
	WeightKg    decimal.Decimal
}
