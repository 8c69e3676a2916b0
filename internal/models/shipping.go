package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingQuery describes a parcel to price across carriers
type ShippingQuery struct {
	Origin        string
	Destination   string
	WeightKg      decimal.Decimal
	DeclaredValue decimal.Decimal
}

// ShippingRate is a single carrier quote
type ShippingRate struct {
	Carrier       string
	Service       string
	CostUSD       decimal.Decimal
	EstimatedDays int
	QuotedAt      time.Time
}
