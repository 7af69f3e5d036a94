package models

import (
	"math/big"
	"time"
)

// IntermediateSale is the provider-agnostic shape every source adapter
// produces. RawAmount is expressed in the smallest unit of the payment
// currency (wei for Ether), so it is kept as a big.Int: sale amounts near
// 10^21 wei overflow int64 and must not lose precision before conversion.
type IntermediateSale struct {
	Quantity         int64     `json:"quantity"`
	RawAmount        *big.Int  `json:"rawAmount"`
	CurrencyDecimals int32     `json:"currencyDecimals"`
	UnitPriceUSD     float64   `json:"unitPriceUsd"`
	Timestamp        time.Time `json:"timestamp"`
	CurrencyName     string    `json:"currencyName"`
}

// PricedSale is a normalized per-item sale price. Derived once, never mutated.
type PricedSale struct {
	PriceUSD  float64   `json:"priceUsd"`
	Timestamp time.Time `json:"timestamp"`
}
