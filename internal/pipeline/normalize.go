package pipeline

import (
	"github.com/shopspring/decimal"
	"github.com/sotoblanco/nftscope/internal/models"
)

// Normalize converts an intermediate sale into a per-item USD price:
//
//	priceUSD = (rawAmount / 10^currencyDecimals) * unitPriceUSD / quantity
//
// The major amount is computed with scaled decimal arithmetic before any
// float math so wei-scale integers (10^21 and up) keep full precision.
// No rounding is applied; display rounding belongs downstream.
func Normalize(sale *models.IntermediateSale) (*models.PricedSale, error) {
	switch {
	case sale.RawAmount == nil || sale.RawAmount.Sign() < 0:
		return nil, &InvalidRecordError{Field: "rawAmount", Reason: "must be a non-negative integer"}
	case sale.CurrencyDecimals < 0:
		return nil, &InvalidRecordError{Field: "currencyDecimals", Reason: "must be non-negative"}
	case sale.Quantity < 1:
		return nil, &InvalidRecordError{Field: "quantity", Reason: "must be at least 1"}
	case sale.UnitPriceUSD <= 0:
		return nil, &InvalidRecordError{Field: "unitPriceUsd", Reason: "must be positive"}
	}

	majorAmount := decimal.NewFromBigInt(sale.RawAmount, -sale.CurrencyDecimals)
	price := majorAmount.
		Mul(decimal.NewFromFloat(sale.UnitPriceUSD)).
		Div(decimal.NewFromInt(sale.Quantity))

	return &models.PricedSale{
		PriceUSD:  price.InexactFloat64(),
		Timestamp: sale.Timestamp,
	}, nil
}
