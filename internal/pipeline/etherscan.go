package pipeline

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sotoblanco/nftscope/internal/models"
)

// EtherscanAdapter maps an Etherscan account transaction into an
// IntermediateSale. The payload carries no price field, so the unit price is
// the single spot price supplied via Context — a known approximation for
// historically dated transactions (the two sources are deliberately
// asymmetric here).
type EtherscanAdapter struct {
	// EtherName is the currency name stamped on adapted records.
	// Defaults to "Ether".
	EtherName string
}

func (a EtherscanAdapter) Name() string { return "etherscan" }

func (a EtherscanAdapter) Adapt(raw RawRecord, ctx *Context) (*models.IntermediateSale, error) {
	if rawString(raw, "isError") == "1" {
		return nil, SkipRecord("failed transaction")
	}

	if ctx.Contract != (common.Address{}) {
		to := rawString(raw, "to")
		if !common.IsHexAddress(to) || common.HexToAddress(to) != ctx.Contract {
			return nil, SkipRecord("not addressed to tracked contract")
		}
	}

	value, ok := rawBigInt(raw, "value")
	if !ok {
		return nil, SkipRecord("no value field")
	}
	if value.Sign() == 0 {
		// Non-sale contract call (mint approval, transfer, etc.)
		return nil, SkipRecord("zero-value transaction")
	}

	if ctx.SpotPriceUSD <= 0 {
		return nil, &InvalidRecordError{Field: "unitPriceUsd", Reason: "context has no spot price"}
	}

	ts, ok := rawTimestamp(raw, "timeStamp")
	if !ok {
		return nil, SkipRecord("no timestamp")
	}

	name := a.EtherName
	if name == "" {
		name = "Ether"
	}

	return &models.IntermediateSale{
		Quantity:         1, // Etherscan does not report items per transfer
		RawAmount:        new(big.Int).Set(value),
		CurrencyDecimals: ctx.CurrencyDecimals,
		UnitPriceUSD:     ctx.SpotPriceUSD,
		Timestamp:        ts,
		CurrencyName:     name,
	}, nil
}
