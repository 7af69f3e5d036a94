package pipeline

import (
	"math/big"
	"strconv"
	"time"

	"github.com/sotoblanco/nftscope/internal/models"
)

// OpenSeaAdapter maps an OpenSea "successful" event into an IntermediateSale.
// OpenSea reports the payment token alongside each event, so the unit price
// is taken per-record from the payload rather than from Context.
type OpenSeaAdapter struct{}

func (OpenSeaAdapter) Name() string { return "opensea" }

func (OpenSeaAdapter) Adapt(raw RawRecord, ctx *Context) (*models.IntermediateSale, error) {
	token, ok := rawObject(raw, "payment_token")
	if !ok {
		return nil, SkipRecord("no payment token")
	}

	currency := rawString(token, "name")
	if currency == "" {
		currency = rawString(token, "symbol")
	}
	if !ctx.Currencies[currency] {
		return nil, SkipRecord("currency " + strconv.Quote(currency) + " not in inclusion set")
	}

	amount, ok := rawBigInt(raw, "total_price")
	if !ok {
		return nil, SkipRecord("no sale amount")
	}
	if amount.Sign() == 0 {
		return nil, SkipRecord("zero-value transfer")
	}

	quantity := int64(1)
	if q, ok := rawBigInt(raw, "quantity"); ok && q.IsInt64() && q.Int64() > 0 {
		quantity = q.Int64()
	}

	decimals := ctx.CurrencyDecimals
	if d, ok := rawFloat(token, "decimals"); ok {
		decimals = int32(d)
	}

	unitPrice, ok := rawFloat(token, "usd_price")
	if !ok || unitPrice <= 0 {
		return nil, SkipRecord("payment token has no usd price")
	}

	ts, ok := rawTimestamp(raw, "created_date")
	if !ok {
		if tx, okTx := rawObject(raw, "transaction"); okTx {
			ts, ok = rawTimestamp(tx, "timestamp")
		}
	}
	if !ok {
		ts = time.Now().UTC()
	}

	return &models.IntermediateSale{
		Quantity:         quantity,
		RawAmount:        new(big.Int).Set(amount),
		CurrencyDecimals: decimals,
		UnitPriceUSD:     unitPrice,
		Timestamp:        ts,
		CurrencyName:     currency,
	}, nil
}
