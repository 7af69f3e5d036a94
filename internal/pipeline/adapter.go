package pipeline

import (
	"encoding/json"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sotoblanco/nftscope/internal/models"
)

// RawRecord is a provider payload exactly as decoded from JSON. Adapters
// read it, never mutate it.
type RawRecord map[string]any

// Context carries the per-run shared inputs an adapter may need. It is
// populated once by the caller and read-only afterwards.
type Context struct {
	// SpotPriceUSD is the externally-fetched current price of one major
	// currency unit. Sources whose payloads carry no price field apply it
	// uniformly to every record, including historically dated ones. That is
	// a documented approximation: correcting it would need a historical
	// price feed this service does not have.
	SpotPriceUSD float64

	// Currencies is the inclusion set of payment currency names. Records in
	// any other currency are skipped so a bucketing pass never mixes
	// currencies.
	Currencies map[string]bool

	// CurrencyDecimals applies when the payload does not report decimals
	// itself (18 for Ether-denominated chains).
	CurrencyDecimals int32

	// Contract restricts source records to transfers addressed to one NFT
	// contract. The zero address disables the filter.
	Contract common.Address
}

// Adapter maps one provider-specific raw record into the common intermediate
// shape. It returns an error wrapping ErrSkipped for records that do not
// represent a currency-bearing sale.
type Adapter interface {
	Name() string
	Adapt(raw RawRecord, ctx *Context) (*models.IntermediateSale, error)
}

// --- raw field accessors ---

func rawString(m RawRecord, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func rawFloat(m RawRecord, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rawObject(m RawRecord, key string) (RawRecord, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return RawRecord(obj), ok
}

// rawBigInt parses an integer field that providers serialize as a decimal
// string (or, for JSON-RPC style payloads, a 0x-prefixed hex quantity).
func rawBigInt(m RawRecord, key string) (*big.Int, bool) {
	s := rawString(m, key)
	if s == "" {
		return nil, false
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		return n, ok
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func rawTimestamp(m RawRecord, key string) (time.Time, bool) {
	s := rawString(m, key)
	if s == "" {
		return time.Time{}, false
	}
	// Unix seconds (Etherscan style)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
