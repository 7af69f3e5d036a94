package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func decodeRaw(t *testing.T, payload string) RawRecord {
	t.Helper()
	var raw RawRecord
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return raw
}

func testContext() *Context {
	return &Context{
		SpotPriceUSD:     2000,
		Currencies:       map[string]bool{"Ether": true, "Wrapped Ether": true},
		CurrencyDecimals: 18,
	}
}

const openSeaSaleEvent = `{
	"event_type": "successful",
	"quantity": "1",
	"total_price": "2500000000000000000",
	"created_date": "2021-09-20T17:09:10.186000",
	"payment_token": {
		"symbol": "ETH",
		"name": "Ether",
		"decimals": 18,
		"usd_price": "1966.21"
	}
}`

func TestOpenSeaAdapter(t *testing.T) {
	raw := decodeRaw(t, `{
		"event_type": "successful",
		"quantity": "2",
		"total_price": "2500000000000000000",
		"created_date": "2021-09-20T17:09:10.186000",
		"payment_token": {
			"symbol": "WETH",
			"name": "Wrapped Ether",
			"decimals": 18,
			"usd_price": "1966.21"
		}
	}`)

	sale, err := OpenSeaAdapter{}.Adapt(raw, testContext())
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}

	if sale.Quantity != 2 {
		t.Fatalf("quantity: got %d", sale.Quantity)
	}
	if sale.RawAmount.String() != "2500000000000000000" {
		t.Fatalf("raw amount: got %s", sale.RawAmount)
	}
	if sale.CurrencyDecimals != 18 {
		t.Fatalf("decimals: got %d", sale.CurrencyDecimals)
	}
	if sale.UnitPriceUSD != 1966.21 {
		t.Fatalf("unit price: got %f", sale.UnitPriceUSD)
	}
	if sale.CurrencyName != "Wrapped Ether" {
		t.Fatalf("currency: got %s", sale.CurrencyName)
	}
	if sale.Timestamp.Year() != 2021 || sale.Timestamp.Month() != 9 {
		t.Fatalf("timestamp: got %s", sale.Timestamp)
	}
	t.Logf("adapted: %d x %s wei @ $%.2f/unit", sale.Quantity, sale.RawAmount, sale.UnitPriceUSD)
}

func TestOpenSeaAdapter_DefaultQuantity(t *testing.T) {
	raw := decodeRaw(t, `{
		"total_price": "1000000000000000000",
		"created_date": "2021-09-20T17:09:10",
		"payment_token": {"name": "Ether", "decimals": 18, "usd_price": "2000"}
	}`)

	sale, err := OpenSeaAdapter{}.Adapt(raw, testContext())
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if sale.Quantity != 1 {
		t.Fatalf("missing quantity should default to 1, got %d", sale.Quantity)
	}
}

func TestOpenSeaAdapter_Skips(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"foreign currency", `{
			"total_price": "5000000",
			"created_date": "2021-09-20T17:09:10",
			"payment_token": {"name": "USD Coin", "decimals": 6, "usd_price": "1.0"}
		}`},
		{"zero-value transfer", `{
			"total_price": "0",
			"created_date": "2021-09-20T17:09:10",
			"payment_token": {"name": "Ether", "decimals": 18, "usd_price": "2000"}
		}`},
		{"no payment token", `{"total_price": "1000", "created_date": "2021-09-20T17:09:10"}`},
		{"no sale amount", `{
			"created_date": "2021-09-20T17:09:10",
			"payment_token": {"name": "Ether", "decimals": 18, "usd_price": "2000"}
		}`},
		{"token without usd price", `{
			"total_price": "1000000000000000000",
			"created_date": "2021-09-20T17:09:10",
			"payment_token": {"name": "Ether", "decimals": 18}
		}`},
	}

	for _, tc := range cases {
		_, err := OpenSeaAdapter{}.Adapt(decodeRaw(t, tc.payload), testContext())
		if err == nil {
			t.Fatalf("%s: expected skip", tc.name)
		}
		if !IsSkipped(err) {
			t.Fatalf("%s: expected ErrSkipped, got %v", tc.name, err)
		}
		t.Logf("%s: %v", tc.name, err)
	}
}

func TestOpenSeaAdapter_DoesNotMutateRaw(t *testing.T) {
	raw := decodeRaw(t, openSeaSaleEvent)
	before, _ := json.Marshal(raw)

	OpenSeaAdapter{}.Adapt(raw, testContext())

	after, _ := json.Marshal(raw)
	if string(before) != string(after) {
		t.Fatal("adapter mutated the raw record")
	}
}

const contractAddr = "0x3B3ee1931Dc30C1957379FAc9aba94D1C48a5405"

func etherscanContext() *Context {
	ctx := testContext()
	ctx.Contract = common.HexToAddress(contractAddr)
	return ctx
}

func TestEtherscanAdapter(t *testing.T) {
	raw := decodeRaw(t, `{
		"timeStamp": "1632157750",
		"value": "2500000000000000000",
		"isError": "0",
		"to": "0x3b3ee1931dc30c1957379fac9aba94d1c48a5405",
		"from": "0x1111111111111111111111111111111111111111"
	}`)

	sale, err := EtherscanAdapter{}.Adapt(raw, etherscanContext())
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}

	if sale.Quantity != 1 {
		t.Fatalf("quantity: got %d", sale.Quantity)
	}
	if sale.RawAmount.String() != "2500000000000000000" {
		t.Fatalf("raw amount: got %s", sale.RawAmount)
	}
	if sale.UnitPriceUSD != 2000 {
		t.Fatalf("unit price should come from context, got %f", sale.UnitPriceUSD)
	}
	if sale.CurrencyName != "Ether" {
		t.Fatalf("currency: got %s", sale.CurrencyName)
	}
	if sale.Timestamp.Unix() != 1632157750 {
		t.Fatalf("timestamp: got %s", sale.Timestamp)
	}
}

func TestEtherscanAdapter_ExcludesZeroValue(t *testing.T) {
	raw := decodeRaw(t, `{
		"timeStamp": "1632157750",
		"value": "0",
		"isError": "0",
		"to": "0x3b3ee1931dc30c1957379fac9aba94d1c48a5405"
	}`)

	_, err := EtherscanAdapter{}.Adapt(raw, etherscanContext())
	if err == nil || !IsSkipped(err) {
		t.Fatalf("zero-value transaction must be skipped, got %v", err)
	}
}

func TestEtherscanAdapter_Skips(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"failed transaction", `{
			"timeStamp": "1632157750", "value": "100", "isError": "1",
			"to": "0x3b3ee1931dc30c1957379fac9aba94d1c48a5405"
		}`},
		{"wrong contract", `{
			"timeStamp": "1632157750", "value": "100", "isError": "0",
			"to": "0x2222222222222222222222222222222222222222"
		}`},
		{"no value", `{
			"timeStamp": "1632157750", "isError": "0",
			"to": "0x3b3ee1931dc30c1957379fac9aba94d1c48a5405"
		}`},
	}

	for _, tc := range cases {
		_, err := EtherscanAdapter{}.Adapt(decodeRaw(t, tc.payload), etherscanContext())
		if err == nil || !IsSkipped(err) {
			t.Fatalf("%s: expected skip, got %v", tc.name, err)
		}
	}
}

func TestEtherscanAdapter_AddressComparisonIsCaseInsensitive(t *testing.T) {
	raw := decodeRaw(t, `{
		"timeStamp": "1632157750",
		"value": "100",
		"isError": "0",
		"to": "0x3B3EE1931DC30C1957379FAC9ABA94D1C48A5405"
	}`)
	if _, err := (EtherscanAdapter{}).Adapt(raw, etherscanContext()); err != nil {
		t.Fatalf("checksummed casing should match: %v", err)
	}
}

func TestEtherscanAdapter_NoSpotPrice(t *testing.T) {
	raw := decodeRaw(t, `{
		"timeStamp": "1632157750",
		"value": "100",
		"isError": "0",
		"to": "0x3b3ee1931dc30c1957379fac9aba94d1c48a5405"
	}`)
	ctx := etherscanContext()
	ctx.SpotPriceUSD = 0

	_, err := EtherscanAdapter{}.Adapt(raw, ctx)
	if err == nil || !IsInvalid(err) {
		t.Fatalf("missing spot price is an invalid-record condition, got %v", err)
	}
}

func TestEtherscanAdapter_NoContractFilter(t *testing.T) {
	raw := decodeRaw(t, `{
		"timeStamp": "1632157750",
		"value": "100",
		"isError": "0",
		"to": "0x2222222222222222222222222222222222222222"
	}`)
	// Zero contract address disables the recipient filter.
	if _, err := (EtherscanAdapter{}).Adapt(raw, testContext()); err != nil {
		t.Fatalf("expected pass with filter disabled: %v", err)
	}
}
