package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sotoblanco/nftscope/internal/httputil"
	"github.com/sotoblanco/nftscope/internal/pipeline"
)

// MaxEtherscanTxs is the most transactions the txlist endpoint returns for
// one address without block-window pagination.
const MaxEtherscanTxs = 10000

const defaultEtherscanURL = "https://api.etherscan.io/api"

type EtherscanClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type EtherscanOptions struct {
	// BaseURL overrides the production endpoint, used by tests.
	BaseURL string
}

func NewEtherscanClient(apiKey string, opts EtherscanOptions) *EtherscanClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultEtherscanURL
	}
	return &EtherscanClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// FetchTransactions returns up to limit normal transactions for an address,
// newest first, as raw provider records. Like the OpenSea side this is one
// bounded batch with no pagination.
func (c *EtherscanClient) FetchTransactions(ctx context.Context, address string, limit int) ([]pipeline.RawRecord, error) {
	if limit <= 0 || limit > MaxEtherscanTxs {
		if limit > MaxEtherscanTxs {
			fmt.Printf("[ETHERSCAN] Requested %d transactions, provider caps at %d\n", limit, MaxEtherscanTxs)
		}
		limit = MaxEtherscanTxs
	}

	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "desc")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	endpoint := c.baseURL + "?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("etherscan fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etherscan returned status %d", resp.StatusCode)
	}

	var data struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	// Status "0" is both "no results" and "error"; the message tells them
	// apart (result becomes a plain string on real errors).
	if data.Status != "1" {
		if strings.Contains(data.Message, "No transactions found") {
			return nil, nil
		}
		return nil, fmt.Errorf("etherscan error: %s", data.Message)
	}

	var txs []pipeline.RawRecord
	if err := json.Unmarshal(data.Result, &txs); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}
