package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sotoblanco/nftscope/internal/httputil"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches the single current ETH/USD rate applied uniformly
// to records whose provider reports no per-record price.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type CoinGeckoOptions struct {
	// BaseURL overrides the production endpoint, used by tests.
	BaseURL string
}

func NewCoinGeckoClient(opts CoinGeckoOptions) *CoinGeckoClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

func (c *CoinGeckoClient) GetETHPrice(ctx context.Context) (float64, error) {
	endpoint := c.baseURL + "/simple/price?ids=ethereum&vs_currencies=usd"

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data struct {
		Ethereum struct {
			USD float64 `json:"usd"`
		} `json:"ethereum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	if data.Ethereum.USD <= 0 {
		return 0, fmt.Errorf("invalid price: %f", data.Ethereum.USD)
	}

	return data.Ethereum.USD, nil
}
