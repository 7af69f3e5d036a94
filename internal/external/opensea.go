package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sotoblanco/nftscope/internal/httputil"
	"github.com/sotoblanco/nftscope/internal/pipeline"
)

// MaxOpenSeaEvents is the hard cap the events endpoint serves per query;
// requests beyond it are clamped, not paginated.
const MaxOpenSeaEvents = 300

const defaultOpenSeaURL = "https://api.opensea.io/api/v1"

type OpenSeaClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type OpenSeaOptions struct {
	// BaseURL overrides the production endpoint, used by tests.
	BaseURL string
}

func NewOpenSeaClient(apiKey string, opts OpenSeaOptions) *OpenSeaClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenSeaURL
	}
	return &OpenSeaClient{
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

// FetchSaleEvents returns up to limit "successful" (sale) events for one
// asset contract, newest first, as raw provider records. A single bounded
// batch: the caller owns any decision to re-query.
func (c *OpenSeaClient) FetchSaleEvents(ctx context.Context, contract string, limit int) ([]pipeline.RawRecord, error) {
	if limit <= 0 || limit > MaxOpenSeaEvents {
		if limit > MaxOpenSeaEvents {
			fmt.Printf("[OPENSEA] Requested %d events, provider caps at %d\n", limit, MaxOpenSeaEvents)
		}
		limit = MaxOpenSeaEvents
	}

	q := url.Values{}
	q.Set("asset_contract_address", contract)
	q.Set("event_type", "successful")
	q.Set("only_opensea", "false")
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/events?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-KEY", c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("opensea fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensea returned status %d", resp.StatusCode)
	}

	var data struct {
		AssetEvents []pipeline.RawRecord `json:"asset_events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return data.AssetEvents, nil
}
