package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Snapshot is a point-in-time set of market fields for a symbol. The
// external source may omit any field; absent fields stay nil.
type Snapshot struct {
	Symbol       string   `json:"symbol"`
	Name         *string  `json:"name,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	ChangePct    *float64 `json:"changePercent,omitempty"`
	EarningsDate *string  `json:"earningsDate,omitempty"`
}

// Gateway looks up a market snapshot for a single symbol.
type Gateway interface {
	Fetch(ctx context.Context, symbol string) (*Snapshot, error)
}

// Client fetches quotes from the external market data HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a market data client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves a snapshot for the symbol. A reachable source that omits
// fields is not an error; transport failures and bad statuses are.
func (c *Client) Fetch(ctx context.Context, symbol string) (*Snapshot, error) {
	u := c.baseURL + "/quote?symbol=" + url.QueryEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", symbol, err)
	}
	snapshot.Symbol = symbol

	return &snapshot, nil
}
