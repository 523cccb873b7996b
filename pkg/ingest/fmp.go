package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	stockListPath    = "/api/v3/stock/list"
	searchSymbolPath = "/stable/search-symbol"
	stockListFile    = "full-stocks-list.json"
)

// Instrument is one row of the provider's full stock list.
type Instrument struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	Exchange          *string  `json:"exchange"`
	ExchangeShortName *string  `json:"exchangeShortName"`
	Type              string   `json:"type"`
}

func (i Instrument) exchangeShortName() string {
	if i.ExchangeShortName == nil {
		return ""
	}
	return strings.TrimSpace(*i.ExchangeShortName)
}

// SearchResult is one hit of a symbol search; only Currency is used.
type SearchResult struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Currency          string `json:"currency"`
	StockExchange     string `json:"stockExchange,omitempty"`
	ExchangeShortName string `json:"exchangeShortName,omitempty"`
}

// Client talks to the Financial Modeling Prep API. Responses are cached on
// disk under CacheDir and served from there unless Refresh is set.
type Client struct {
	BaseURL  string
	APIKey   string
	CacheDir string
	Refresh  bool
	Client   *http.Client

	limiter *rate.Limiter
}

func NewClient(baseURL, apiKey, cacheDir string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// StockList fetches every listed instrument.
func (c *Client) StockList(ctx context.Context) ([]Instrument, error) {
	var out []Instrument
	err := c.cached(filepath.Join(c.CacheDir, stockListFile), &out, func() ([]byte, error) {
		return c.get(ctx, stockListPath, url.Values{})
	})
	if err != nil {
		return nil, fmt.Errorf("stock list: %w", err)
	}
	return out, nil
}

// SearchSymbol looks a symbol up; results carry the listing currency.
func (c *Client) SearchSymbol(ctx context.Context, symbol string) ([]SearchResult, error) {
	var out []SearchResult
	path := filepath.Join(c.CacheDir, "symbol", cacheFileName(symbol))
	err := c.cached(path, &out, func() ([]byte, error) {
		return c.get(ctx, searchSymbolPath, url.Values{"query": {symbol}})
	})
	if err != nil {
		return nil, fmt.Errorf("search symbol %s: %w", symbol, err)
	}
	return out, nil
}

// cached decodes path into v, or fetches, decodes and then writes it.
func (c *Client) cached(path string, v interface{}, fetch func() ([]byte, error)) error {
	if c.CacheDir != "" && !c.Refresh {
		raw, err := os.ReadFile(path)
		if err == nil {
			return json.Unmarshal(raw, v)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	raw, err := fetch()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if c.CacheDir == "" {
		return nil
	}

	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, pretty, 0o644)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("apikey", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmp request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FMP API returned status %d", resp.StatusCode)
	}
	return body, nil
}

func cacheFileName(symbol string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(symbol)
	return name + ".json"
}
