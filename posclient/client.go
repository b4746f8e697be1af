// Package posclient talks to the point-of-sale item API. The POS is
// authoritative for live stock and sale price; this backend reads items and
// stock by location and patches quantities after local mutations commit.
package posclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Sku          string          `json:"sku"`
	Barcode      string          `json:"barcode"`
	LocationId   string          `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	UpdatedAt    string          `json:"updated_at"`
}

type StockLevel struct {
	ItemId   string          `json:"item_id"`
	Sku      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Client is the surface this backend consumes. Reads are idempotent;
// PatchQuantity is the only write.
type Client interface {
	GetItemBySku(ctx context.Context, locationId string, sku string) (*Item, error)
	GetStockByLocation(ctx context.Context, locationId string) ([]*StockLevel, error)
	PatchQuantity(ctx context.Context, itemId string, locationId string, quantity decimal.Decimal) error
}

type posClient struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

// NewFromEnv builds the HTTP client from POS_API_* env vars. Returns nil when
// POS_API_KEY is unset: callers treat a nil client as "primary signalling
// unavailable" and record mutations locally only.
func NewFromEnv() Client {
	apiKey := strings.TrimSpace(os.Getenv("POS_API_KEY"))
	if apiKey == "" {
		return nil
	}

	baseURL := strings.TrimSpace(os.Getenv("POS_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.pos.local"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("POS_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("POS_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &posClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}
}

func (c *posClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	<-c.limiter
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pos api error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *posClient) GetItemBySku(ctx context.Context, locationId string, sku string) (*Item, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, errors.New("sku is empty")
	}
	params := url.Values{}
	params.Set("location_id", locationId)
	params.Set("sku", sku)

	data, err := c.do(ctx, http.MethodGet, "/v1/items", params, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Items []*Item `json:"items"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Items) == 0 {
		return nil, errors.New("item not found")
	}
	return parsed.Items[0], nil
}

func (c *posClient) GetStockByLocation(ctx context.Context, locationId string) ([]*StockLevel, error) {
	params := url.Values{}
	params.Set("location_id", locationId)

	data, err := c.do(ctx, http.MethodGet, "/v1/stock", params, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Stock []*StockLevel `json:"stock"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return parsed.Stock, nil
}

func (c *posClient) PatchQuantity(ctx context.Context, itemId string, locationId string, quantity decimal.Decimal) error {
	payload := map[string]any{
		"location_id": locationId,
		"quantity":    quantity,
	}
	_, err := c.do(ctx, http.MethodPatch, "/v1/items/"+url.PathEscape(itemId)+"/quantity", nil, payload)
	return err
}
