package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

const defaultBaseURL = "https://checkout-api.shiprocket.com"

// Fixed ShipRocket endpoint set.
const (
	endpointAccessToken       = "/api/v1/access-token/checkout"
	endpointProductWebhook    = "/wh/v1/custom/product"
	endpointCollectionWebhook = "/wh/v1/custom/collection"
	endpointOrderDetails      = "/api/v1/custom-platform-order/details"
)

// Client performs signed JSON POSTs against ShipRocket's checkout API.
type Client struct {
	BaseURL string
	APIKey  string
	Signer  *Signer

	HTTPClient *http.Client
}

// NewClientFromEnv builds the client from SHIPROCKET_* environment variables.
// A missing API key or secret is a fatal configuration error.
func NewClientFromEnv() (*Client, error) {
	apiKey := strings.TrimSpace(env.GetEnv("SHIPROCKET_API_KEY", ""))
	if apiKey == "" {
		return nil, errors.New("SHIPROCKET_API_KEY is not configured")
	}
	signer, err := NewSigner(env.GetEnv("SHIPROCKET_SECRET_KEY", ""))
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("SHIPROCKET_API_BASE_URL", defaultBaseURL), "/"),
		APIKey:  apiKey,
		Signer:  signer,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// post sends a signed JSON body and decodes the response into out.
func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	signature, err := c.Signer.Sign(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("X-Api-HMAC-SHA256", signature)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("[ShipRocket] %s returned status=%d body=%s", endpoint, resp.StatusCode, string(raw))
		return fmt.Errorf("shiprocket API error (%d): %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("shiprocket response decode failed: %w", err)
		}
	}
	return nil
}

// GenerateAccessToken requests a short-lived checkout token for a cart.
func (c *Client) GenerateAccessToken(ctx context.Context, items []CheckoutCartItem, redirectURL string) (*accessTokenResponse, error) {
	payload := map[string]any{
		"cart_data": map[string]any{
			"items": items,
		},
		"redirect_url": redirectURL,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	var out accessTokenResponse
	if err := c.post(ctx, endpointAccessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncProduct pushes one mapped product to ShipRocket's product webhook.
func (c *Client) SyncProduct(ctx context.Context, product CatalogProduct) error {
	return c.post(ctx, endpointProductWebhook, product, nil)
}

// SyncCollection pushes one mapped collection to ShipRocket's collection
// webhook.
func (c *Client) SyncCollection(ctx context.Context, collection CatalogCollection) error {
	return c.post(ctx, endpointCollectionWebhook, collection, nil)
}

// GetOrderDetails fetches ShipRocket's view of an order after checkout.
func (c *Client) GetOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error) {
	payload := map[string]any{
		"order_id":  orderID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	var out OrderDetails
	if err := c.post(ctx, endpointOrderDetails, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
