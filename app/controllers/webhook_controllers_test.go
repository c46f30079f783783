package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/shiprocket-bridge/internal/pkg/ordersync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/pushsync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// happyBackend resolves every variant and completes every draft.
type happyBackend struct{}

func (happyBackend) VariantDetails(_ context.Context, id, _ string) (*saleor.VariantDetails, error) {
	return &saleor.VariantDetails{ID: id}, nil
}

func (happyBackend) ShippingMethods(_ context.Context, _ string) ([]saleor.ShippingMethod, error) {
	return []saleor.ShippingMethod{{ID: "sm-1"}}, nil
}

func (happyBackend) DraftOrderCreate(_ context.Context, _ saleor.DraftOrderInput) (string, error) {
	return "draft-1", nil
}

func (happyBackend) DraftOrderShippingMethodUpdate(_ context.Context, _, _ string) error {
	return nil
}

func (happyBackend) DraftOrderComplete(_ context.Context, _ string) (string, error) {
	return "1042", nil
}

func (happyBackend) OrderMarkAsPaid(_ context.Context, _, _ string) error { return nil }
func (happyBackend) OrderNoteAdd(_ context.Context, _, _ string) error    { return nil }

type noopPusher struct{}

func (noopPusher) SyncProduct(_ context.Context, _ shiprocket.CatalogProduct) error       { return nil }
func (noopPusher) SyncCollection(_ context.Context, _ shiprocket.CatalogCollection) error { return nil }

func orderWebhookApp(t *testing.T) (*fiber.App, *ordersync.RetryQueue, *shiprocket.Signer) {
	t.Helper()

	signer, err := shiprocket.NewSigner("order-secret")
	require.NoError(t, err)

	queue := ordersync.NewRetryQueue()
	ctl := NewOrderWebhookController(ordersync.NewService(happyBackend{}), queue, signer)

	app := fiber.New()
	app.Post("/webhooks/order-placed", ctl.HandleOrderPlaced)
	return app, queue, signer
}

func orderPayload(status string) []byte {
	payload, _ := json.Marshal(shiprocket.OrderWebhook{
		OrderID:     "SR-1",
		Status:      status,
		PaymentType: shiprocket.PaymentCashOnDelivery,
		CartData: shiprocket.CartData{
			Items: []shiprocket.CartItem{{VariantID: "v1", Quantity: 1}},
		},
	})
	return payload
}

func decodeBody(t *testing.T, resp io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestHandleOrderPlacedSuccess(t *testing.T) {
	t.Parallel()

	app, queue, _ := orderWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader(orderPayload(shiprocket.OrderStatusSuccess)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "draft-1", body["order_id"])
	assert.Equal(t, "1042", body["order_number"])
	assert.Equal(t, 0, queue.Status().QueueSize)
}

func TestHandleOrderPlacedSignature(t *testing.T) {
	t.Parallel()

	app, _, signer := orderWebhookApp(t)
	payload := orderPayload(shiprocket.OrderStatusSuccess)

	t.Run("valid signature accepted", func(t *testing.T) {
		sig, err := signer.Sign(payload)
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Api-HMAC-SHA256", sig)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Api-HMAC-SHA256", "bm90LXRoZS1zaWduYXR1cmU=")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing header passes through", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestHandleOrderPlacedInvalidPayload(t *testing.T) {
	t.Parallel()

	app, _, _ := orderWebhookApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{not-json"},
		{name: "missing order id", body: `{"status":"SUCCESS","cart_data":{"items":[]}}`},
		{name: "missing cart items", body: `{"order_id":"SR-1","status":"SUCCESS"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader([]byte(tt.body)))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleOrderPlacedFailureQueuesAndAcks(t *testing.T) {
	t.Parallel()

	app, queue, _ := orderWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/order-placed", bytes.NewReader(orderPayload(shiprocket.OrderStatusFailed)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	// 200 even on failure; the payload lands on the retry queue instead.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 1, queue.Status().QueueSize)
}

func saleorWebhookApp(t *testing.T) (*fiber.App, *saleor.WebhookVerifier) {
	t.Helper()

	verifier, err := saleor.NewWebhookVerifier("saleor-secret")
	require.NoError(t, err)
	ctl := NewSaleorWebhookController(pushsync.NewService(noopPusher{}), verifier)

	app := fiber.New()
	app.Post("/webhooks/saleor-product-updated", ctl.HandleProductUpdated)
	app.Post("/webhooks/saleor-category-updated", ctl.HandleCategoryUpdated)
	return app, verifier
}

func TestHandleProductUpdatedRequiresSignature(t *testing.T) {
	t.Parallel()

	app, verifier := saleorWebhookApp(t)
	payload := []byte(`{"product":{"id":"p1","name":"Shoe","variants":[{"id":"v1"}]}}`)

	t.Run("unsigned rejected", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/saleor-product-updated", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("signed accepted", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/saleor-product-updated", bytes.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("Saleor-Signature", verifier.Sign(payload))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, true, body["success"])
	})
}

func TestHandleCategoryUpdatedAcksWithoutSignature(t *testing.T) {
	t.Parallel()

	app, _ := saleorWebhookApp(t)
	payload := []byte(`{"category":{"id":"k1","name":"Footwear"}}`)

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/saleor-category-updated", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Category update acknowledged", body["message"])
}
