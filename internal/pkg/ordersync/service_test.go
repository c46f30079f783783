package ordersync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// fakeBackend records every call so tests can assert which saga steps ran.
type fakeBackend struct {
	variants map[string]*saleor.VariantDetails

	variantErr     error
	methods        []saleor.ShippingMethod
	methodsErr     error
	draftCreateErr error
	shippingErr    error
	completeErr    error
	markPaidErr    error
	noteErr        error

	variantCalls  int
	createCalls   int
	shippingCalls int
	completeCalls int
	markPaidCalls int
	noteCalls     int

	lastInput    saleor.DraftOrderInput
	lastPaidRef  string
	lastPaidID   string
	lastNote     string
	lastMethodID string
}

func (f *fakeBackend) VariantDetails(_ context.Context, id, _ string) (*saleor.VariantDetails, error) {
	f.variantCalls++
	if f.variantErr != nil {
		return nil, f.variantErr
	}
	return f.variants[id], nil
}

func (f *fakeBackend) ShippingMethods(_ context.Context, _ string) ([]saleor.ShippingMethod, error) {
	return f.methods, f.methodsErr
}

func (f *fakeBackend) DraftOrderCreate(_ context.Context, input saleor.DraftOrderInput) (string, error) {
	f.createCalls++
	f.lastInput = input
	if f.draftCreateErr != nil {
		return "", f.draftCreateErr
	}
	return "draft-1", nil
}

func (f *fakeBackend) DraftOrderShippingMethodUpdate(_ context.Context, _, methodID string) error {
	f.shippingCalls++
	f.lastMethodID = methodID
	return f.shippingErr
}

func (f *fakeBackend) DraftOrderComplete(_ context.Context, _ string) (string, error) {
	f.completeCalls++
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return "1042", nil
}

func (f *fakeBackend) OrderMarkAsPaid(_ context.Context, id, reference string) error {
	f.markPaidCalls++
	f.lastPaidID = id
	f.lastPaidRef = reference
	return f.markPaidErr
}

func (f *fakeBackend) OrderNoteAdd(_ context.Context, _, message string) error {
	f.noteCalls++
	f.lastNote = message
	return f.noteErr
}

func intp(v int) *int { return &v }

func stockedBackend() *fakeBackend {
	return &fakeBackend{
		variants: map[string]*saleor.VariantDetails{
			"v1": {ID: "v1", Name: "EU 42", QuantityAvailable: intp(10)},
			"v2": {ID: "v2", Name: "EU 43", QuantityAvailable: intp(5)},
		},
		methods: []saleor.ShippingMethod{{ID: "sm-1", Name: "Standard"}},
	}
}

func successWebhook() shiprocket.OrderWebhook {
	return shiprocket.OrderWebhook{
		OrderID:     "SR-1",
		Status:      shiprocket.OrderStatusSuccess,
		PaymentType: shiprocket.PaymentPrepaid,
		Email:       "buyer@example.com",
		CartData: shiprocket.CartData{
			Items: []shiprocket.CartItem{
				{VariantID: "v1", Quantity: 2},
				{VariantID: "v2", Quantity: 1},
			},
		},
		ShippingAddress: &shiprocket.Address{
			AddressLine1: "42 Hill Road",
			City:         "Asha Patel",
			State:        "MH",
			Pincode:      "400050",
			Country:      "IN",
		},
	}
}

func TestCreateOrderStatusGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status string
	}{
		{name: "failed", status: shiprocket.OrderStatusFailed},
		{name: "pending", status: shiprocket.OrderStatusPending},
		{name: "empty", status: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := stockedBackend()
			svc := NewService(backend)

			webhook := successWebhook()
			webhook.Status = tt.status
			result := svc.CreateOrderFromWebhook(context.Background(), webhook, "")

			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "not SUCCESS")
			assert.Equal(t, 0, backend.variantCalls)
			assert.Equal(t, 0, backend.createCalls)
		})
	}
}

func TestCreateOrderFullSaga(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "draft-1", result.OrderID)
	assert.Equal(t, "1042", result.OrderNumber)

	assert.Equal(t, 2, backend.variantCalls)
	assert.Equal(t, 1, backend.createCalls)
	assert.Equal(t, 1, backend.shippingCalls)
	assert.Equal(t, "sm-1", backend.lastMethodID)
	assert.Equal(t, 1, backend.completeCalls)

	// Prepaid orders are marked paid with ShipRocket's id as reference.
	assert.Equal(t, 1, backend.markPaidCalls)
	assert.Equal(t, "draft-1", backend.lastPaidID)
	assert.Equal(t, "SR-1", backend.lastPaidRef)

	assert.Equal(t, 1, backend.noteCalls)
	assert.Equal(t, "ShipRocket Order ID: SR-1\nPayment Type: PREPAID", backend.lastNote)

	require.Len(t, backend.lastInput.Lines, 2)
	assert.Equal(t, "default-channel", backend.lastInput.ChannelID)
	assert.Equal(t, "buyer@example.com", backend.lastInput.UserEmail)
}

func TestCreateOrderCashOnDeliverySkipsMarkPaid(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	svc := NewService(backend)

	webhook := successWebhook()
	webhook.PaymentType = shiprocket.PaymentCashOnDelivery
	result := svc.CreateOrderFromWebhook(context.Background(), webhook, "")

	require.True(t, result.Success)
	assert.Equal(t, 0, backend.markPaidCalls)
	assert.Equal(t, "ShipRocket Order ID: SR-1\nPayment Type: CASH_ON_DELIVERY", backend.lastNote)
}

func TestCreateOrderDropsUnresolvableVariants(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	delete(backend.variants, "v2")
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	require.True(t, result.Success)
	require.Len(t, backend.lastInput.Lines, 1)
	assert.Equal(t, "v1", backend.lastInput.Lines[0].VariantID)
}

func TestCreateOrderNoResolvableLines(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	backend.variants = nil
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	assert.False(t, result.Success)
	assert.Equal(t, "No valid order lines could be created", result.Error)
	assert.Equal(t, 0, backend.createCalls)
}

func TestCreateOrderInsufficientStockStillShips(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	backend.variants["v1"] = &saleor.VariantDetails{ID: "v1", QuantityAvailable: intp(1)}
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	require.True(t, result.Success)
	require.Len(t, backend.lastInput.Lines, 2)
	assert.Equal(t, 2, backend.lastInput.Lines[0].Quantity)
}

func TestCreateOrderDraftCreateFailureAborts(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	backend.draftCreateErr = errors.New("channel not found")
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "channel not found")
	assert.Equal(t, 0, backend.completeCalls)
}

func TestCreateOrderCompleteFailureAborts(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	backend.completeErr = errors.New("draft has no shipping address")
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "draft has no shipping address")
	assert.Equal(t, 0, backend.markPaidCalls)
	assert.Equal(t, 0, backend.noteCalls)
}

func TestCreateOrderShippingFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*fakeBackend)
	}{
		{name: "lookup fails", setup: func(b *fakeBackend) { b.methodsErr = errors.New("timeout") }},
		{name: "no methods", setup: func(b *fakeBackend) { b.methods = nil }},
		{name: "attach fails", setup: func(b *fakeBackend) { b.shippingErr = errors.New("invalid method") }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := stockedBackend()
			tt.setup(backend)
			svc := NewService(backend)

			result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

			require.True(t, result.Success)
			assert.Equal(t, 1, backend.completeCalls)
		})
	}
}

func TestCreateOrderMarkPaidFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	backend.markPaidErr = errors.New("payments disabled")
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	require.True(t, result.Success)
	assert.Equal(t, 1, backend.noteCalls)
}

func TestBuildAddress(t *testing.T) {
	t.Parallel()

	t.Run("nil address gets placeholders", func(t *testing.T) {
		t.Parallel()

		got := buildAddress(nil)
		assert.Equal(t, "Guest", got.FirstName)
		assert.Equal(t, "Customer", got.LastName)
		assert.Equal(t, "Address not provided", got.StreetAddress1)
		assert.Equal(t, "Unknown", got.City)
		assert.Equal(t, "000000", got.PostalCode)
		assert.Equal(t, "IN", got.Country)
	})

	t.Run("name split from city field", func(t *testing.T) {
		t.Parallel()

		got := buildAddress(&shiprocket.Address{
			AddressLine1: "42 Hill Road",
			City:         "Asha Patel Kumar",
			State:        "MH",
			Pincode:      "400050",
			Country:      "IN",
		})
		assert.Equal(t, "Asha", got.FirstName)
		assert.Equal(t, "Patel Kumar", got.LastName)
		assert.Equal(t, "42 Hill Road", got.StreetAddress1)
		assert.Equal(t, "MH", got.CountryArea)
	})

	t.Run("single word city keeps default last name", func(t *testing.T) {
		t.Parallel()

		got := buildAddress(&shiprocket.Address{City: "Asha"})
		assert.Equal(t, "Asha", got.FirstName)
		assert.Equal(t, "Customer", got.LastName)
	})

	t.Run("empty fields get defaults", func(t *testing.T) {
		t.Parallel()

		got := buildAddress(&shiprocket.Address{})
		assert.Equal(t, "Guest", got.FirstName)
		assert.Equal(t, "Customer", got.LastName)
		assert.Equal(t, "Not provided", got.StreetAddress1)
		assert.Equal(t, "Unknown", got.City)
		assert.Equal(t, "000000", got.PostalCode)
		assert.Equal(t, "IN", got.Country)
	})
}

func TestBillingDefaultsToShipping(t *testing.T) {
	t.Parallel()

	backend := stockedBackend()
	svc := NewService(backend)

	result := svc.CreateOrderFromWebhook(context.Background(), successWebhook(), "")

	require.True(t, result.Success)
	require.NotNil(t, backend.lastInput.BillingAddress)
	assert.Equal(t, backend.lastInput.ShippingAddress.StreetAddress1, backend.lastInput.BillingAddress.StreetAddress1)
}
