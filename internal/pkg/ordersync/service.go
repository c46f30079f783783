package ordersync

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// Backend is the slice of the Saleor client the saga consumes;
// *saleor.Client satisfies it.
type Backend interface {
	VariantDetails(ctx context.Context, id, channel string) (*saleor.VariantDetails, error)
	ShippingMethods(ctx context.Context, channel string) ([]saleor.ShippingMethod, error)
	DraftOrderCreate(ctx context.Context, input saleor.DraftOrderInput) (string, error)
	DraftOrderShippingMethodUpdate(ctx context.Context, id, shippingMethodID string) error
	DraftOrderComplete(ctx context.Context, id string) (string, error)
	OrderMarkAsPaid(ctx context.Context, id, transactionReference string) error
	OrderNoteAdd(ctx context.Context, orderID, message string) error
}

// Result is the saga's terminal outcome.
type Result struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Error       string `json:"error,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Service turns an inbound order-placed webhook into a completed Saleor
// order. Steps run strictly in sequence; shipping method attachment, payment
// marking and annotation are non-critical and never fail the saga, while the
// status gate, line building, draft creation and completion are load-bearing.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// CreateOrderFromWebhook runs the full saga for one webhook. It never panics
// past this boundary; every failure is reported in the Result.
func (s *Service) CreateOrderFromWebhook(ctx context.Context, webhook shiprocket.OrderWebhook, channel string) Result {
	if channel == "" {
		channel = "default-channel"
	}

	log.Infof("[OrderSync] processing webhook: order=%s items=%d payment=%s",
		webhook.OrderID, len(webhook.CartData.Items), webhook.PaymentType)

	// Step 1: status gate. Anything but SUCCESS aborts with no side effects.
	if webhook.Status != shiprocket.OrderStatusSuccess {
		log.Warnf("[OrderSync] webhook status is %s, not SUCCESS: order=%s", webhook.Status, webhook.OrderID)
		return failure("Order status is %s, not SUCCESS", webhook.Status)
	}

	// Step 2: build order lines; items with unresolvable variants are dropped.
	lines := s.buildOrderLines(ctx, webhook.CartData.Items, channel)
	if len(lines) == 0 {
		return failure("No valid order lines could be created")
	}

	// Step 3: draft order creation.
	draftID, err := s.createDraftOrder(ctx, webhook, lines, channel)
	if err != nil {
		log.Errorf("[OrderSync] draft order creation failed: order=%s err=%v", webhook.OrderID, err)
		return failure("%v", err)
	}

	// Step 4: shipping method attachment; absence must not block the order.
	s.attachShippingMethod(ctx, draftID, channel)

	// Step 5: completion. On failure the draft stays orphaned in Saleor.
	orderNumber, err := s.backend.DraftOrderComplete(ctx, draftID)
	if err != nil {
		log.Errorf("[OrderSync] draft order completion failed: order=%s draft=%s err=%v", webhook.OrderID, draftID, err)
		return failure("%v", err)
	}

	// Step 6: mark prepaid orders paid with ShipRocket's id as reference.
	if webhook.PaymentType == shiprocket.PaymentPrepaid {
		if err := s.backend.OrderMarkAsPaid(ctx, draftID, webhook.OrderID); err != nil {
			log.Errorf("[OrderSync] mark as paid failed: order=%s err=%v", webhook.OrderID, err)
		} else {
			log.Infof("[OrderSync] marked order as paid: order=%s reference=%s", draftID, webhook.OrderID)
		}
	}

	// Step 7: annotate with the provider's order id.
	note := fmt.Sprintf("ShipRocket Order ID: %s\nPayment Type: %s", webhook.OrderID, webhook.PaymentType)
	if err := s.backend.OrderNoteAdd(ctx, draftID, note); err != nil {
		log.Errorf("[OrderSync] order note failed: order=%s err=%v", draftID, err)
	}

	log.Infof("[OrderSync] created order from webhook: saleorOrder=%s number=%s shiprocketOrder=%s",
		draftID, orderNumber, webhook.OrderID)

	return Result{Success: true, OrderID: draftID, OrderNumber: orderNumber}
}

// buildOrderLines resolves every cart item against Saleor. Unresolvable
// variants are dropped with a warning; insufficient stock is logged but the
// line still ships (oversell is accepted, not blocked).
func (s *Service) buildOrderLines(ctx context.Context, items []shiprocket.CartItem, channel string) []saleor.OrderLineInput {
	var lines []saleor.OrderLineInput

	for _, item := range items {
		variant, err := s.backend.VariantDetails(ctx, item.VariantID, channel)
		if err != nil {
			log.Errorf("[OrderSync] variant lookup failed: variant=%s err=%v", item.VariantID, err)
			continue
		}
		if variant == nil {
			log.Warnf("[OrderSync] variant not found or unavailable: variant=%s", item.VariantID)
			continue
		}

		if variant.QuantityAvailable != nil && *variant.QuantityAvailable < item.Quantity {
			log.Warnf("[OrderSync] insufficient stock: variant=%s requested=%d available=%d",
				item.VariantID, item.Quantity, *variant.QuantityAvailable)
		}

		lines = append(lines, saleor.OrderLineInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	return lines
}

func (s *Service) createDraftOrder(ctx context.Context, webhook shiprocket.OrderWebhook, lines []saleor.OrderLineInput, channel string) (string, error) {
	shippingAddress := buildAddress(webhook.ShippingAddress)
	billing := webhook.BillingAddress
	if billing == nil {
		billing = webhook.ShippingAddress
	}
	billingAddress := buildAddress(billing)

	input := saleor.DraftOrderInput{
		ChannelID:       channel,
		UserEmail:       webhook.Email,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		Lines:           lines,
	}

	return s.backend.DraftOrderCreate(ctx, input)
}

func (s *Service) attachShippingMethod(ctx context.Context, draftID, channel string) {
	methods, err := s.backend.ShippingMethods(ctx, channel)
	if err != nil {
		log.Errorf("[OrderSync] shipping method lookup failed: %v", err)
		return
	}
	if len(methods) == 0 {
		log.Warn("[OrderSync] no shipping methods available")
		return
	}

	if err := s.backend.DraftOrderShippingMethodUpdate(ctx, draftID, methods[0].ID); err != nil {
		log.Errorf("[OrderSync] shipping method attach failed: draft=%s err=%v", draftID, err)
		return
	}
	log.Infof("[OrderSync] attached shipping method: draft=%s method=%s", draftID, methods[0].ID)
}

// buildAddress converts a webhook address to Saleor's input shape. ShipRocket
// carries the recipient's full name in the address city field, so first/last
// name are split out of it rather than read from a name field; do not "fix"
// this upstream quirk here.
func buildAddress(addr *shiprocket.Address) *saleor.AddressInput {
	if addr == nil {
		return &saleor.AddressInput{
			FirstName:      "Guest",
			LastName:       "Customer",
			StreetAddress1: "Address not provided",
			City:           "Unknown",
			PostalCode:     "000000",
			Country:        "IN",
		}
	}

	firstName := "Guest"
	lastName := "Customer"
	if parts := strings.Fields(addr.City); len(parts) > 0 {
		firstName = parts[0]
		if rest := strings.Join(parts[1:], " "); rest != "" {
			lastName = rest
		}
	}

	street1 := addr.AddressLine1
	if street1 == "" {
		street1 = "Not provided"
	}
	city := addr.City
	if city == "" {
		city = "Unknown"
	}
	postalCode := addr.Pincode
	if postalCode == "" {
		postalCode = "000000"
	}
	country := addr.Country
	if country == "" {
		country = "IN"
	}

	return &saleor.AddressInput{
		FirstName:      firstName,
		LastName:       lastName,
		StreetAddress1: street1,
		StreetAddress2: addr.AddressLine2,
		City:           city,
		CountryArea:    addr.State,
		PostalCode:     postalCode,
		Country:        country,
	}
}
