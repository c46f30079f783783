package shiprocket

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

var validate = validator.New()

// CartValidation is the outcome of validating a cart before any network call.
type CartValidation struct {
	Valid bool
	Error string
}

// ValidateCartData checks the cart shape the way ShipRocket requires:
// non-empty item list, every item with a variant id and a quantity of at
// least one. It performs no I/O.
func ValidateCartData(cart *CheckoutCart) CartValidation {
	if cart == nil || cart.Items == nil {
		return CartValidation{Valid: false, Error: "Invalid cart data: items array is required"}
	}
	if len(cart.Items) == 0 {
		return CartValidation{Valid: false, Error: "Cart is empty"}
	}
	if err := validate.Struct(cart); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Field()
			if field == "VariantID" {
				return CartValidation{Valid: false, Error: "Invalid variant_id in cart item"}
			}
			return CartValidation{Valid: false, Error: "Invalid quantity in cart item"}
		}
		return CartValidation{Valid: false, Error: "Invalid cart data"}
	}
	return CartValidation{Valid: true}
}

// TokenClient is the slice of the ShipRocket client the checkout service
// needs; *Client satisfies it.
type TokenClient interface {
	GenerateAccessToken(ctx context.Context, items []CheckoutCartItem, redirectURL string) (*accessTokenResponse, error)
	GetOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error)
}

// CheckoutService validates carts and obtains checkout authorization tokens.
// Its methods report failures in-band; nothing escapes past this boundary.
type CheckoutService struct {
	client        TokenClient
	storefrontURL string
}

func NewCheckoutService(client TokenClient) *CheckoutService {
	return &CheckoutService{
		client:        client,
		storefrontURL: strings.TrimSpace(env.GetEnv("STOREFRONT_URL", "")),
	}
}

// GenerateToken validates the cart, then requests a checkout token from
// ShipRocket. Validation failures short-circuit with zero network I/O.
func (s *CheckoutService) GenerateToken(ctx context.Context, req CheckoutRequest) CheckoutAuthorization {
	var cart *CheckoutCart
	if req.CartData != nil {
		cart = req.CartData
	}
	validation := ValidateCartData(cart)
	if !validation.Valid {
		log.Warnf("[Checkout] cart validation failed: %s", validation.Error)
		return CheckoutAuthorization{Success: false, Error: validation.Error}
	}

	redirectURL := req.RedirectURL
	if redirectURL == "" {
		redirectURL = s.storefrontURL
	}

	log.Infof("[Checkout] generating token: items=%d redirect=%s", len(cart.Items), redirectURL)

	resp, err := s.client.GenerateAccessToken(ctx, cart.Items, redirectURL)
	if err != nil {
		log.Errorf("[Checkout] token generation failed: %v", err)
		return CheckoutAuthorization{Success: false, Error: err.Error()}
	}
	if resp.Result.Token == "" {
		return CheckoutAuthorization{Success: false, Error: "ShipRocket did not return a valid token"}
	}

	return CheckoutAuthorization{
		Success:     true,
		Token:       resp.Result.Token,
		OrderID:     resp.Result.OrderID,
		CheckoutURL: resp.Result.CheckoutURL,
	}
}

// FetchOrderDetails looks an order up on ShipRocket after checkout.
func (s *CheckoutService) FetchOrderDetails(ctx context.Context, orderID string) (*OrderDetails, error) {
	log.Infof("[Checkout] fetching order details: order=%s", orderID)
	return s.client.GetOrderDetails(ctx, orderID)
}
