package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// CheckoutController issues checkout tokens to the storefront and proxies
// order lookups to ShipRocket.
type CheckoutController struct {
	service *shiprocket.CheckoutService
}

func NewCheckoutController(service *shiprocket.CheckoutService) *CheckoutController {
	return &CheckoutController{service: service}
}

// HandleAuthorize serves POST /checkout/authorize.
func (ctl *CheckoutController) HandleAuthorize(c *fiber.Ctx) error {
	var req shiprocket.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.CartData == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing cart_data in request body",
		})
	}

	log.Infof("[Checkout] authorization request: items=%d ip=%s", len(req.CartData.Items), c.IP())

	result := ctl.service.GenerateToken(c.Context(), req)
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(result)
}

// HandleOrderDetails serves GET /checkout/order/:orderId.
func (ctl *CheckoutController) HandleOrderDetails(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order ID is required"})
	}

	details, err := ctl.service.FetchOrderDetails(c.Context(), orderID)
	if err != nil {
		log.Errorf("[Checkout] order details lookup failed: order=%s err=%v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch order details",
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   details,
	})
}
