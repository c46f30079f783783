package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/catalog"
	"github.com/storelink/shiprocket-bridge/internal/pkg/ordersync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// OrderWebhookController receives ShipRocket's order-placed webhook and
// manages the retry queue around the order saga.
type OrderWebhookController struct {
	orders *ordersync.Service
	queue  *ordersync.RetryQueue
	signer *shiprocket.Signer
}

func NewOrderWebhookController(orders *ordersync.Service, queue *ordersync.RetryQueue, signer *shiprocket.Signer) *OrderWebhookController {
	return &OrderWebhookController{orders: orders, queue: queue, signer: signer}
}

// HandleOrderPlaced serves POST /webhooks/order-placed. Processing failures
// still answer 200 so ShipRocket does not retry-storm; the failed payload
// goes on the retry queue instead.
func (ctl *OrderWebhookController) HandleOrderPlaced(c *fiber.Ctx) error {
	body := c.Body()

	var webhook shiprocket.OrderWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid webhook payload",
		})
	}

	log.Infof("[OrderWebhook] received order webhook: order=%s status=%s", webhook.OrderID, webhook.Status)

	// The signature is only enforced when ShipRocket sends the header; an
	// unsigned request passes through. Likely a gap in the provider contract
	// rather than intent, kept for compatibility.
	if sig := c.Get("X-Api-HMAC-SHA256"); sig != "" && !ctl.signer.Verify(body, sig) {
		log.Warnf("[OrderWebhook] invalid HMAC signature: order=%s", webhook.OrderID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid signature",
		})
	}

	if webhook.OrderID == "" || webhook.CartData.Items == nil {
		log.Warnf("[OrderWebhook] invalid webhook payload: order=%q", webhook.OrderID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid webhook payload",
		})
	}

	result := ctl.orders.CreateOrderFromWebhook(c.Context(), webhook, catalog.DefaultChannel)
	if !result.Success {
		log.Errorf("[OrderWebhook] order creation failed: order=%s err=%s", webhook.OrderID, result.Error)
		ctl.queue.AddFailure(webhook, result.Error)

		// 200 on purpose: a non-2xx would trigger ShipRocket's own retries
		// on top of ours.
		return c.JSON(fiber.Map{
			"success": false,
			"error":   result.Error,
			"message": "Order creation failed but webhook acknowledged",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"order_id":     result.OrderID,
		"order_number": result.OrderNumber,
		"message":      "Order created successfully",
	})
}

// HandleRetry serves POST /webhooks/retry/:orderId. The payload comes from
// the request body when supplied, otherwise from the queued entry.
func (ctl *OrderWebhookController) HandleRetry(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order ID is required"})
	}

	log.Infof("[OrderWebhook] manual retry requested: order=%s", orderID)

	var webhook shiprocket.OrderWebhook
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &webhook); err != nil || webhook.CartData.Items == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Webhook data is required in request body",
			})
		}
	} else {
		queued, ok := ctl.queue.Get(orderID)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Webhook data is required in request body",
			})
		}
		webhook = queued.Webhook
	}

	result := ctl.orders.CreateOrderFromWebhook(c.Context(), webhook, catalog.DefaultChannel)
	if !result.Success {
		ctl.queue.AddFailure(webhook, result.Error)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   result.Error,
		})
	}

	ctl.queue.Remove(orderID)
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Order created successfully on retry",
		"order_id":     result.OrderID,
		"order_number": result.OrderNumber,
	})
}

// HandleQueueStatus serves GET /webhooks/status.
func (ctl *OrderWebhookController) HandleQueueStatus(c *fiber.Ctx) error {
	status := ctl.queue.Status()
	return c.JSON(fiber.Map{
		"success":   true,
		"queueSize": status.QueueSize,
		"items":     status.Items,
	})
}
