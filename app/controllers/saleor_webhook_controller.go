package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/pushsync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
)

// SaleorWebhookController receives Saleor's catalog change webhooks and
// pushes the affected entities to ShipRocket. Unlike the order-placed hook,
// the saleor-signature header is required unconditionally here.
type SaleorWebhookController struct {
	sync     *pushsync.Service
	verifier *saleor.WebhookVerifier
}

func NewSaleorWebhookController(sync *pushsync.Service, verifier *saleor.WebhookVerifier) *SaleorWebhookController {
	return &SaleorWebhookController{sync: sync, verifier: verifier}
}

func (ctl *SaleorWebhookController) verifySignature(c *fiber.Ctx) bool {
	return ctl.verifier.Verify(c.Body(), c.Get("Saleor-Signature"))
}

// ackFailure answers 200 with a body-level failure so Saleor does not retry.
func ackFailure(c *fiber.Ctx, errMsg string) error {
	return c.JSON(fiber.Map{
		"success": false,
		"error":   errMsg,
		"message": "Sync failed but webhook acknowledged",
	})
}

// HandleProductUpdated serves POST /webhooks/saleor-product-updated.
func (ctl *SaleorWebhookController) HandleProductUpdated(c *fiber.Ctx) error {
	if !ctl.verifySignature(c) {
		log.Warn("[SaleorWebhook] invalid signature on product-updated")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload struct {
		Product *saleor.Product `json:"product"`
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil || payload.Product == nil || payload.Product.ID == "" {
		log.Warn("[SaleorWebhook] invalid product webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	log.Infof("[SaleorWebhook] product updated: id=%s name=%s", payload.Product.ID, payload.Product.Name)

	result := ctl.sync.SyncProduct(c.Context(), *payload.Product)
	if !result.Success {
		return ackFailure(c, result.Error)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product synced to ShipRocket",
	})
}

// HandleVariantUpdated serves POST /webhooks/saleor-product-variant-updated.
// ShipRocket has no per-variant endpoint, so the whole parent product is
// re-synced.
func (ctl *SaleorWebhookController) HandleVariantUpdated(c *fiber.Ctx) error {
	if !ctl.verifySignature(c) {
		log.Warn("[SaleorWebhook] invalid signature on variant-updated")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload struct {
		ProductVariant *saleor.Variant `json:"productVariant"`
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil ||
		payload.ProductVariant == nil ||
		payload.ProductVariant.Product == nil ||
		payload.ProductVariant.Product.ID == "" {
		log.Warn("[SaleorWebhook] invalid variant webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	variant := payload.ProductVariant
	log.Infof("[SaleorWebhook] variant updated: variant=%s product=%s", variant.ID, variant.Product.ID)

	result := ctl.sync.SyncProduct(c.Context(), *variant.Product)
	if !result.Success {
		return ackFailure(c, result.Error)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product synced to ShipRocket after variant update",
	})
}

// HandleCollectionUpdated serves POST /webhooks/saleor-collection-updated.
func (ctl *SaleorWebhookController) HandleCollectionUpdated(c *fiber.Ctx) error {
	if !ctl.verifySignature(c) {
		log.Warn("[SaleorWebhook] invalid signature on collection-updated")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload struct {
		Collection *saleor.Collection `json:"collection"`
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil || payload.Collection == nil || payload.Collection.ID == "" {
		log.Warn("[SaleorWebhook] invalid collection webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	log.Infof("[SaleorWebhook] collection updated: id=%s", payload.Collection.ID)

	result := ctl.sync.SyncCollection(c.Context(), *payload.Collection)
	if !result.Success {
		return ackFailure(c, result.Error)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Collection synced to ShipRocket",
	})
}

// HandleCategoryUpdated serves POST /webhooks/saleor-category-updated.
// Categories are pull-served from the catalog API, so the update is only
// acknowledged.
func (ctl *SaleorWebhookController) HandleCategoryUpdated(c *fiber.Ctx) error {
	var payload struct {
		Category *saleor.Category `json:"category"`
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil || payload.Category == nil || payload.Category.ID == "" {
		log.Warn("[SaleorWebhook] invalid category webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	log.Infof("[SaleorWebhook] category update acknowledged: id=%s name=%s",
		payload.Category.ID, payload.Category.Name)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category update acknowledged",
	})
}
