package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/catalog"
	"github.com/storelink/shiprocket-bridge/internal/pkg/pushsync"
)

// SyncController exposes the admin re-sync surface: bulk push, connection
// verification and statistics.
type SyncController struct {
	sync    *pushsync.Service
	catalog *catalog.Service
	source  pushsync.CatalogSource
}

func NewSyncController(sync *pushsync.Service, catalogSvc *catalog.Service, source pushsync.CatalogSource) *SyncController {
	return &SyncController{sync: sync, catalog: catalogSvc, source: source}
}

// HandleBulkSync serves POST /sync/bulk. Body: {"type": "products" |
// "collections" | "all"}, defaulting to "all".
func (ctl *SyncController) HandleBulkSync(c *fiber.Ctx) error {
	var body struct {
		Type    string `json:"type"`
		Channel string `json:"channel"`
	}
	// An empty body means a full sync on the default channel.
	_ = c.BodyParser(&body)
	if body.Type == "" {
		body.Type = "all"
	}
	if body.Type != "all" && body.Type != "products" && body.Type != "collections" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be products, collections or all"})
	}
	if body.Channel == "" {
		body.Channel = catalog.DefaultChannel
	}

	log.Infof("[Sync] bulk sync requested: type=%s channel=%s", body.Type, body.Channel)

	report, err := ctl.sync.BulkSync(c.Context(), ctl.source, body.Type, body.Channel)
	if err != nil {
		log.Errorf("[Sync] bulk sync failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bulk sync completed",
		"results": report,
	})
}

// HandleManualSync serves GET|POST /sync/manual: fetches the first catalog
// page of products and categories to verify the Saleor connection.
func (ctl *SyncController) HandleManualSync(c *fiber.Ctx) error {
	channel := c.Query("channel", catalog.DefaultChannel)
	log.Infof("[Sync] manual sync triggered: channel=%s", channel)

	products, err := ctl.catalog.FetchProducts(c.Context(), 1, catalog.DefaultPageSize, channel)
	if err != nil {
		log.Errorf("[Sync] manual sync product fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	categories, err := ctl.catalog.FetchCategories(c.Context(), 1, catalog.DefaultPageSize)
	if err != nil {
		log.Errorf("[Sync] manual sync category fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Manual sync completed",
		"channel": channel,
		"counts": fiber.Map{
			"products":   products.Pagination.TotalCount,
			"categories": categories.Pagination.TotalCount,
		},
	})
}

// HandleSyncStatus serves GET /sync/status with live in-process tallies.
func (ctl *SyncController) HandleSyncStatus(c *fiber.Ctx) error {
	stats := ctl.sync.Statistics()
	return c.JSON(fiber.Map{
		"success":    true,
		"status":     "active",
		"statistics": stats,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
