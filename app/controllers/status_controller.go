package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

// StatusController serves the public health endpoint.
type StatusController struct{}

func NewStatusController() *StatusController {
	return &StatusController{}
}

// HandleHealth serves GET /health. The service is unhealthy when required
// ShipRocket configuration is missing.
func (ctl *StatusController) HandleHealth(c *fiber.Ctx) error {
	shiprocketConfigured := env.GetEnv("SHIPROCKET_API_KEY", "") != "" && env.GetEnv("SHIPROCKET_SECRET_KEY", "") != ""
	saleorConfigured := env.GetEnv("SALEOR_API_URL", "") != ""

	if !shiprocketConfigured {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"error":     "Missing required ShipRocket environment variables",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}

	base := env.GetEnv("APP_PUBLIC_URL", "")
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": env.GetEnv("APP_ENV", "prod"),
		"services": fiber.Map{
			"shiprocket": fiber.Map{
				"configured": shiprocketConfigured,
				"baseUrl":    env.GetEnv("SHIPROCKET_API_BASE_URL", ""),
			},
			"saleor": fiber.Map{
				"configured": saleorConfigured,
				"apiUrl":     env.GetEnv("SALEOR_API_URL", ""),
			},
		},
		"endpoints": fiber.Map{
			"catalog":  base + "/api/shiprocket/catalog",
			"checkout": base + "/api/shiprocket/checkout/authorize",
			"webhooks": fiber.Map{
				"orderPlaced":    base + "/api/shiprocket/webhooks/order-placed",
				"productUpdated": base + "/api/shiprocket/webhooks/saleor-product-updated",
			},
		},
	})
}
