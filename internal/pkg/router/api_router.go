package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/storelink/shiprocket-bridge/app/controllers"
	"github.com/storelink/shiprocket-bridge/internal/pkg/catalog"
	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
	"github.com/storelink/shiprocket-bridge/internal/pkg/middleware"
	"github.com/storelink/shiprocket-bridge/internal/pkg/ordersync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/pushsync"
	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	saleorClient := saleor.NewClientFromEnv()

	shiprocketClient, err := shiprocket.NewClientFromEnv()
	if err != nil {
		log.Fatalf("[Router] ShipRocket client setup failed: %v", err)
	}

	verifier, err := saleor.NewWebhookVerifier(env.GetEnv("SECRET_KEY", ""))
	if err != nil {
		log.Fatalf("[Router] Webhook verifier setup failed: %v", err)
	}

	catalogService := catalog.NewService(saleorClient, catalog.NewPageCacheFromEnv())
	checkoutService := shiprocket.NewCheckoutService(shiprocketClient)
	orderService := ordersync.NewService(saleorClient)
	retryQueue := ordersync.NewRetryQueue()
	syncService := pushsync.NewService(shiprocketClient)

	catalogCtl := controllers.NewCatalogController(catalogService)
	checkoutCtl := controllers.NewCheckoutController(checkoutService)
	orderWebhookCtl := controllers.NewOrderWebhookController(orderService, retryQueue, shiprocketClient.Signer)
	saleorWebhookCtl := controllers.NewSaleorWebhookController(syncService, verifier)
	syncCtl := controllers.NewSyncController(syncService, catalogService, saleorClient)
	statusCtl := controllers.NewStatusController()

	api := app.Group("/api")
	api.Get("/health", statusCtl.HandleHealth)

	sr := api.Group("/shiprocket")

	cat := sr.Group("/catalog")
	cat.Get("/products", catalogCtl.HandleProducts)
	cat.Get("/collections", catalogCtl.HandleCollections)
	cat.Get("/collections/:collectionId/products", catalogCtl.HandleCollectionProducts)
	cat.Get("/test", catalogCtl.HandleTest)

	checkout := sr.Group("/checkout", checkoutCORS(), checkoutLimiter())
	checkout.Post("/authorize", checkoutCtl.HandleAuthorize)
	checkout.Get("/order/:orderId", checkoutCtl.HandleOrderDetails)

	adminAuth := middleware.SecretAuth(env.GetEnv("SECRET_KEY", ""))

	wh := sr.Group("/webhooks")
	wh.Post("/order-placed", orderWebhookCtl.HandleOrderPlaced)
	wh.Post("/saleor-product-updated", saleorWebhookCtl.HandleProductUpdated)
	wh.Post("/saleor-product-variant-updated", saleorWebhookCtl.HandleVariantUpdated)
	wh.Post("/saleor-collection-updated", saleorWebhookCtl.HandleCollectionUpdated)
	wh.Post("/saleor-category-updated", saleorWebhookCtl.HandleCategoryUpdated)
	wh.Get("/status", adminAuth, orderWebhookCtl.HandleQueueStatus)
	wh.Post("/retry/:orderId", adminAuth, orderWebhookCtl.HandleRetry)

	sync := sr.Group("/sync", adminAuth)
	sync.Post("/bulk", syncCtl.HandleBulkSync)
	sync.Get("/manual", syncCtl.HandleManualSync)
	sync.Post("/manual", syncCtl.HandleManualSync)
	sync.Get("/status", syncCtl.HandleSyncStatus)
}

// checkoutCORS restricts checkout calls to the configured storefront origins.
func checkoutCORS() fiber.Handler {
	allowed := env.GetEnv("ALLOWED_ORIGINS", "")
	if allowed == "" {
		allowed = env.GetEnv("STOREFRONT_URL", "*")
	}
	return cors.New(cors.Config{
		AllowOrigins: allowed,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	})
}

// checkoutLimiter rate limits token generation. Counters live in Redis when a
// cache host is configured so limits hold across instances.
func checkoutLimiter() fiber.Handler {
	cfg := limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests",
			})
		},
	}

	if host := env.GetEnv("CACHE_HOST", ""); host != "" {
		port := 6379
		if p, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379")); err == nil {
			port = p
		}
		cfg.Storage = redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: 1,
			Reset:    false,
		})
	}

	return limiter.New(cfg)
}
