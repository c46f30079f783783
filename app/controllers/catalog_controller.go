package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/catalog"
	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

// Filter modes for the collection-scoped product route. Collection filtering
// is the legacy axis slated for retirement once ShipRocket switches to
// category ids.
const (
	FilterModeCollection = "collection"
	FilterModeCategory   = "category"
)

// CatalogController serves the paginated pull API ShipRocket consumes.
type CatalogController struct {
	service    *catalog.Service
	filterMode string
}

func NewCatalogController(service *catalog.Service) *CatalogController {
	mode := env.GetEnv("CATALOG_FILTER_MODE", FilterModeCollection)
	if mode != FilterModeCollection && mode != FilterModeCategory {
		log.Warnf("[Catalog] unknown CATALOG_FILTER_MODE %q, using %s", mode, FilterModeCollection)
		mode = FilterModeCollection
	}
	return &CatalogController{service: service, filterMode: mode}
}

func pageParams(c *fiber.Ctx) (page, limit int, channel string) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = catalog.ClampPageSize(c.QueryInt("limit", catalog.DefaultPageSize))
	channel = c.Query("channel", catalog.DefaultChannel)
	return page, limit, channel
}

// HandleProducts serves GET /catalog/products.
func (ctl *CatalogController) HandleProducts(c *fiber.Ctx) error {
	page, limit, channel := pageParams(c)
	log.Infof("[Catalog] products request: page=%d limit=%d channel=%s", page, limit, channel)

	resp, err := ctl.service.FetchProducts(c.Context(), page, limit, channel)
	if err != nil {
		log.Errorf("[Catalog] products request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch products",
			"message": err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleCollections serves GET /catalog/collections. Depending on the filter
// mode it is backed by Saleor collections or by categories presented in the
// same schema.
func (ctl *CatalogController) HandleCollections(c *fiber.Ctx) error {
	page, limit, channel := pageParams(c)
	log.Infof("[Catalog] collections request: page=%d limit=%d channel=%s mode=%s", page, limit, channel, ctl.filterMode)

	var err error
	var resp any
	if ctl.filterMode == FilterModeCategory {
		resp, err = ctl.service.FetchCategories(c.Context(), page, limit)
	} else {
		resp, err = ctl.service.FetchCollections(c.Context(), page, limit, channel)
	}
	if err != nil {
		log.Errorf("[Catalog] collections request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch collections",
			"message": err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleCollectionProducts serves GET /catalog/collections/:collectionId/products.
// The path id is interpreted per the configured filter axis.
func (ctl *CatalogController) HandleCollectionProducts(c *fiber.Ctx) error {
	id := c.Params("collectionId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Collection ID is required"})
	}
	page, limit, channel := pageParams(c)

	var filter catalog.ProductFilter
	if ctl.filterMode == FilterModeCategory {
		filter = catalog.CategoryFilter{CategoryID: id}
	} else {
		filter = catalog.CollectionFilter{CollectionID: id}
	}

	resp, err := ctl.service.FetchFilteredProducts(c.Context(), filter, page, limit, channel)
	if err != nil {
		log.Errorf("[Catalog] filtered products request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch products",
			"message": err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleTest serves GET /catalog/test, a reachability probe for ShipRocket's
// onboarding checks.
func (ctl *CatalogController) HandleTest(c *fiber.Ctx) error {
	base := env.GetEnv("APP_PUBLIC_URL", "")
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "ShipRocket Catalog API is running",
		"endpoints": fiber.Map{
			"products":             base + "/api/shiprocket/catalog/products",
			"collections":          base + "/api/shiprocket/catalog/collections",
			"productsByCollection": base + "/api/shiprocket/catalog/collections/{collectionId}/products",
		},
	})
}
