package shiprocket

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
)

// Default literals for fields Saleor does not always provide.
const (
	defaultVendor      = "Default Vendor"
	defaultProductType = "Uncategorized"
	defaultWeightUnit  = "kg"
)

// timeNow is swapped in tests; collections have no upstream update timestamp
// so one is synthesized at map time.
var timeNow = time.Now

func nowISO() string {
	return timeNow().UTC().Format(time.RFC3339)
}

func imageOrNil(url string) *VariantImage {
	if url == "" {
		return nil
	}
	return &VariantImage{Src: url}
}

// priceString coerces a gross amount to a fixed-point decimal string. Raw
// floats never leak into the catalog payload.
func priceString(pricing *saleor.VariantPricing) string {
	if pricing == nil || pricing.Price == nil {
		return "0"
	}
	return decimal.NewFromFloat(pricing.Price.Gross.Amount).String()
}

// MapProduct translates a Saleor product into ShipRocket's catalog schema.
// The mapping is total: missing optional fields degrade to documented
// defaults and never produce an error.
func MapProduct(p saleor.Product) CatalogProduct {
	thumbnailURL := ""
	if p.Thumbnail != nil {
		thumbnailURL = p.Thumbnail.URL
	}
	if thumbnailURL == "" && len(p.Variants) > 0 && len(p.Variants[0].Media) > 0 {
		thumbnailURL = p.Variants[0].Media[0].URL
	}

	vendor := defaultVendor
	for _, m := range p.Metadata {
		if m.Key == "vendor" {
			vendor = m.Value
			break
		}
	}

	productType := defaultProductType
	if p.Category != nil && p.Category.Name != "" {
		productType = p.Category.Name
	}

	createdAt := p.Created
	if createdAt == "" {
		createdAt = nowISO()
	}
	updatedAt := p.UpdatedAt
	if updatedAt == "" {
		updatedAt = nowISO()
	}

	variants := make([]CatalogVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, mapVariant(p.ID, updatedAt, thumbnailURL, v))
	}

	return CatalogProduct{
		ID:          p.ID,
		Title:       p.Name,
		BodyHTML:    p.Description,
		Vendor:      vendor,
		ProductType: productType,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		// Saleor has no draft/archived notion that maps onto ShipRocket's.
		Status:   "active",
		Variants: variants,
		Image:    imageOrNil(thumbnailURL),
	}
}

func mapVariant(productID, updatedAt, thumbnailURL string, v saleor.Variant) CatalogVariant {
	title := v.Name
	if title == "" {
		title = "Default"
	}

	quantity := 0
	if v.QuantityAvailable != nil {
		quantity = *v.QuantityAvailable
	}

	weight := 0.0
	weightUnit := defaultWeightUnit
	if v.Weight != nil {
		weight = v.Weight.Value
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			weight = 0
		}
		if v.Weight.Unit != "" {
			weightUnit = strings.ToLower(v.Weight.Unit)
		}
	}

	imageURL := ""
	if len(v.Media) > 0 {
		imageURL = v.Media[0].URL
	}
	if imageURL == "" {
		imageURL = thumbnailURL
	}

	return CatalogVariant{
		ID:                v.ID,
		ProductID:         productID,
		Title:             title,
		Price:             priceString(v.Pricing),
		SKU:               v.SKU,
		CompareAtPrice:    "",
		InventoryQuantity: quantity,
		Weight:            weight,
		WeightUnit:        weightUnit,
		Image:             imageOrNil(imageURL),
		UpdatedAt:         updatedAt,
	}
}

// MapCollection translates a Saleor collection. Saleor collections carry no
// update timestamp, so one is synthesized at map time.
func MapCollection(c saleor.Collection) CatalogCollection {
	imageURL := ""
	if c.BackgroundImage != nil {
		imageURL = c.BackgroundImage.URL
	}
	return CatalogCollection{
		ID:        c.ID,
		Title:     c.Name,
		BodyHTML:  c.Description,
		UpdatedAt: nowISO(),
		Image:     imageOrNil(imageURL),
	}
}

// MapCategory presents a Saleor category in the same collection schema
// ShipRocket pulls. Categories are the successor to collections as the
// filtering axis.
func MapCategory(c saleor.Category) CatalogCollection {
	imageURL := ""
	if c.BackgroundImage != nil {
		imageURL = c.BackgroundImage.URL
	}
	return CatalogCollection{
		ID:        c.ID,
		Title:     c.Name,
		BodyHTML:  c.Description,
		UpdatedAt: nowISO(),
		Image:     imageOrNil(imageURL),
	}
}

func buildPagination(page, perPage, totalCount int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalCount + perPage - 1) / perPage
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		PerPage:     perPage,
	}
}

// BuildProductsResponse assembles the paginated product envelope.
func BuildProductsResponse(products []saleor.Product, page, perPage, totalCount int) ProductsResponse {
	mapped := make([]CatalogProduct, 0, len(products))
	for _, p := range products {
		mapped = append(mapped, MapProduct(p))
	}
	return ProductsResponse{
		Products:   mapped,
		Pagination: buildPagination(page, perPage, totalCount),
	}
}

// BuildCollectionsResponse assembles the paginated collection envelope.
func BuildCollectionsResponse(collections []saleor.Collection, page, perPage, totalCount int) CollectionsResponse {
	mapped := make([]CatalogCollection, 0, len(collections))
	for _, c := range collections {
		mapped = append(mapped, MapCollection(c))
	}
	return CollectionsResponse{
		Collections: mapped,
		Pagination:  buildPagination(page, perPage, totalCount),
	}
}

// BuildCategoriesResponse assembles categories in the collection envelope.
func BuildCategoriesResponse(categories []saleor.Category, page, perPage, totalCount int) CollectionsResponse {
	mapped := make([]CatalogCollection, 0, len(categories))
	for _, c := range categories {
		mapped = append(mapped, MapCategory(c))
	}
	return CollectionsResponse{
		Collections: mapped,
		Pagination:  buildPagination(page, perPage, totalCount),
	}
}
