package catalog

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// DefaultChannel is the Saleor channel assumed when a request names none.
const DefaultChannel = "default-channel"

// Page size bounds on the pull API.
const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// Source is the slice of the Saleor client the catalog service consumes;
// *saleor.Client satisfies it.
type Source interface {
	Products(ctx context.Context, channel, after string, first int) (saleor.ProductConnection, error)
	Collections(ctx context.Context, channel, after string, first int) (saleor.CollectionConnection, error)
	Categories(ctx context.Context, after string, first int) (saleor.CategoryConnection, error)
	CollectionProducts(ctx context.Context, collectionID, channel, after string, first int) (saleor.ProductConnection, error)
	CategoryProducts(ctx context.Context, categoryID, channel, after string, first int) (saleor.ProductConnection, error)
}

// ProductFilter selects which upstream axis scopes a filtered product fetch.
// Collection filtering is the legacy axis; category filtering is its
// configured successor. Both share the same pagination path.
type ProductFilter interface {
	fetch(ctx context.Context, src Source, channel, after string, first int) (saleor.ProductConnection, error)
	String() string
}

type CollectionFilter struct {
	CollectionID string
}

func (f CollectionFilter) fetch(ctx context.Context, src Source, channel, after string, first int) (saleor.ProductConnection, error) {
	return src.CollectionProducts(ctx, f.CollectionID, channel, after, first)
}

func (f CollectionFilter) String() string { return "collection:" + f.CollectionID }

type CategoryFilter struct {
	CategoryID string
}

func (f CategoryFilter) fetch(ctx context.Context, src Source, channel, after string, first int) (saleor.ProductConnection, error) {
	return src.CategoryProducts(ctx, f.CategoryID, channel, after, first)
}

func (f CategoryFilter) String() string { return "category:" + f.CategoryID }

// Service re-expresses Saleor's cursor pagination as the numbered pages
// ShipRocket pulls. Serving page P re-walks the cursor from the start, so the
// cost is O(P) upstream round-trips per request; the optional page cache
// short-circuits repeat pulls without changing the contract.
type Service struct {
	source Source
	cache  *PageCache
}

func NewService(source Source, cache *PageCache) *Service {
	return &Service{source: source, cache: cache}
}

// paged walks cursor pages of size limit until the upstream is exhausted or
// enough rows are accumulated to materialize page, then returns the slice for
// that page plus the upstream total. fetch returns one cursor page.
func paged[T any](page, limit int, fetch func(after string, first int) ([]T, saleor.PageInfo, int, error)) ([]T, int, error) {
	target := page * limit

	var all []T
	after := ""
	hasNext := true
	total := 0

	for hasNext && len(all) < target {
		nodes, info, totalCount, err := fetch(after, limit)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, nodes...)
		total = totalCount
		hasNext = info.HasNextPage
		after = info.EndCursor
	}

	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// FetchProducts serves one numbered page of the product catalog.
func (s *Service) FetchProducts(ctx context.Context, page, limit int, channel string) (shiprocket.ProductsResponse, error) {
	cacheKey := fmt.Sprintf("products:%s:%d:%d", channel, page, limit)
	var cached shiprocket.ProductsResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	nodes, total, err := paged(page, limit, func(after string, first int) ([]saleor.Product, saleor.PageInfo, int, error) {
		conn, err := s.source.Products(ctx, channel, after, first)
		return conn.Nodes, conn.PageInfo, conn.TotalCount, err
	})
	if err != nil {
		return shiprocket.ProductsResponse{}, fmt.Errorf("fetching products: %w", err)
	}

	log.Infof("[Catalog] fetched %d products for page %d", len(nodes), page)
	resp := shiprocket.BuildProductsResponse(nodes, page, limit, total)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// FetchCollections serves one numbered page of collections.
func (s *Service) FetchCollections(ctx context.Context, page, limit int, channel string) (shiprocket.CollectionsResponse, error) {
	cacheKey := fmt.Sprintf("collections:%s:%d:%d", channel, page, limit)
	var cached shiprocket.CollectionsResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	nodes, total, err := paged(page, limit, func(after string, first int) ([]saleor.Collection, saleor.PageInfo, int, error) {
		conn, err := s.source.Collections(ctx, channel, after, first)
		return conn.Nodes, conn.PageInfo, conn.TotalCount, err
	})
	if err != nil {
		return shiprocket.CollectionsResponse{}, fmt.Errorf("fetching collections: %w", err)
	}

	log.Infof("[Catalog] fetched %d collections for page %d", len(nodes), page)
	resp := shiprocket.BuildCollectionsResponse(nodes, page, limit, total)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// FetchCategories serves categories in the collection envelope.
func (s *Service) FetchCategories(ctx context.Context, page, limit int) (shiprocket.CollectionsResponse, error) {
	cacheKey := fmt.Sprintf("categories:%d:%d", page, limit)
	var cached shiprocket.CollectionsResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	nodes, total, err := paged(page, limit, func(after string, first int) ([]saleor.Category, saleor.PageInfo, int, error) {
		conn, err := s.source.Categories(ctx, after, first)
		return conn.Nodes, conn.PageInfo, conn.TotalCount, err
	})
	if err != nil {
		return shiprocket.CollectionsResponse{}, fmt.Errorf("fetching categories: %w", err)
	}

	log.Infof("[Catalog] fetched %d categories for page %d", len(nodes), page)
	resp := shiprocket.BuildCategoriesResponse(nodes, page, limit, total)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// FetchFilteredProducts serves one numbered page of products scoped by the
// given filter axis.
func (s *Service) FetchFilteredProducts(ctx context.Context, filter ProductFilter, page, limit int, channel string) (shiprocket.ProductsResponse, error) {
	cacheKey := fmt.Sprintf("products:%s:%s:%d:%d", filter, channel, page, limit)
	var cached shiprocket.ProductsResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	nodes, total, err := paged(page, limit, func(after string, first int) ([]saleor.Product, saleor.PageInfo, int, error) {
		conn, err := filter.fetch(ctx, s.source, channel, after, first)
		return conn.Nodes, conn.PageInfo, conn.TotalCount, err
	})
	if err != nil {
		return shiprocket.ProductsResponse{}, fmt.Errorf("fetching products for %s: %w", filter, err)
	}

	log.Infof("[Catalog] fetched %d products for %s page %d", len(nodes), filter, page)
	resp := shiprocket.BuildProductsResponse(nodes, page, limit, total)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// ClampPageSize applies the pull API's defaults and cap.
func ClampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
