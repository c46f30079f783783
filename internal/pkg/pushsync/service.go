package pushsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/storelink/shiprocket-bridge/internal/pkg/catalog"
	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

// ItemDelay is the pacing between batch items, kept under ShipRocket's rate
// limit. The limiter is a token bucket with this refill interval.
const ItemDelay = 100 * time.Millisecond

// Pusher is the slice of the ShipRocket client the sync service consumes;
// *shiprocket.Client satisfies it.
type Pusher interface {
	SyncProduct(ctx context.Context, product shiprocket.CatalogProduct) error
	SyncCollection(ctx context.Context, collection shiprocket.CatalogCollection) error
}

// SyncResult is the outcome of one single-entity push.
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult tallies one batch run. A single item's failure never aborts the
// batch; failures are reported as "{id}: {error}" strings.
type BatchResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// Stats are in-memory sync statistics served by the sync status endpoint.
// They reset on restart along with everything else in this process.
type Stats struct {
	ProductsSynced     int        `json:"total_products_synced"`
	CollectionsSynced  int        `json:"total_collections_synced"`
	FailedSyncs        int        `json:"failed_syncs"`
	LastProductSync    *time.Time `json:"last_product_sync,omitempty"`
	LastCollectionSync *time.Time `json:"last_collection_sync,omitempty"`
}

// Service pushes catalog changes to ShipRocket, one entity per call, strictly
// sequentially in batches.
type Service struct {
	pusher  Pusher
	limiter *rate.Limiter

	mu    sync.Mutex
	stats Stats
}

func NewService(pusher Pusher) *Service {
	return &Service{
		pusher:  pusher,
		limiter: rate.NewLimiter(rate.Every(ItemDelay), 1),
	}
}

// SyncProduct maps and pushes one product. Products without variants are
// rejected before any network call.
func (s *Service) SyncProduct(ctx context.Context, product saleor.Product) SyncResult {
	log.Infof("[Sync] syncing product: id=%s name=%s", product.ID, product.Name)

	payload := shiprocket.MapProduct(product)
	if len(payload.Variants) == 0 {
		log.Warnf("[Sync] product has no variants, skipping: id=%s", product.ID)
		s.recordFailure()
		return SyncResult{Success: false, Error: "Product has no variants"}
	}

	if err := s.pusher.SyncProduct(ctx, payload); err != nil {
		log.Errorf("[Sync] product sync failed: id=%s err=%v", product.ID, err)
		s.recordFailure()
		return SyncResult{Success: false, Error: err.Error()}
	}

	s.recordProduct()
	log.Infof("[Sync] synced product: id=%s variants=%d", product.ID, len(payload.Variants))
	return SyncResult{Success: true}
}

// SyncCollection maps and pushes one collection, unconditionally.
func (s *Service) SyncCollection(ctx context.Context, collection saleor.Collection) SyncResult {
	log.Infof("[Sync] syncing collection: id=%s name=%s", collection.ID, collection.Name)

	if err := s.pusher.SyncCollection(ctx, shiprocket.MapCollection(collection)); err != nil {
		log.Errorf("[Sync] collection sync failed: id=%s err=%v", collection.ID, err)
		s.recordFailure()
		return SyncResult{Success: false, Error: err.Error()}
	}

	s.recordCollection()
	return SyncResult{Success: true}
}

// BatchSyncProducts pushes products sequentially, pacing items through the
// token bucket. One failure never aborts the remainder.
func (s *Service) BatchSyncProducts(ctx context.Context, products []saleor.Product) BatchResult {
	log.Infof("[Sync] starting batch product sync: count=%d", len(products))

	var result BatchResult
	for _, product := range products {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", product.ID, err))
			continue
		}
		r := s.SyncProduct(ctx, product)
		if r.Success {
			result.Success++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", product.ID, r.Error))
		}
	}

	log.Infof("[Sync] batch product sync complete: total=%d success=%d failed=%d",
		len(products), result.Success, result.Failed)
	return result
}

// BatchSyncCollections mirrors BatchSyncProducts for collections.
func (s *Service) BatchSyncCollections(ctx context.Context, collections []saleor.Collection) BatchResult {
	log.Infof("[Sync] starting batch collection sync: count=%d", len(collections))

	var result BatchResult
	for _, collection := range collections {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", collection.ID, err))
			continue
		}
		r := s.SyncCollection(ctx, collection)
		if r.Success {
			result.Success++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", collection.ID, r.Error))
		}
	}

	log.Infof("[Sync] batch collection sync complete: total=%d success=%d failed=%d",
		len(collections), result.Success, result.Failed)
	return result
}

// BulkReport is the outcome of a manual full re-sync run.
type BulkReport struct {
	SyncID      string       `json:"sync_id"`
	Products    *BatchResult `json:"products,omitempty"`
	Collections *BatchResult `json:"collections,omitempty"`
}

// CatalogSource is the slice of the Saleor client bulk syncs read from.
type CatalogSource interface {
	Products(ctx context.Context, channel, after string, first int) (saleor.ProductConnection, error)
	Collections(ctx context.Context, channel, after string, first int) (saleor.CollectionConnection, error)
}

// BulkSync walks the whole catalog cursor by cursor and pushes every entity.
// syncType is "products", "collections" or "all".
func (s *Service) BulkSync(ctx context.Context, source CatalogSource, syncType, channel string) (BulkReport, error) {
	report := BulkReport{SyncID: uuid.NewString()}
	log.Infof("[Sync] bulk sync started: id=%s type=%s channel=%s", report.SyncID, syncType, channel)

	if syncType == "products" || syncType == "all" {
		products, err := collectAll(ctx, func(after string, first int) ([]saleor.Product, saleor.PageInfo, error) {
			conn, err := source.Products(ctx, channel, after, first)
			return conn.Nodes, conn.PageInfo, err
		})
		if err != nil {
			return report, fmt.Errorf("fetching products for bulk sync: %w", err)
		}
		r := s.BatchSyncProducts(ctx, products)
		report.Products = &r
	}

	if syncType == "collections" || syncType == "all" {
		collections, err := collectAll(ctx, func(after string, first int) ([]saleor.Collection, saleor.PageInfo, error) {
			conn, err := source.Collections(ctx, channel, after, first)
			return conn.Nodes, conn.PageInfo, err
		})
		if err != nil {
			return report, fmt.Errorf("fetching collections for bulk sync: %w", err)
		}
		r := s.BatchSyncCollections(ctx, collections)
		report.Collections = &r
	}

	log.Infof("[Sync] bulk sync completed: id=%s", report.SyncID)
	return report, nil
}

// collectAll exhausts a cursor source.
func collectAll[T any](ctx context.Context, fetch func(after string, first int) ([]T, saleor.PageInfo, error)) ([]T, error) {
	var all []T
	after := ""
	for {
		nodes, info, err := fetch(after, catalog.MaxPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, nodes...)
		if !info.HasNextPage {
			return all, nil
		}
		after = info.EndCursor
	}
}

func (s *Service) recordProduct() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.ProductsSynced++
	now := time.Now()
	s.stats.LastProductSync = &now
}

func (s *Service) recordCollection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.CollectionsSynced++
	now := time.Now()
	s.stats.LastCollectionSync = &now
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.FailedSyncs++
}

// Statistics snapshots the current tallies.
func (s *Service) Statistics() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
