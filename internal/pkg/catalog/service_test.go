package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/shiprocket-bridge/internal/pkg/saleor"
)

// fakeSource serves a fixed product list page by cursor, the way Saleor's
// relay connections behave. Cursors are stringified offsets.
type fakeSource struct {
	products    []saleor.Product
	collections []saleor.Collection
	categories  []saleor.Category

	byCollection map[string][]saleor.Product
	byCategory   map[string][]saleor.Product

	calls int
	err   error
}

func slicePage[T any](items []T, after string, first int) ([]T, saleor.PageInfo, int, error) {
	offset := 0
	if after != "" {
		o, err := strconv.Atoi(after)
		if err != nil {
			return nil, saleor.PageInfo{}, 0, err
		}
		offset = o
	}
	end := offset + first
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], saleor.PageInfo{
		EndCursor:   strconv.Itoa(end),
		HasNextPage: end < len(items),
	}, len(items), nil
}

func (f *fakeSource) Products(_ context.Context, _, after string, first int) (saleor.ProductConnection, error) {
	f.calls++
	if f.err != nil {
		return saleor.ProductConnection{}, f.err
	}
	nodes, info, total, err := slicePage(f.products, after, first)
	return saleor.ProductConnection{Nodes: nodes, PageInfo: info, TotalCount: total}, err
}

func (f *fakeSource) Collections(_ context.Context, _, after string, first int) (saleor.CollectionConnection, error) {
	f.calls++
	nodes, info, total, err := slicePage(f.collections, after, first)
	return saleor.CollectionConnection{Nodes: nodes, PageInfo: info, TotalCount: total}, err
}

func (f *fakeSource) Categories(_ context.Context, after string, first int) (saleor.CategoryConnection, error) {
	f.calls++
	nodes, info, total, err := slicePage(f.categories, after, first)
	return saleor.CategoryConnection{Nodes: nodes, PageInfo: info, TotalCount: total}, err
}

func (f *fakeSource) CollectionProducts(_ context.Context, collectionID, _, after string, first int) (saleor.ProductConnection, error) {
	f.calls++
	nodes, info, total, err := slicePage(f.byCollection[collectionID], after, first)
	return saleor.ProductConnection{Nodes: nodes, PageInfo: info, TotalCount: total}, err
}

func (f *fakeSource) CategoryProducts(_ context.Context, categoryID, _, after string, first int) (saleor.ProductConnection, error) {
	f.calls++
	nodes, info, total, err := slicePage(f.byCategory[categoryID], after, first)
	return saleor.ProductConnection{Nodes: nodes, PageInfo: info, TotalCount: total}, err
}

func makeProducts(n int) []saleor.Product {
	products := make([]saleor.Product, n)
	for i := range products {
		products[i] = saleor.Product{
			ID:   fmt.Sprintf("p%d", i+1),
			Name: fmt.Sprintf("Product %d", i+1),
		}
	}
	return products
}

func TestFetchProductsPaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		page      int
		limit     int
		wantCount int
		wantFirst string
		wantPages int
	}{
		{name: "first page full", total: 250, page: 1, limit: 100, wantCount: 100, wantFirst: "p1", wantPages: 3},
		{name: "middle page", total: 250, page: 2, limit: 100, wantCount: 100, wantFirst: "p101", wantPages: 3},
		{name: "partial last page", total: 250, page: 3, limit: 100, wantCount: 50, wantFirst: "p201", wantPages: 3},
		{name: "page past the end", total: 250, page: 4, limit: 100, wantCount: 0, wantPages: 3},
		{name: "empty catalog", total: 0, page: 1, limit: 100, wantCount: 0, wantPages: 0},
		{name: "small limit", total: 7, page: 2, limit: 3, wantCount: 3, wantFirst: "p4", wantPages: 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &fakeSource{products: makeProducts(tt.total)}
			svc := NewService(src, nil)

			resp, err := svc.FetchProducts(context.Background(), tt.page, tt.limit, DefaultChannel)
			require.NoError(t, err)

			assert.Len(t, resp.Products, tt.wantCount)
			if tt.wantFirst != "" {
				require.NotEmpty(t, resp.Products)
				assert.Equal(t, tt.wantFirst, resp.Products[0].ID)
			}
			assert.Equal(t, tt.page, resp.Pagination.CurrentPage)
			assert.Equal(t, tt.wantPages, resp.Pagination.TotalPages)
			assert.Equal(t, tt.total, resp.Pagination.TotalCount)
			assert.Equal(t, tt.limit, resp.Pagination.PerPage)
		})
	}
}

func TestFetchProductsWalksOnlyNeededPages(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(500)}
	svc := NewService(src, nil)

	_, err := svc.FetchProducts(context.Background(), 2, 100, DefaultChannel)
	require.NoError(t, err)

	// Page 2 needs 200 rows, so exactly two upstream round-trips.
	assert.Equal(t, 2, src.calls)
}

func TestFetchProductsUpstreamError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("saleor unavailable")}
	svc := NewService(src, nil)

	_, err := svc.FetchProducts(context.Background(), 1, 100, DefaultChannel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saleor unavailable")
}

func TestFetchCollectionsAndCategories(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		collections: []saleor.Collection{{ID: "c1", Name: "Summer"}, {ID: "c2", Name: "Winter"}},
		categories:  []saleor.Category{{ID: "k1", Name: "Footwear"}},
	}
	svc := NewService(src, nil)

	cols, err := svc.FetchCollections(context.Background(), 1, 100, DefaultChannel)
	require.NoError(t, err)
	require.Len(t, cols.Collections, 2)
	assert.Equal(t, "Summer", cols.Collections[0].Title)

	cats, err := svc.FetchCategories(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, cats.Collections, 1)
	assert.Equal(t, "Footwear", cats.Collections[0].Title)
}

func TestFetchFilteredProducts(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		byCollection: map[string][]saleor.Product{
			"col-1": {{ID: "p1"}, {ID: "p2"}},
		},
		byCategory: map[string][]saleor.Product{
			"cat-1": {{ID: "p3"}},
		},
	}
	svc := NewService(src, nil)

	byCol, err := svc.FetchFilteredProducts(context.Background(), CollectionFilter{CollectionID: "col-1"}, 1, 100, DefaultChannel)
	require.NoError(t, err)
	require.Len(t, byCol.Products, 2)
	assert.Equal(t, "p1", byCol.Products[0].ID)

	byCat, err := svc.FetchFilteredProducts(context.Background(), CategoryFilter{CategoryID: "cat-1"}, 1, 100, DefaultChannel)
	require.NoError(t, err)
	require.Len(t, byCat.Products, 1)
	assert.Equal(t, "p3", byCat.Products[0].ID)

	empty, err := svc.FetchFilteredProducts(context.Background(), CollectionFilter{CollectionID: "missing"}, 1, 100, DefaultChannel)
	require.NoError(t, err)
	assert.Len(t, empty.Products, 0)
}

func TestClampPageSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-5))
	assert.Equal(t, MaxPageSize, ClampPageSize(500))
	assert.Equal(t, 25, ClampPageSize(25))
}
