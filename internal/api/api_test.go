// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/catalogus/catalogus/internal/config"
	"github.com/catalogus/catalogus/internal/database"
	"github.com/catalogus/catalogus/internal/models"
	"github.com/catalogus/catalogus/internal/similarity"
)

// fakeCatalog is an in-memory CatalogStore whose product set stays in sync
// with a similarity.MemoryStore, mirroring how database.DB and the SQL
// store share the products table.
type fakeCatalog struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]models.Product
	categories []models.Category
	tags       []models.Tag
	store      *similarity.MemoryStore
	err        error // when set, every method fails with it
}

func newFakeCatalog(store *similarity.MemoryStore) *fakeCatalog {
	return &fakeCatalog{
		nextID:   1,
		products: make(map[int64]models.Product),
		store:    store,
	}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	p := models.Product{
		ID:          f.nextID,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Tags:        []models.Tag{},
	}
	f.nextID++
	f.products[p.ID] = p
	f.store.AddProduct(p.ID)
	return &p, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", database.ErrProductNotFound, id)
	}
	return &p, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter *models.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := []models.Product{}
	for _, p := range f.products {
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", database.ErrProductNotFound, id)
	}
	p.Name = req.Name
	p.Description = req.Description
	p.CategoryID = req.CategoryID
	f.products[id] = p
	return &p, nil
}

func (f *fakeCatalog) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	if _, ok := f.products[id]; !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: id %d", database.ErrProductNotFound, id)
	}
	delete(f.products, id)
	f.mu.Unlock()

	// Purge edges the way the deletion listener does in production.
	return f.store.DeleteProduct(ctx, id)
}

func (f *fakeCatalog) ListCategories(context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeCatalog) ListTags(context.Context) ([]models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

// envelope mirrors models.APIResponse with raw data for test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			Host:            "127.0.0.1",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{Path: "unused"},
		API: config.APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		Recommend: *similarity.DefaultConfig(),
		Logging:   config.LoggingConfig{Level: "info", Format: "json"},
	}
}

// newTestServer builds a full router over in-memory fakes, with the given
// live product IDs pre-created.
func newTestServer(t *testing.T, cfg *config.Config, productNames ...string) (http.Handler, *fakeCatalog, *similarity.Engine) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	store := similarity.NewMemoryStore(cfg.Recommend.StoreOptions())
	catalog := newFakeCatalog(store)
	for _, name := range productNames {
		if _, err := catalog.CreateProduct(context.Background(), &models.CreateProductRequest{Name: name}); err != nil {
			t.Fatalf("create fixture product: %v", err)
		}
	}

	engine, err := similarity.NewEngine(store, store, &cfg.Recommend, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	handler := NewHandler(catalog, engine, nil, cfg, zerolog.Nop())
	return NewRouter(handler, cfg), catalog, engine
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	env := &envelope{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), env); err != nil {
			t.Fatalf("decode response envelope: %v (body: %s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestCreateProductEndpoint(t *testing.T) {
	t.Parallel()
	router, catalog, _ := newTestServer(t, nil)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/products", models.CreateProductRequest{
		Name:        "Field Kettle",
		Description: "steel kettle",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q, want success", env.Status)
	}

	var p models.Product
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.ID != 1 || p.Name != "Field Kettle" {
		t.Errorf("product = %+v, want id 1 name Field Kettle", p)
	}
	if len(catalog.products) != 1 {
		t.Errorf("stored products = %d, want 1", len(catalog.products))
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/products", models.CreateProductRequest{
		Name: "", // required
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestGetProductDetailBundlesRecommendations(t *testing.T) {
	t.Parallel()
	router, _, engine := newTestServer(t, nil, "A", "B", "C", "D", "E")

	// Click on 2 from [3,4]: 2 outranks everyone for product 1.
	if err := engine.RecordFeedback(context.Background(), 1, 2, []int64{3, 4}); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var detail struct {
		ID              int64                       `json:"id"`
		Recommendations []models.RecommendedProduct `json:"recommendations"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.ID != 1 {
		t.Errorf("detail id = %d, want 1", detail.ID)
	}
	// Default k of 3; top candidate is the rewarded product 2, then the
	// untouched 5 at baseline, then 3/4 at -1 (ascending id tie-break).
	if len(detail.Recommendations) != 3 {
		t.Fatalf("len(recommendations) = %d, want 3", len(detail.Recommendations))
	}
	if detail.Recommendations[0].Product.ID != 2 || detail.Recommendations[0].Score != 1 {
		t.Errorf("top recommendation = %+v, want product 2 score 1", detail.Recommendations[0])
	}
	if detail.Recommendations[1].Product.ID != 5 {
		t.Errorf("second recommendation = product %d, want 5", detail.Recommendations[1].Product.ID)
	}
	if detail.Recommendations[2].Product.ID != 3 {
		t.Errorf("third recommendation = product %d, want 3 (tie-break)", detail.Recommendations[2].Product.ID)
	}
}

func TestGetProductRawSkipsRecommendations(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A", "B")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products/1?raw=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if bytes.Contains(env.Data, []byte(`"recommendations"`)) {
		t.Errorf("raw detail contains recommendations: %s", env.Data)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("error = %+v, want PRODUCT_NOT_FOUND", env.Error)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A", "B", "C", "D", "E", "F")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products/1/recommendations?k=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var recs []models.RecommendedProduct
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len(recs) = %d, want 2 (k honored)", len(recs))
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "applied",
			body:       models.FeedbackRequest{ProductID: 1, ClickedProductID: 2, OtherProductIDs: []int64{3}},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "self pair",
			body:       models.FeedbackRequest{ProductID: 1, ClickedProductID: 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PAIR",
		},
		{
			name:       "clicked among others",
			body:       models.FeedbackRequest{ProductID: 1, ClickedProductID: 2, OtherProductIDs: []int64{2}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FEEDBACK",
		},
		{
			name:       "unknown product",
			body:       models.FeedbackRequest{ProductID: 1, ClickedProductID: 99},
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "missing fields",
			body:       map[string]int{"product_id": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router, _, _ := newTestServer(t, nil, "A", "B", "C")

			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/feedback", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %q", env.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestFeedbackMovesRankings(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A", "B", "C", "D")

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/feedback", models.FeedbackRequest{
		ProductID: 1, ClickedProductID: 3, OtherProductIDs: []int64{2, 4},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("feedback status = %d, want 204", rec.Code)
	}

	_, env := doRequest(t, router, http.MethodGet, "/api/v1/products/1/recommendations", nil)
	var recs []models.RecommendedProduct
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	if len(recs) == 0 || recs[0].Product.ID != 3 {
		t.Errorf("top recommendation = %+v, want product 3 after click", recs)
	}
}

func TestDeleteProductEndpoint(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A", "B", "C")

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/v1/products/2", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	// The deleted product never reappears in recommendations.
	_, env := doRequest(t, router, http.MethodGet, "/api/v1/products/1/recommendations", nil)
	var recs []models.RecommendedProduct
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	for _, r := range recs {
		if r.Product.ID == 2 {
			t.Error("deleted product returned in recommendations")
		}
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/v1/products/2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestTaxonomyEndpoints(t *testing.T) {
	t.Parallel()
	router, catalog, _ := newTestServer(t, nil)
	catalog.categories = []models.Category{{ID: 1, Name: "outdoor"}}
	catalog.tags = []models.Tag{{ID: 1, Name: "steel"}, {ID: 2, Name: "camping"}}

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d, want 200", rec.Code)
	}
	var categories []models.Category
	if err := json.Unmarshal(env.Data, &categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "outdoor" {
		t.Errorf("categories = %v, want [outdoor]", categories)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/tags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tags status = %d, want 200", rec.Code)
	}
	var tags []models.Tag
	if err := json.Unmarshal(env.Data, &tags); err != nil {
		t.Fatalf("decode tags: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("len(tags) = %d, want 2", len(tags))
	}
}

func TestAdminSeedEndpoint(t *testing.T) {
	t.Parallel()
	router, _, engine := newTestServer(t, nil, "A", "B", "C")

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/admin/similarity/seed", models.SeedRequest{
		Score: func() *float64 { s := 0.25; return &s }(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var result models.SeedResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode seed result: %v", err)
	}
	if result.Products != 3 || result.Score != 0.25 {
		t.Errorf("result = %+v, want 3 products at 0.25", result)
	}

	recs, err := engine.Recommend(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, r := range recs {
		if r.Score != 0.25 {
			t.Errorf("seeded score = %v, want 0.25", r.Score)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec, env := doRequest(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if env.Status != "success" {
			t.Errorf("%s envelope status = %q, want success", path, env.Status)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestListProductsEndpoint(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestServer(t, nil, "A", "B", "C")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var products []models.Product
	if err := json.Unmarshal(env.Data, &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("len(products) = %d, want 3", len(products))
	}

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/products?tags=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad tags status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestDatabaseErrorMapsTo500(t *testing.T) {
	t.Parallel()
	router, catalog, _ := newTestServer(t, nil, "A")
	catalog.err = fmt.Errorf("disk on fire")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "DATABASE_ERROR" {
		t.Errorf("error = %+v, want DATABASE_ERROR", env.Error)
	}
	// Internal details never leak to clients.
	if env.Error != nil && env.Error.Message != "internal error" {
		t.Errorf("message = %q, want generic internal error", env.Error.Message)
	}
}
