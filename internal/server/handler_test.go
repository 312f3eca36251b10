package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipintegrity/flipscan/internal/cache"
	"github.com/flipintegrity/flipscan/internal/extract"
	urlutil "github.com/flipintegrity/flipscan/internal/utils/url"
	"github.com/flipintegrity/flipscan/pkg/models"
)

type stubScanner struct {
	product *models.Product
	err     error
	calls   int
}

func (s *stubScanner) Audit(ctx context.Context, opts models.ScanOptions) (*models.Product, error) {
	s.calls++
	return s.product, s.err
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scrape", h.Scrape)
	r.GET("/health", h.Health)
	return r
}

func doScrape(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestScrapeMissingURL(t *testing.T) {
	h := NewHandler(&stubScanner{}, nil, 0, nil)
	w := doScrape(newTestRouter(h), "/scrape")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "URL is required", body["error"])
}

func TestScrapeSuccess(t *testing.T) {
	scanner := &stubScanner{product: &models.Product{Name: "Acme Phone X", Price: 45990}}
	h := NewHandler(scanner, nil, 0, nil)
	w := doScrape(newTestRouter(h), "/scrape?url=https://www.flipkart.com/x/p/itm1")

	require.Equal(t, http.StatusOK, w.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "Acme Phone X", product.Name)
	assert.Equal(t, 45990, product.Price)
	assert.Equal(t, 1, scanner.calls)
}

func TestScrapeValidationError(t *testing.T) {
	scanner := &stubScanner{err: &urlutil.ValidationError{Reason: "invalid URL scheme: must be http or https, got ftp"}}
	h := NewHandler(scanner, nil, 0, nil)
	w := doScrape(newTestRouter(h), "/scrape?url=ftp://example.com")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid URL scheme")
}

func TestScrapeNoUsableData(t *testing.T) {
	scanner := &stubScanner{err: &extract.NoUsableDataError{URL: "https://www.flipkart.com/x/p/itm1", Preview: "Access Denied"}}
	h := NewHandler(scanner, nil, 0, nil)
	w := doScrape(newTestRouter(h), "/scrape?url=https://www.flipkart.com/x/p/itm1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEqual(t, "Failed to scrape product data", body["error"])
	assert.NotEmpty(t, body["error"])
}

func TestScrapeUnexpectedError(t *testing.T) {
	scanner := &stubScanner{err: errors.New("browser exploded")}
	h := NewHandler(scanner, nil, 0, nil)
	w := doScrape(newTestRouter(h), "/scrape?url=https://www.flipkart.com/x/p/itm1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to scrape product data", body["error"])
}

func TestScrapeCacheHit(t *testing.T) {
	mc := cache.NewMemoryCache(10)
	defer mc.Close()

	scanner := &stubScanner{product: &models.Product{Name: "Acme Phone X", Price: 45990}}
	h := NewHandler(scanner, mc, time.Minute, nil)
	r := newTestRouter(h)

	target := "/scrape?url=https://www.flipkart.com/x/p/itm1"
	require.Equal(t, http.StatusOK, doScrape(r, target).Code)
	require.Equal(t, http.StatusOK, doScrape(r, target).Code)

	assert.Equal(t, 1, scanner.calls, "second request should be served from cache")
}

func TestScrapeCacheKeyedBySession(t *testing.T) {
	mc := cache.NewMemoryCache(10)
	defer mc.Close()

	scanner := &stubScanner{product: &models.Product{Name: "Acme Phone X", Price: 45990}}
	h := NewHandler(scanner, mc, time.Minute, nil)
	r := newTestRouter(h)

	doScrape(r, "/scrape?url=https://www.flipkart.com/x/p/itm1")
	doScrape(r, "/scrape?url=https://www.flipkart.com/x/p/itm1&session=personal")

	assert.Equal(t, 2, scanner.calls, "different sessions must not share cache entries")
}

func TestHealth(t *testing.T) {
	mc := cache.NewMemoryCache(10)
	defer mc.Close()

	h := NewHandler(&stubScanner{}, mc, time.Minute, func() time.Duration { return 90 * time.Second })
	w := doScrape(newTestRouter(h), "/health")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "flipscan", body["service"])
	assert.EqualValues(t, 90, body["uptime_seconds"])
	assert.Contains(t, body, "cache")
}
