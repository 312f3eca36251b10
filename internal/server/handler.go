package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/flipintegrity/flipscan/internal/cache"
	"github.com/flipintegrity/flipscan/internal/extract"
	"github.com/flipintegrity/flipscan/internal/reqctx"
	urlutil "github.com/flipintegrity/flipscan/internal/utils/url"
	"github.com/flipintegrity/flipscan/pkg/models"
)

// Scanner runs one product-page scan. Implemented by extract.Auditor;
// the indirection keeps handlers testable without a browser.
type Scanner interface {
	Audit(ctx context.Context, opts models.ScanOptions) (*models.Product, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	scanner  Scanner
	cache    *cache.MemoryCache
	cacheTTL time.Duration
	uptime   func() time.Duration
}

// NewHandler creates an HTTP handler. cache may be nil to disable
// result caching.
func NewHandler(scanner Scanner, c *cache.MemoryCache, cacheTTL time.Duration, uptime func() time.Duration) *Handler {
	return &Handler{
		scanner:  scanner,
		cache:    c,
		cacheTTL: cacheTTL,
		uptime:   uptime,
	}
}

// Scrape handles GET /scrape?url=...: validate input, serve from cache
// when fresh, otherwise run a full browser scan.
func (h *Handler) Scrape(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	sessionName := c.Query("session")
	key := cache.Key(url, sessionName)

	if h.cache != nil {
		if product, ok := h.cache.Get(key); ok {
			c.JSON(http.StatusOK, product)
			return
		}
	}

	ctx := reqctx.WithRequestContext(c.Request.Context())
	rc := reqctx.GetRequestContext(ctx)

	product, err := h.scanner.Audit(ctx, models.ScanOptions{
		URL:         url,
		SessionName: sessionName,
	})
	if err != nil {
		h.writeScanError(c, rc.RequestID, url, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(key, product, h.cacheTTL)
	}

	c.JSON(http.StatusOK, product)
}

// writeScanError maps scan failures onto the wire. Bad input is the
// caller's fault; everything else, including a page that yielded no
// usable data, is a server-side failure.
func (h *Handler) writeScanError(c *gin.Context, requestID, url string, err error) {
	var noData *extract.NoUsableDataError
	var badInput *urlutil.ValidationError
	switch {
	case errors.As(err, &badInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": badInput.Error()})
	case errors.As(err, &noData):
		c.JSON(http.StatusInternalServerError, gin.H{"error": noData.Error()})
	default:
		log.Error().
			Str("request_id", requestID).
			Str("url", url).
			Err(err).
			Msg("Scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scrape product data"})
	}
}

// Health returns service liveness plus cache statistics.
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "flipscan",
	}
	if h.uptime != nil {
		resp["uptime_seconds"] = int64(h.uptime().Seconds())
	}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
