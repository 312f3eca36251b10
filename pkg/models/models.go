package models

import "time"

// Product is the assembled result of one product-page scan.
//
// The JSON field names are part of the contract with the FlipIntegrity
// dashboard and the enrichment layer; when extraction succeeded, name
// and price from this record override anything a model generates
// downstream.
type Product struct {
	URL             string          `json:"url,omitempty"`
	Name            string          `json:"name"`
	Price           int             `json:"price"`
	Rating          float64         `json:"rating"`
	RatingCount     int             `json:"ratingCount"`
	ReviewCount     int             `json:"reviewCount"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	RatingBreakdown RatingBreakdown `json:"ratingBreakdown"`
	FeatureRatings  []FeatureRating `json:"featureRatings"`
	RecentReviews   []Review        `json:"recentReviews"`
	FetchedAt       time.Time       `json:"fetchedAt,omitempty"`
	ResponseTime    int64           `json:"responseTimeMs,omitempty"`
}

// Usable reports whether the record carries enough identity to be
// returned to a caller. A record with neither a name nor a price is a
// failed scan, not a product.
func (p *Product) Usable() bool {
	return p.Name != "" || p.Price > 0
}

// RatingBreakdown maps a star value (1-5) to the number of ratings at
// that star. All five buckets are always present, defaulting to zero.
type RatingBreakdown map[int]int

// NewRatingBreakdown returns a breakdown with all five buckets zeroed.
func NewRatingBreakdown() RatingBreakdown {
	return RatingBreakdown{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}

// Record stores a bucket count, keeping the larger of the existing and
// new value. Histogram counts are mined from noisy page text; a larger
// capture is treated as the better one and a smaller capture never
// overwrites it.
func (rb RatingBreakdown) Record(star, count int) {
	if star < 1 || star > 5 {
		return
	}
	if count > rb[star] {
		rb[star] = count
	}
}

// FeatureRating is a per-aspect score (Camera, Battery, ...) in (0, 5].
type FeatureRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// Review is a single free-text customer review.
//
// Rating defaults to 5 when no rating element was found near the review
// text. That is a deliberate bias inherited from the page layout, not
// an inferred truth; downstream sentiment aggregates should treat it
// accordingly.
type Review struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

// ScanOptions contains options for a single product-page scan.
type ScanOptions struct {
	URL         string
	SessionName string            // saved auth session to load cookies from
	Headers     map[string]string // extra HTTP headers for the browser session
	Timeout     time.Duration     // navigation timeout
	Proxy       string
}

// ScanResult pairs a scan outcome with its error for batch processing.
type ScanResult struct {
	URL     string   `json:"url"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}
