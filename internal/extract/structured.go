package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// structuredProduct is the gold-standard record mined from embedded
// machine-readable metadata (JSON-LD, or script-embedded page state).
// Zero fields mean "not present"; the heuristic extractors fill the
// gaps.
type structuredProduct struct {
	Name        string
	Price       int
	Rating      float64
	RatingCount int
	ReviewCount int
	Image       string
	Description string
	found       bool
}

// parseJSONLD scans all application/ld+json script blocks for an entity
// typed "Product", either directly or inside a top-level array. The
// first matching block wins; structured product metadata is normally
// singular, so later duplicates are assumed to be noise. Parse failures
// on individual blocks are skipped so one malformed block cannot hide a
// valid one further down the page.
func parseJSONLD(snap *Snapshot) structuredProduct {
	var out structuredProduct

	snap.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		if obj := decodeProductEntity(raw); obj != nil {
			out = productFromMap(obj)
			return false // first match wins
		}
		return true
	})

	return out
}

// decodeProductEntity parses a JSON-LD block and returns the contained
// Product entity, or nil.
func decodeProductEntity(raw string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if entityType(obj) == "Product" {
			return obj
		}
		return nil
	}

	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		for _, item := range arr {
			if entityType(item) == "Product" {
				return item
			}
		}
	}
	return nil
}

func entityType(obj map[string]any) string {
	t, _ := obj["@type"].(string)
	return t
}

// productFromMap normalizes the loosely-typed entity fields. Prices and
// counts arrive as strings or numbers depending on the page generator;
// images arrive as a string, an array, or a nested object.
func productFromMap(obj map[string]any) structuredProduct {
	p := structuredProduct{found: true}

	p.Name = asString(obj["name"])
	p.Description = asString(obj["description"])
	p.Image = imageString(obj["image"])

	if offers, ok := obj["offers"].(map[string]any); ok {
		p.Price = asInt(offers["price"])
	}

	if agg, ok := obj["aggregateRating"].(map[string]any); ok {
		p.Rating = asFloat(agg["ratingValue"])
		p.RatingCount = asInt(agg["ratingCount"])
		p.ReviewCount = asInt(agg["reviewCount"])
	}

	log.Debug().
		Str("name", p.Name).
		Int("price", p.Price).
		Msg("Structured product metadata found")

	return p
}

// imageString normalizes the image field to the first usable string.
func imageString(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return asString(img[0])
		}
	case map[string]any:
		return asString(img["url"])
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asFloat accepts every numeric shape the sources produce: JSON decodes
// to float64, the goja VM exports integral JS numbers as int64, and
// some page generators emit numbers as strings.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

// asInt truncates like the leading-digit-run parse used elsewhere:
// "45990.00" and 45990.0 both become 45990.
func asInt(v any) int {
	return int(asFloat(v))
}
