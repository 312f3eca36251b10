package extract

import (
	"regexp"
	"strconv"
	"strings"

	urlutil "github.com/flipintegrity/flipscan/internal/utils/url"
)

// Selector lists for the marketplace's known class names. These churn
// every few months, which is why every field also carries a text-pattern
// fallback that survives markup changes at the cost of precision.
var (
	nameSelectors        = []string{"span.B_NuCI", "span.VU-ZEz", "h1._6EBuvT", ".yhB1nd"}
	priceSelectors       = []string{"div._30jeq3._16Jk6d", "div.Nx9bqj", "div._30jeq3", "div.CxhGGd"}
	ratingSelectors      = []string{"div._3LWZlK", "div.XQDdHH"}
	imageSelectors       = []string{"img._396cs4", "img.DByuf4"}
	descriptionSelectors = []string{"div._1mXcCf", `div.yN\+eNk`}
)

var (
	numberRunRe   = regexp.MustCompile(`[0-9][0-9,]*`)
	currencyRe    = regexp.MustCompile(`₹\s*([0-9][0-9,]*)`)
	ratingStarRe  = regexp.MustCompile(`([0-5]\.[0-9])\s*★`)
	ratingCountRe = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s+Ratings`)
	reviewCountRe = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s+Reviews`)
)

// parseCount parses a digit run with thousands separators ("2,345").
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// leadingNumber extracts the first digit run from a price-like string
// such as "₹45,990" or "45,990 incl. taxes".
func leadingNumber(s string) (int, bool) {
	m := numberRunRe.FindString(s)
	if m == "" {
		return 0, false
	}
	return parseCount(m), true
}

func (a *Auditor) extractName(snap *Snapshot, meta structuredProduct) string {
	return firstPlausible("name", snap,
		func(s string) bool { return s != "" },
		[]strategy[string]{
			{"structured", func(*Snapshot) (string, bool) { return meta.Name, meta.Name != "" }},
			{"selectors", func(s *Snapshot) (string, bool) {
				t := s.FirstText(nameSelectors...)
				return t, t != ""
			}},
			{"page_title", func(s *Snapshot) (string, bool) { return strings.TrimSpace(s.Title), true }},
		})
}

func (a *Auditor) extractPrice(snap *Snapshot, meta structuredProduct) int {
	return firstPlausible("price", snap, a.plausiblePrice,
		[]strategy[int]{
			{"structured", func(*Snapshot) (int, bool) { return meta.Price, meta.Price > 0 }},
			{"selectors", func(s *Snapshot) (int, bool) {
				t := s.FirstText(priceSelectors...)
				if t == "" {
					return 0, false
				}
				return leadingNumber(t)
			}},
			{"currency_scan", a.scanCurrencyPrice},
		})
}

// plausiblePrice rejects price-like numbers outside the configured
// retail range. Stray small amounts ("₹45" from a coupon banner) and
// concatenated digit garbage both fall outside it.
func (a *Auditor) plausiblePrice(v int) bool {
	return v > a.opts.PriceMin && v < a.opts.PriceMax
}

// scanCurrencyPrice scans the full rendered text for currency amounts,
// skipping any immediately followed by "off" or "%" (discount copy, not
// a price), and returns the first amount inside the plausible range.
func (a *Auditor) scanCurrencyPrice(snap *Snapshot) (int, bool) {
	for _, loc := range currencyRe.FindAllStringSubmatchIndex(snap.Text, -1) {
		amount := parseCount(snap.Text[loc[2]:loc[3]])
		if isDiscountSuffix(snap.Text[loc[1]:]) {
			continue
		}
		if a.plausiblePrice(amount) {
			return amount, true
		}
	}
	return 0, false
}

// isDiscountSuffix reports whether the text right after a currency
// match marks it as a discount: "₹500 off", "₹500%", or the
// parenthesized percentage offer copy uses, "₹2,000 (10%)".
func isDiscountSuffix(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, "(") {
		rest = strings.TrimLeft(rest[1:], "0123456789.")
		return strings.HasPrefix(rest, "%")
	}
	if strings.HasPrefix(rest, "%") {
		return true
	}
	return len(rest) >= 3 && strings.EqualFold(rest[:3], "off")
}

func (a *Auditor) extractRating(snap *Snapshot, meta structuredProduct) float64 {
	return firstPlausible("rating", snap,
		func(v float64) bool { return v > 0 && v <= 5 },
		[]strategy[float64]{
			{"structured", func(*Snapshot) (float64, bool) { return meta.Rating, meta.Rating > 0 }},
			{"selectors", func(s *Snapshot) (float64, bool) {
				t := s.FirstText(ratingSelectors...)
				if t == "" {
					return 0, false
				}
				v, err := strconv.ParseFloat(t, 64)
				return v, err == nil
			}},
			{"star_glyph_scan", func(s *Snapshot) (float64, bool) {
				m := ratingStarRe.FindStringSubmatch(s.Text)
				if m == nil {
					return 0, false
				}
				v, err := strconv.ParseFloat(m[1], 64)
				return v, err == nil
			}},
		})
}

func (a *Auditor) extractRatingCount(snap *Snapshot, meta structuredProduct) int {
	return firstPlausible("ratingCount", snap,
		func(v int) bool { return v > 0 },
		[]strategy[int]{
			{"structured", func(*Snapshot) (int, bool) { return meta.RatingCount, meta.RatingCount > 0 }},
			{"text_scan", countScan(ratingCountRe)},
		})
}

func (a *Auditor) extractReviewCount(snap *Snapshot, meta structuredProduct) int {
	return firstPlausible("reviewCount", snap,
		func(v int) bool { return v > 0 },
		[]strategy[int]{
			{"structured", func(*Snapshot) (int, bool) { return meta.ReviewCount, meta.ReviewCount > 0 }},
			{"text_scan", countScan(reviewCountRe)},
		})
}

func countScan(re *regexp.Regexp) func(*Snapshot) (int, bool) {
	return func(s *Snapshot) (int, bool) {
		m := re.FindStringSubmatch(s.Text)
		if m == nil {
			return 0, false
		}
		return parseCount(m[1]), true
	}
}

func (a *Auditor) extractImage(snap *Snapshot, meta structuredProduct) string {
	img := firstPlausible("image", snap,
		func(s string) bool { return s != "" },
		[]strategy[string]{
			{"structured", func(*Snapshot) (string, bool) { return meta.Image, meta.Image != "" }},
			{"selectors", func(s *Snapshot) (string, bool) {
				v := s.FirstAttr("src", imageSelectors...)
				return v, v != ""
			}},
			{"open_graph", func(s *Snapshot) (string, bool) {
				v, ok := s.Find(`meta[property="og:image"]`).First().Attr("content")
				return v, ok
			}},
		})
	if img == "" {
		return ""
	}
	resolved := urlutil.ResolveURL(snap.URL, img)
	if !urlLike(resolved) {
		return ""
	}
	return resolved
}

func urlLike(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:")
}

func (a *Auditor) extractDescription(snap *Snapshot, meta structuredProduct) string {
	return firstPlausible("description", snap,
		func(s string) bool { return s != "" },
		[]strategy[string]{
			{"structured", func(*Snapshot) (string, bool) { return meta.Description, meta.Description != "" }},
			{"selectors", func(s *Snapshot) (string, bool) {
				markup := s.FirstHTML(descriptionSelectors...)
				if markup == "" {
					return "", false
				}
				// Description blocks carry list and break markup;
				// converting to Markdown keeps the structure readable
				// as plain text.
				if text, err := a.md.ConvertString(markup); err == nil {
					return strings.TrimSpace(text), true
				}
				t := s.FirstText(descriptionSelectors...)
				return t, t != ""
			}},
		})
}
