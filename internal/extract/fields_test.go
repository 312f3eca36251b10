package extract

import (
	"strings"
	"testing"

	"github.com/flipintegrity/flipscan/internal/browser"
)

func testAuditor() *Auditor {
	return New(nil, nil, browser.SettleOptions{}, 0, DefaultOptions())
}

func mustSnapshot(t *testing.T, html string) *Snapshot {
	t.Helper()
	snap, err := NewSnapshotFromHTML("https://www.flipkart.com/test-product/p/itm123", html)
	if err != nil {
		t.Fatalf("failed to build snapshot: %v", err)
	}
	return snap
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"2,345":     2345,
		"45990":     45990,
		"1,00,000":  100000,
		"not a num": 0,
	}
	for in, want := range cases {
		if got := parseCount(in); got != want {
			t.Errorf("parseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLeadingNumber(t *testing.T) {
	if v, ok := leadingNumber("₹45,990"); !ok || v != 45990 {
		t.Errorf("leadingNumber(₹45,990) = %d, %v", v, ok)
	}
	if v, ok := leadingNumber("45,990 incl. taxes"); !ok || v != 45990 {
		t.Errorf("leadingNumber with suffix = %d, %v", v, ok)
	}
	if _, ok := leadingNumber("no digits here"); ok {
		t.Error("expected no match for digit-free string")
	}
}

func TestExtractPriceFromSelector(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><div class="Nx9bqj">₹45,990</div></body></html>`)

	if got := a.extractPrice(snap, structuredProduct{}); got != 45990 {
		t.Errorf("price = %d, want 45990", got)
	}
}

func TestExtractPriceRejectsImplausible(t *testing.T) {
	a := testAuditor()
	// 45 is below the configured floor; the selector value must be
	// rejected and no other source exists.
	snap := mustSnapshot(t, `<html><body><div class="Nx9bqj">₹45</div></body></html>`)

	if got := a.extractPrice(snap, structuredProduct{}); got != 0 {
		t.Errorf("price = %d, want 0 for implausible selector value", got)
	}
}

func TestCurrencyScanSkipsDiscounts(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body>
		<p>Save ₹5,000 off with exchange</p>
		<p>Extra ₹2,000 (10%) on cards</p>
		<p>Special price ₹45,990 only today</p>
	</body></html>`)

	v, ok := a.scanCurrencyPrice(snap)
	if !ok || v != 45990 {
		t.Errorf("scanCurrencyPrice = %d, %v; want 45990, true", v, ok)
	}
}

func TestIsDiscountSuffix(t *testing.T) {
	cases := map[string]bool{
		" off with exchange": true,
		" OFF":               true,
		"%":                  true,
		" (10%) on cards":    true,
		" (5.5%) cashback":   true,
		" only today":        false,
		" (limited stock)":   false,
		"":                   false,
	}
	for rest, want := range cases {
		if got := isDiscountSuffix(rest); got != want {
			t.Errorf("isDiscountSuffix(%q) = %v, want %v", rest, got, want)
		}
	}
}

func TestCurrencyScanNothingPlausible(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><p>Save ₹300 on delivery</p></body></html>`)

	if _, ok := a.scanCurrencyPrice(snap); ok {
		t.Error("expected no plausible price")
	}
}

func TestExtractNameFallsBackToTitle(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><head><title>Acme Phone X - Buy Online</title></head><body><p>nothing</p></body></html>`)

	if got := a.extractName(snap, structuredProduct{}); got != "Acme Phone X - Buy Online" {
		t.Errorf("name = %q, want page title", got)
	}
}

func TestExtractNamePrefersStructured(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><span class="VU-ZEz">Selector Name</span></body></html>`)

	got := a.extractName(snap, structuredProduct{Name: "Structured Name", found: true})
	if got != "Structured Name" {
		t.Errorf("name = %q, want structured value", got)
	}
}

func TestExtractRatingStarGlyphScan(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><p>Rated 4.6 ★ by our customers</p></body></html>`)

	if got := a.extractRating(snap, structuredProduct{}); got != 4.6 {
		t.Errorf("rating = %v, want 4.6", got)
	}
}

func TestExtractRatingRejectsOutOfRange(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><div class="XQDdHH">0</div></body></html>`)

	if got := a.extractRating(snap, structuredProduct{}); got != 0 {
		t.Errorf("rating = %v, want 0", got)
	}
}

func TestExtractCounts(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><span>12,345 Ratings &amp; 1,234 Reviews</span></body></html>`)

	if got := a.extractRatingCount(snap, structuredProduct{}); got != 12345 {
		t.Errorf("ratingCount = %d, want 12345", got)
	}
	if got := a.extractReviewCount(snap, structuredProduct{}); got != 1234 {
		t.Errorf("reviewCount = %d, want 1234", got)
	}
}

func TestExtractImageResolvesRelative(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><img class="DByuf4" src="/image/phone.jpg"></body></html>`)

	got := a.extractImage(snap, structuredProduct{})
	if got != "https://www.flipkart.com/image/phone.jpg" {
		t.Errorf("image = %q", got)
	}
}

func TestExtractImageOpenGraphFallback(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><head><meta property="og:image" content="https://cdn.example.com/og.jpg"></head><body></body></html>`)

	if got := a.extractImage(snap, structuredProduct{}); got != "https://cdn.example.com/og.jpg" {
		t.Errorf("image = %q, want og:image content", got)
	}
}

func TestExtractDescriptionConvertsMarkup(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><div class="_1mXcCf"><p>Great phone.</p><ul><li>Fast</li><li>Light</li></ul></div></body></html>`)

	got := a.extractDescription(snap, structuredProduct{})
	if got == "" {
		t.Fatal("expected a description")
	}
	for _, want := range []string{"Great phone.", "Fast", "Light"} {
		if !strings.Contains(got, want) {
			t.Errorf("description %q missing %q", got, want)
		}
	}
}
