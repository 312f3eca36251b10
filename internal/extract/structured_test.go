package extract

import (
	"testing"
)

func TestParseJSONLDProduct(t *testing.T) {
	snap := mustSnapshot(t, `<html><body>
		<script type="application/ld+json">
		{"@type":"Product","name":"Acme Phone X","offers":{"price":"45990.00"},
		 "aggregateRating":{"ratingValue":4.4,"ratingCount":12345,"reviewCount":"1234"},
		 "image":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"],
		 "description":"A phone."}
		</script>
	</body></html>`)

	p := parseJSONLD(snap)
	if !p.found {
		t.Fatal("expected a product entity")
	}
	if p.Name != "Acme Phone X" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Price != 45990 {
		t.Errorf("price = %d, want 45990 (string price truncated)", p.Price)
	}
	if p.Rating != 4.4 || p.RatingCount != 12345 || p.ReviewCount != 1234 {
		t.Errorf("aggregate = %v/%d/%d", p.Rating, p.RatingCount, p.ReviewCount)
	}
	if p.Image != "https://cdn.example.com/a.jpg" {
		t.Errorf("image = %q, want first array entry", p.Image)
	}
}

func TestParseJSONLDFirstProductWins(t *testing.T) {
	snap := mustSnapshot(t, `<html><body>
		<script type="application/ld+json">{"@type":"Product","name":"First","offers":{"price":10000}}</script>
		<script type="application/ld+json">{"@type":"Product","name":"Second","offers":{"price":20000}}</script>
	</body></html>`)

	p := parseJSONLD(snap)
	if p.Name != "First" || p.Price != 10000 {
		t.Errorf("got %q/%d, want the first product block", p.Name, p.Price)
	}
}

func TestParseJSONLDSkipsMalformedBlocks(t *testing.T) {
	snap := mustSnapshot(t, `<html><body>
		<script type="application/ld+json">{not json at all</script>
		<script type="application/ld+json">{"@type":"BreadcrumbList"}</script>
		<script type="application/ld+json">[{"@type":"Organization"},{"@type":"Product","name":"Found"}]</script>
	</body></html>`)

	p := parseJSONLD(snap)
	if !p.found || p.Name != "Found" {
		t.Errorf("got %+v, want product from array block", p)
	}
}

func TestParseJSONLDNoProduct(t *testing.T) {
	snap := mustSnapshot(t, `<html><body>
		<script type="application/ld+json">{"@type":"WebSite","name":"Shop"}</script>
	</body></html>`)

	if p := parseJSONLD(snap); p.found {
		t.Errorf("expected no product, got %+v", p)
	}
}

func TestImageString(t *testing.T) {
	if got := imageString("https://x/y.jpg"); got != "https://x/y.jpg" {
		t.Errorf("string form: %q", got)
	}
	if got := imageString([]any{"https://x/a.jpg", "https://x/b.jpg"}); got != "https://x/a.jpg" {
		t.Errorf("array form: %q", got)
	}
	if got := imageString(map[string]any{"url": "https://x/o.jpg"}); got != "https://x/o.jpg" {
		t.Errorf("object form: %q", got)
	}
	if got := imageString(42); got != "" {
		t.Errorf("unknown form: %q", got)
	}
}

func TestAsFloatNumericForms(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{45990.5, 45990.5},
		{int(45990), 45990},
		{int32(45990), 45990},
		{int64(45990), 45990}, // goja exports integral JS numbers as int64
		{"4.4", 4.4},
		{nil, 0},
		{true, 0},
	}
	for _, c := range cases {
		if got := asFloat(c.in); got != c.want {
			t.Errorf("asFloat(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAsIntTruncates(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{"45990.00", 45990},
		{45990.9, 45990},
		{"  12345 ", 12345},
		{"junk", 0},
		{nil, 0},
	}
	for _, c := range cases {
		if got := asInt(c.in); got != c.want {
			t.Errorf("asInt(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
