package extract

import (
	"testing"
)

func TestExtractRatingBreakdown(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body>
		<div>5 ★</div><div>2,345</div>
		<div>4 ★</div><div>1,200</div>
		<div>3 ★</div><div>310</div>
		<div>2 ★</div><div>85</div>
		<div>1 ★</div><div>120</div>
	</body></html>`)

	got := a.extractRatingBreakdown(snap)
	want := map[int]int{5: 2345, 4: 1200, 3: 310, 2: 85, 1: 120}
	for star, count := range want {
		if got[star] != count {
			t.Errorf("star %d = %d, want %d", star, got[star], count)
		}
	}
}

func TestExtractRatingBreakdownLargerWins(t *testing.T) {
	a := testAuditor()
	// The same bucket appears twice; the partial capture (250) must not
	// overwrite the full one (2,345) regardless of order.
	snap := mustSnapshot(t, `<html><body>
		<div>5 ★ 2,345</div>
		<div>5 ★ 250</div>
	</body></html>`)

	got := a.extractRatingBreakdown(snap)
	if got[5] != 2345 {
		t.Errorf("star 5 = %d, want 2345", got[5])
	}
}

func TestExtractRatingBreakdownEmptyPage(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><p>No histogram here</p></body></html>`)

	got := a.extractRatingBreakdown(snap)
	for star := 1; star <= 5; star++ {
		if got[star] != 0 {
			t.Errorf("star %d = %d, want 0", star, got[star])
		}
	}
	if len(got) != 5 {
		t.Errorf("expected all five buckets present, got %d", len(got))
	}
}

func TestExtractRatingBreakdownWindowBound(t *testing.T) {
	a := testAuditor()
	// The count is far beyond the 20-char window; it must not attach to
	// the star.
	snap := mustSnapshot(t, `<html><body>
		<div>5 ★ some very long unrelated filler text between 9,999</div>
	</body></html>`)

	got := a.extractRatingBreakdown(snap)
	if got[5] == 9999 {
		t.Error("count outside the window must not be captured")
	}
}
