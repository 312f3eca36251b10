package extract

import (
	"testing"
)

func TestExtractFeatureRatingsLabelFirst(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body>
		<div>Camera</div><div>4.5</div>
		<div>Battery</div><div>4.2</div>
	</body></html>`)

	got := a.extractFeatureRatings(snap)
	want := map[string]float64{"Camera": 4.5, "Battery": 4.2}
	if len(got) != 2 {
		t.Fatalf("got %d features, want 2: %+v", len(got), got)
	}
	for _, f := range got {
		if want[f.Name] != f.Rating {
			t.Errorf("%s = %v, want %v", f.Name, f.Rating, want[f.Name])
		}
	}
}

func TestExtractFeatureRatingsScoreFirst(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body>
		<div>4.3</div><div>Display</div>
	</body></html>`)

	got := a.extractFeatureRatings(snap)
	if len(got) != 1 || got[0].Name != "Display" || got[0].Rating != 4.3 {
		t.Errorf("got %+v, want Display 4.3", got)
	}
}

func TestExtractFeatureRatingsLookaheadBound(t *testing.T) {
	a := testAuditor()
	// More than 20 chars between label and score: no match.
	snap := mustSnapshot(t, `<html><body>
		<div>Camera has many advanced capabilities worth mentioning 4.5</div>
	</body></html>`)

	for _, f := range a.extractFeatureRatings(snap) {
		if f.Name == "Camera" {
			t.Errorf("Camera matched across an oversized gap: %+v", f)
		}
	}
}

func TestExtractFeatureRatingsNoDuplicates(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body>
		<div>Camera 4.5</div>
		<div>Camera 3.1</div>
	</body></html>`)

	got := a.extractFeatureRatings(snap)
	seen := 0
	for _, f := range got {
		if f.Name == "Camera" {
			seen++
			if f.Rating != 4.5 {
				t.Errorf("Camera = %v, want first match 4.5", f.Rating)
			}
		}
	}
	if seen != 1 {
		t.Errorf("Camera appeared %d times, want once", seen)
	}
}

func TestExtractFeatureRatingsCaseInsensitive(t *testing.T) {
	a := testAuditor()
	snap := mustSnapshot(t, `<html><body><div>BATTERY 4.0</div></body></html>`)

	got := a.extractFeatureRatings(snap)
	if len(got) != 1 || got[0].Name != "Battery" || got[0].Rating != 4.0 {
		t.Errorf("got %+v, want Battery 4.0", got)
	}
}
