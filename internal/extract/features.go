package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// featureCatalog is the fixed set of per-aspect scores the marketplace
// surfaces for electronics listings.
var featureCatalog = []string{"Camera", "Battery", "Display", "Design", "Performance", "Value"}

// featurePatterns holds the two compiled pattern directions for one
// feature name: label-then-score ("Camera 4.5", "Camera\n4.5") and
// score-then-label ("4.5 Camera", common in circular gauge widgets).
type featurePatterns struct {
	name       string
	labelFirst *regexp.Regexp
	scoreFirst *regexp.Regexp
}

// compileFeaturePatterns builds the pattern pairs with the configured
// lookahead window between label and score.
func compileFeaturePatterns(lookahead int) []featurePatterns {
	out := make([]featurePatterns, 0, len(featureCatalog))
	for _, name := range featureCatalog {
		out = append(out, featurePatterns{
			name:       name,
			labelFirst: regexp.MustCompile(fmt.Sprintf(`(?is)%s.{0,%d}?([0-5]\.[0-9])`, name, lookahead)),
			scoreFirst: regexp.MustCompile(fmt.Sprintf(`(?is)([0-5]\.[0-9]).{0,%d}?%s`, lookahead, name)),
		})
	}
	return out
}

// extractFeatureRatings tries both pattern directions per feature and
// keeps the first nonzero score. Each feature appears at most once.
func (a *Auditor) extractFeatureRatings(snap *Snapshot) []models.FeatureRating {
	var out []models.FeatureRating

	for _, fp := range a.features {
		score := matchScore(fp.labelFirst, snap.Text)
		if score == 0 {
			score = matchScore(fp.scoreFirst, snap.Text)
		}
		if score > 0 && score <= 5 {
			out = append(out, models.FeatureRating{Name: fp.name, Rating: score})
		}
	}

	return out
}

func matchScore(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}
