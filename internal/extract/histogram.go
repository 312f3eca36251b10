package extract

import (
	"regexp"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// The histogram never comes with stable markup, so it is mined from
// rendered text windows like "5 ★ 2,345" or "5★\n2,345". The window
// between the star glyph and its count is bounded so a count from an
// unrelated block further down cannot be captured.
var (
	histogramWindowRe = regexp.MustCompile(`(?s)[1-5]\s*★.{0,20}?[0-9][0-9,]*`)
	histogramStarRe   = regexp.MustCompile(`([1-5])\s*★`)
	histogramCountRe  = regexp.MustCompile(`([0-9][0-9,]*)$`)
)

// extractRatingBreakdown scans the full text for star/count windows.
// When two windows disagree on a bucket, the larger count wins; smaller
// later captures are treated as partial matches, not corrections.
func (a *Auditor) extractRatingBreakdown(snap *Snapshot) models.RatingBreakdown {
	breakdown := models.NewRatingBreakdown()

	for _, window := range histogramWindowRe.FindAllString(snap.Text, -1) {
		starMatch := histogramStarRe.FindStringSubmatch(window)
		countMatch := histogramCountRe.FindStringSubmatch(window)
		if starMatch == nil || countMatch == nil {
			continue
		}
		star := int(starMatch[1][0] - '0')
		breakdown.Record(star, parseCount(countMatch[1]))
	}

	return breakdown
}
