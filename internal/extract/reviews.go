package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/flipintegrity/flipscan/pkg/models"
)

var (
	reviewContentSelectors = []string{".t-ZTKy", ".ZmyHeo", ".qwjRop"}
	reviewRatingSelector   = "div._3LWZlK, div.XQDdHH"
)

const readMoreLabel = "READ MORE"

// extractReviews collects up to MaxReviews free-text reviews.
//
// Primary strategy: known review-content class names, first selector
// with any matches wins. Fallback: locate "READ MORE" affordance
// elements and walk up two parent levels to the review container; the
// affordance label is stable across markup redesigns even when the
// container classes are not.
func (a *Auditor) extractReviews(snap *Snapshot) []models.Review {
	var out []models.Review

	for _, node := range a.reviewNodes(snap) {
		if len(out) >= a.opts.MaxReviews {
			break
		}
		content := strings.TrimSpace(strings.ReplaceAll(node.Text(), readMoreLabel, ""))
		if len(content) <= a.opts.MinReviewLen {
			continue // short garbage: icons, truncated fragments
		}
		out = append(out, models.Review{
			Title:   "Review",
			Content: content,
			Rating:  nearbyRating(node),
		})
	}

	return out
}

func (a *Auditor) reviewNodes(snap *Snapshot) []*goquery.Selection {
	for _, selector := range reviewContentSelectors {
		if found := snap.Find(selector); found.Length() > 0 {
			return splitSelection(found)
		}
	}

	var out []*goquery.Selection
	snap.Find("span, div").
		FilterFunction(func(i int, sel *goquery.Selection) bool {
			// Leaf elements only: a wrapper around the affordance has
			// the same text and would duplicate the container.
			return sel.Children().Length() == 0 && sel.Text() == readMoreLabel
		}).
		Each(func(i int, sel *goquery.Selection) {
			if container := sel.Parent().Parent(); container.Length() > 0 {
				out = append(out, container)
			}
		})
	return out
}

func splitSelection(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// nearbyRating searches up to four ancestor levels for a rating badge
// and parses its text. Defaults to 5 when nothing is found; that bias
// is documented on models.Review.
func nearbyRating(sel *goquery.Selection) float64 {
	parent := sel.Parent()
	for k := 0; k < 4 && parent.Length() > 0; k++ {
		badge := parent.Find(reviewRatingSelector).First()
		if badge.Length() > 0 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(badge.Text()), 64); err == nil && v > 0 {
				return v
			}
			return 5
		}
		parent = parent.Parent()
	}
	return 5
}
