package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// SaveMarkdown renders the record as a Markdown product sheet. The
// description is already Markdown (converted from page HTML during
// extraction) and is embedded as-is.
func SaveMarkdown(path string, product *models.Product) error {
	var b strings.Builder

	title := product.Name
	if title == "" {
		title = product.URL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if product.Image != "" {
		fmt.Fprintf(&b, "![product image](%s)\n\n", product.Image)
	}

	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Price | ₹%d |\n", product.Price)
	if product.Rating > 0 {
		fmt.Fprintf(&b, "| Rating | %.1f |\n", product.Rating)
	}
	if product.RatingCount > 0 {
		fmt.Fprintf(&b, "| Ratings | %d |\n", product.RatingCount)
	}
	if product.ReviewCount > 0 {
		fmt.Fprintf(&b, "| Reviews | %d |\n", product.ReviewCount)
	}
	if product.URL != "" {
		fmt.Fprintf(&b, "| URL | %s |\n", product.URL)
	}
	b.WriteString("\n")

	if hasBreakdown(product.RatingBreakdown) {
		b.WriteString("## Rating breakdown\n\n")
		for star := 5; star >= 1; star-- {
			fmt.Fprintf(&b, "- %d star: %d\n", star, product.RatingBreakdown[star])
		}
		b.WriteString("\n")
	}

	if len(product.FeatureRatings) > 0 {
		b.WriteString("## Feature ratings\n\n")
		for _, f := range product.FeatureRatings {
			fmt.Fprintf(&b, "- %s: %.1f\n", f.Name, f.Rating)
		}
		b.WriteString("\n")
	}

	if product.Description != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(product.Description)
		b.WriteString("\n\n")
	}

	if len(product.RecentReviews) > 0 {
		b.WriteString("## Recent reviews\n\n")
		for _, r := range product.RecentReviews {
			fmt.Fprintf(&b, "### %s (%.0f/5)\n\n%s\n\n", r.Title, r.Rating, r.Content)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func hasBreakdown(rb models.RatingBreakdown) bool {
	for _, count := range rb {
		if count > 0 {
			return true
		}
	}
	return false
}
