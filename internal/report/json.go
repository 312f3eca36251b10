// Package report renders scan results for the CLI: stdout summaries
// and .json/.md/.csv files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// Save writes one product record to a file, with the format picked by
// extension. Unknown extensions get JSON.
func Save(path string, product *models.Product) error {
	switch {
	case strings.HasSuffix(path, ".md"):
		return SaveMarkdown(path, product)
	case strings.HasSuffix(path, ".csv"):
		return SaveBatch(path, []models.ScanResult{{URL: product.URL, Product: product}})
	default:
		return SaveJSON(path, product)
	}
}

// SaveJSON writes the record as indented JSON.
func SaveJSON(path string, product *models.Product) error {
	content, err := json.MarshalIndent(product, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// SaveBatch writes batch results, as JSON or CSV by extension.
func SaveBatch(path string, results []models.ScanResult) error {
	if strings.HasSuffix(path, ".csv") {
		return saveBatchCSV(path, results)
	}
	content, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Print writes a human-readable summary of the record to stdout
// followed by the full JSON body.
func Print(product *models.Product) error {
	fmt.Printf("\n")
	fmt.Printf("Name:         %s\n", product.Name)
	fmt.Printf("Price:        ₹%d\n", product.Price)
	if product.Rating > 0 {
		fmt.Printf("Rating:       %.1f (%d ratings, %d reviews)\n",
			product.Rating, product.RatingCount, product.ReviewCount)
	}
	if len(product.FeatureRatings) > 0 {
		fmt.Printf("Features:     ")
		parts := make([]string, 0, len(product.FeatureRatings))
		for _, f := range product.FeatureRatings {
			parts = append(parts, fmt.Sprintf("%s %.1f", f.Name, f.Rating))
		}
		fmt.Printf("%s\n", strings.Join(parts, ", "))
	}
	fmt.Printf("Reviews:      %d collected\n", len(product.RecentReviews))
	fmt.Printf("Elapsed:      %dms\n\n", product.ResponseTime)

	content, err := json.MarshalIndent(product, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	fmt.Println(string(content))
	return nil
}
