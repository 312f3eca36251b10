package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// saveBatchCSV flattens batch results into one row per scan. Reviews
// and the histogram do not tabulate; the CSV carries the scalar fields
// a price-tracking spreadsheet needs.
func saveBatchCSV(path string, results []models.ScanResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"url", "name", "price", "rating", "rating_count", "review_count", "image", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := make([]string, len(header))
		row[0] = r.URL
		row[7] = r.Error
		if r.Product != nil {
			row[1] = r.Product.Name
			row[2] = strconv.Itoa(r.Product.Price)
			row[3] = fmt.Sprintf("%.1f", r.Product.Rating)
			row[4] = strconv.Itoa(r.Product.RatingCount)
			row[5] = strconv.Itoa(r.Product.ReviewCount)
			row[6] = r.Product.Image
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}
