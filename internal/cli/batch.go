package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/batch"
	"github.com/flipintegrity/flipscan/internal/report"
	"github.com/flipintegrity/flipscan/pkg/models"
)

var (
	batchOutput      string
	batchConcurrency int
	batchSession     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <urls-file>",
	Short: "Scan many product pages from a URL list",
	Long: `Reads product page URLs from a file (one per line, # starts a
comment) and scans them concurrently over the shared browser pool.`,
	Example: `  # Scan a list of products into a JSON report
  flipscan batch products.txt --output=results.json

  # Limit concurrency and write CSV
  flipscan batch products.txt --concurrency=2 --output=results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "File path to save results (supports .json, .csv)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Concurrent scans (0 = auto)")
	batchCmd.Flags().StringVar(&batchSession, "auth-session", "", "Name of a saved auth session to use for all scans")
}

func runBatch(cmd *cobra.Command, args []string) error {
	application := GetApp()

	urls, err := readURLList(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", args[0])
	}

	// Batch scans share the warm pool; one Chrome, many tabs.
	if err := application.EnsureBrowserPool(cmd.Context()); err != nil {
		log.Warn().Err(err).Msg("Browser pool unavailable, scans will use dedicated sessions")
	}

	requests := make([]models.ScanOptions, len(urls))
	for i, u := range urls {
		requests[i] = models.ScanOptions{
			URL:         u,
			SessionName: batchSession,
			Proxy:       application.Config.Proxy,
			Timeout:     application.Config.NavTimeout,
		}
	}

	scanner := batch.New(application.Auditor, batchConcurrency)

	bar := progressbar.NewOptions(len(requests),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	var results []models.ScanResult
	failed := 0
	for result := range scanner.ScanAll(cmd.Context(), requests) {
		if result.Error != "" {
			failed++
		}
		results = append(results, result)
		bar.Add(1)
	}

	fmt.Printf("\nScanned %d pages, %d failed.\n", len(results), failed)

	if batchOutput != "" {
		if err := report.SaveBatch(batchOutput, results); err != nil {
			return err
		}
		fmt.Printf("Results saved to %s\n", batchOutput)
		return nil
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("FAIL %s: %s\n", r.URL, r.Error)
			continue
		}
		fmt.Printf("OK   %s: %s (₹%d)\n", r.URL, r.Product.Name, r.Product.Price)
	}
	return nil
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
