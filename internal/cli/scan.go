package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/report"
	"github.com/flipintegrity/flipscan/internal/utils/headers"
	"github.com/flipintegrity/flipscan/pkg/models"
)

var (
	scanOutput  string
	scanHeaders []string
	scanSession string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan one product page and print the extracted data",
	Long: `Renders the product page in headless Chrome, waits for lazy-loaded
content, and extracts the structured listing record.`,
	Example: `  # Scan a product page
  flipscan scan https://www.flipkart.com/some-product/p/itm123

  # Save the record to a file
  flipscan scan https://www.flipkart.com/some-product/p/itm123 --output=product.json

  # Scan through a saved login session
  flipscan scan https://www.flipkart.com/some-product/p/itm123 --auth-session=my-login

  # Add custom headers
  flipscan scan https://www.flipkart.com/some-product/p/itm123 -H "Accept-Language: en-IN"`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "File path to save output (supports .json, .md, .csv)")
	scanCmd.Flags().StringArrayVarP(&scanHeaders, "header", "H", []string{}, "Custom headers (e.g., -H \"Accept-Language: en-IN\")")
	scanCmd.Flags().StringVar(&scanSession, "auth-session", "", "Name of a saved auth session to use")
}

func runScan(cmd *cobra.Command, args []string) error {
	application := GetApp()
	url := args[0]

	opts := models.ScanOptions{
		URL:         url,
		SessionName: scanSession,
		Headers:     headers.ParseHeaders(scanHeaders),
		Proxy:       application.Config.Proxy,
		Timeout:     application.Config.NavTimeout,
	}

	log.Info().Str("url", url).Msg("Scanning product page")

	ctx, cancel := context.WithTimeout(cmd.Context(), scanDeadline(opts.Timeout))
	defer cancel()

	product, err := application.Auditor.Audit(ctx, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanOutput != "" {
		if err := report.Save(scanOutput, product); err != nil {
			return err
		}
		fmt.Printf("Saved to %s\n", scanOutput)
		return nil
	}

	return report.Print(product)
}

// scanDeadline bounds the whole scan: navigation plus settle plus
// extraction, with slack for session acquisition.
func scanDeadline(navTimeout time.Duration) time.Duration {
	return navTimeout + 60*time.Second
}
