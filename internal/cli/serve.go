package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/server"
)

var (
	serveListen  string
	serveOrigins []string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP scan API",
	Long: `Starts the HTTP server exposing GET /scrape?url=... and /health.
The browser pool is warmed at startup so the first request is fast.`,
	Example: `  # Serve on the default port
  flipscan serve

  # Serve on a custom address
  flipscan serve --listen=:9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringArrayVar(&serveOrigins, "allow-origin", []string{}, "Allowed CORS origins (repeatable, supports trailing *)")
}

func runServe(cmd *cobra.Command, args []string) error {
	application := GetApp()
	if serveListen != "" {
		application.Config.ListenAddr = serveListen
	}

	srv, err := server.New(cmd.Context(), application, serveOrigins)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
