package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxy for browser traffic (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "", "Hard navigation timeout (e.g., 45s)")
	cmd.PersistentFlags().String("user-agent", "", "Custom browser user agent string")
	cmd.PersistentFlags().String("chrome-path", "", "Path to the Chrome/Chromium binary")
	cmd.PersistentFlags().Bool("headless", true, "Run the browser headless")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
