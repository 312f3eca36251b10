package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/auth"
	"github.com/flipintegrity/flipscan/internal/ui"
)

var (
	loginSession string
	loginWait    string
	loginTimeout string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Interactively log in to the marketplace and save the session",
	Long: `Opens a visible browser window for you to log in manually. After
login, cookies are captured and stored in your OS keyring. Scans run
with --auth-session see the page a logged-in customer sees, including
member pricing and gated reviews.`,
	Example: `  # Log in and save the session
  flipscan login https://www.flipkart.com/account/login --session=my-login --wait="._1psGvi"

  # Use the saved session for a scan
  flipscan scan https://www.flipkart.com/some-product/p/itm123 --auth-session=my-login`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&loginWait, "wait", "w", "", "CSS selector to wait for after login")
	loginCmd.Flags().StringVar(&loginTimeout, "login-timeout", "5m", "Timeout for login process")
	loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	url := args[0]

	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	log.Info().
		Str("url", url).
		Str("session", loginSession).
		Msg("Initiating login")

	fmt.Printf("\n%s\n", ui.Bold("Interactive Login"))
	fmt.Printf("  %s %s\n", ui.Bold("Session:"), loginSession)
	fmt.Printf("  %s %s\n", ui.Bold("URL:"), url)
	fmt.Printf("  %s %s\n\n", ui.Bold("Timeout:"), timeout.String())

	session, err := auth.InteractiveLogin(auth.LoginOptions{
		SessionName:  loginSession,
		URL:          url,
		WaitSelector: loginWait,
		Timeout:      timeout,
		ChromePath:   GetApp().Config.ChromePath,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := auth.SaveSessionWithManifest(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Println(ui.Success("\nSession saved successfully."))
	fmt.Printf("\n%s\n", ui.Bold("Use it with:"))
	fmt.Printf("  flipscan scan <url> --auth-session=%s\n\n", loginSession)

	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Session expires: %s\n\n", session.ExpiresAt.Format(time.RFC1123))
	}

	return nil
}
