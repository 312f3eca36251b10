package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/auth"
)

var (
	importURL     string
	importCookies string
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved marketplace login sessions",
	Long: `List, view, import, and delete saved login sessions.

Sessions are stored in your OS keyring (or a private file in headless
environments) and hold the cookies scans use to see logged-in pages.`,
	Example: `  # List all saved sessions
  flipscan sessions list

  # View details of a session
  flipscan sessions view my-login

  # Import cookies exported from DevTools
  flipscan sessions import my-login --url=https://www.flipkart.com --cookies=cookies.json

  # Delete a session
  flipscan sessions delete my-login`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import a session from a cookies JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsImport,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsImportCmd)

	sessionsImportCmd.Flags().StringVar(&importURL, "url", "", "Site the session belongs to")
	sessionsImportCmd.Flags().StringVar(&importCookies, "cookies", "", "Path to a JSON array of cookies (required)")
	sessionsImportCmd.MarkFlagRequired("cookies")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	sessions, err := auth.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("\nNo saved sessions found.")
		fmt.Println("\nCreate one with:")
		fmt.Println("  flipscan login <url> --session=<name>")
		fmt.Println()
		return nil
	}

	fmt.Printf("\nSaved Sessions (%d)\n\n", len(sessions))

	for i, name := range sessions {
		fmt.Printf("%d. %s\n", i+1, name)

		session, err := auth.LoadSession(name)
		if err != nil {
			fmt.Printf("   Error loading: %v\n", err)
			continue
		}

		fmt.Printf("   URL: %s\n", session.URL)
		fmt.Printf("   Cookies: %d\n", len(session.Cookies))
		fmt.Printf("   Created: %s\n", session.CreatedAt.Format(time.RFC1123))

		if !session.ExpiresAt.IsZero() {
			if time.Now().After(session.ExpiresAt) {
				fmt.Printf("   Status: expired (%s ago)\n", time.Since(session.ExpiresAt).Round(time.Hour))
			} else {
				fmt.Printf("   Expires: %s (in %s)\n",
					session.ExpiresAt.Format(time.RFC1123),
					time.Until(session.ExpiresAt).Round(time.Hour))
			}
		}

		if i < len(sessions)-1 {
			fmt.Println()
		}
	}

	fmt.Println()
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	name := args[0]

	session, err := auth.LoadSession(name)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", name, err)
	}

	fmt.Printf("\nSession Details: %s\n\n", name)
	fmt.Printf("Name:     %s\n", session.Name)
	fmt.Printf("URL:      %s\n", session.URL)
	fmt.Printf("Created:  %s\n", session.CreatedAt.Format(time.RFC1123))

	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Expires:  %s\n", session.ExpiresAt.Format(time.RFC1123))
		if time.Now().After(session.ExpiresAt) {
			fmt.Printf("Status:   expired\n")
		} else {
			fmt.Printf("Status:   valid (expires in %s)\n", time.Until(session.ExpiresAt).Round(time.Hour))
		}
	}

	fmt.Printf("\nCookies (%d):\n", len(session.Cookies))
	for i, cookie := range session.Cookies {
		if i >= 5 {
			fmt.Printf("  ... and %d more\n", len(session.Cookies)-5)
			break
		}
		fmt.Printf("  - %s (domain: %s)\n", cookie.Name, cookie.Domain)
	}

	if len(session.Headers) > 0 {
		fmt.Printf("\nCustom Headers (%d):\n", len(session.Headers))
		for key, value := range session.Headers {
			fmt.Printf("  - %s: %s\n", key, value)
		}
	}

	fmt.Println()
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	fmt.Printf("\nDelete session '%s'? [y/N]: ", name)
	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "y" && confirm != "Y" {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := auth.DeleteSessionWithManifest(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("\nSession '%s' deleted.\n\n", name)
	return nil
}

// runSessionsImport builds a session from cookies exported out of the
// browser's DevTools, for environments where a visible login browser
// cannot run.
func runSessionsImport(cmd *cobra.Command, args []string) error {
	name := args[0]

	data, err := os.ReadFile(importCookies)
	if err != nil {
		return fmt.Errorf("failed to read cookies file: %w", err)
	}

	var cookies []auth.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to parse cookies file: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("cookies file contains no cookies")
	}

	session := &auth.SessionData{
		Name:      name,
		URL:       importURL,
		Cookies:   cookies,
		CreatedAt: time.Now(),
	}

	maxExpires := 0.0
	for _, c := range cookies {
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		session.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}

	if err := auth.SaveSessionWithManifest(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("\nSession '%s' imported with %d cookies.\n\n", name, len(cookies))
	return nil
}
