// Package cli provides the command-line interface for the flipscan application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/flipintegrity/flipscan/internal/app"
)

// SetApp stores the Application for commands to use.
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application.
func GetApp() *app.Application {
	return globalApp
}

var globalApp *app.Application
