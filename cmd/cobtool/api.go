package main

import (
	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running cobtool server via HTTP.

These commands require a running server (cobtool serve).
Use --server to specify a custom server URL.

Examples:
  cobtool api health                                    # Check server health
  cobtool api templates resolve --operator Lucia        # Show candidate template names
  cobtool api letters notification --company "ACME" \
      --tax-id 12345678000199 --table-file titulos.txt  # Render a notification
  cobtool api letters collection --operator Pedro \
      --company "ACME" --tax-id 12345678000199 \
      --attachment boletos.pdf                          # Render a collection letter`,
}

var lettersCmd = &cobra.Command{
	Use:   "letters",
	Short: "Letter rendering commands",
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Template lookup commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))

	for _, ep := range endpoints.LetterCommands() {
		lettersCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.TemplateCommands() {
		templatesCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(lettersCmd)
	apiCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(apiCmd)
}
