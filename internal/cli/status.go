package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored API key is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, out io.Writer) error {
	serverURL := flagServer
	if serverURL == "" {
		serverURL = getServerURL()
	}
	apiKey := getAPIKey()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)

	if apiKey == "" {
		fmt.Fprintln(out, "API Key: not configured")
		fmt.Fprintln(out, "\nRun 'rb login' to authenticate.")
		return nil
	}
	fmt.Fprintf(out, "API Key: %s…\n", shortID(apiKey))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := client.New(serverURL, apiKey)
	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	if _, err := c.ListAll(ctx); err != nil {
		fmt.Fprintf(out, "Status:  ✗ %v\n", err)
		fmt.Fprintln(out, "\nRun 'rb login' to re-authenticate.")
		return nil
	}

	fmt.Fprintln(out, "Status:  ✓ connected and authenticated")
	return nil
}
