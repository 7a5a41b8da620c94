package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.OutOrStdout())
		},
	}
}

func runLogout(out io.Writer) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	previous := provider.Session()
	if previous == nil {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}
	session, err := changeSession(provider, provider.SignOut)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if session != nil {
		return fmt.Errorf("still logged in to %s", session.ServerURL)
	}
	fmt.Fprintf(out, "Logged out of %s.\n", previous.ServerURL)
	return nil
}
