package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/auth"
	"github.com/evcraddock/rentbook/internal/client"
)

func newLoginCmd() *cobra.Command {
	var key, owner string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for a rentbook server",
		Long: `Verify an API key against the server and save it to ~/.config/rb/config.yaml.
Create keys on the server host with 'rb keys create'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, key, owner)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (default: $RB_API_KEY)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner the key was created for")

	return cmd
}

func runLogin(cmd *cobra.Command, key, owner string) error {
	if key == "" {
		key = getAPIKey()
	}
	key = strings.TrimSpace(key)
	if err := validateAPIKey(key); err != nil {
		return err
	}

	serverURL := flagServer
	if serverURL == "" {
		serverURL = getServerURL()
	}

	if _, err := client.New(serverURL, key).ListAll(cmd.Context()); err != nil {
		return fmt.Errorf("verifying key against %s: %w", serverURL, err)
	}

	provider, err := newProvider()
	if err != nil {
		return err
	}
	session, err := changeSession(provider, func() error {
		return provider.SignIn(auth.Session{ServerURL: serverURL, APIKey: key, Owner: owner})
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s%s.\n", session.ServerURL, ownerSuffix(session))
	return nil
}

// changeSession runs change and returns the session the provider announced
// for it. It is nil after a sign out.
func changeSession(provider *auth.Provider, change func() error) (*auth.Session, error) {
	sessions, stop := provider.Subscribe()
	defer stop()

	if err := change(); err != nil {
		return nil, err
	}
	return <-sessions, nil
}

func ownerSuffix(s *auth.Session) string {
	if s == nil || s.Owner == "" {
		return ""
	}
	return " as " + s.Owner
}

// validateAPIKey checks that the key is non-empty and has the expected prefix.
func validateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("no API key provided")
	}
	if !strings.HasPrefix(key, "rb_") {
		return fmt.Errorf("invalid API key format (should start with rb_)")
	}
	return nil
}
