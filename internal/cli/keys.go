package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/auth"
)

const defaultOwner = "landlord"

func newKeysCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys for the server",
		Long:  "Create, list and revoke the API keys that 'rb serve' accepts. Keys are stored in the local database.",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", "", "key owner (default: from config or \""+defaultOwner+"\")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runKeysCreate(cmd, args[0], resolveOwner(owner))
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List API keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runKeysList(cmd, resolveOwner(owner))
			},
		},
		&cobra.Command{
			Use:   "revoke <id>",
			Short: "Revoke an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runKeysRevoke(cmd, args[0], resolveOwner(owner))
			},
		},
	)

	return cmd
}

func resolveOwner(flag string) string {
	if flag != "" {
		return flag
	}
	cfg, err := loadConfig()
	if err == nil && cfg.Owner != "" {
		return cfg.Owner
	}
	return defaultOwner
}

func openKeyStore() (*auth.APIKeyStore, func(), error) {
	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAPIKeyStore(database), func() { closeDB(database) }, nil
}

func runKeysCreate(cmd *cobra.Command, name, owner string) error {
	keys, release, err := openKeyStore()
	if err != nil {
		return err
	}
	defer release()

	raw, key, err := keys.Create(name, owner)
	if err != nil {
		return fmt.Errorf("creating key: %w", err)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{
			"id":    key.ID,
			"name":  key.Name,
			"owner": owner,
			"key":   raw,
		})
	}
	fmt.Fprintf(out, "Created key %d (%s) for %s.\n", key.ID, key.Name, owner)
	fmt.Fprintf(out, "Key: %s\n", raw)
	fmt.Fprintln(out, "Store it now; it cannot be shown again.")
	return nil
}

func runKeysList(cmd *cobra.Command, owner string) error {
	keys, release, err := openKeyStore()
	if err != nil {
		return err
	}
	defer release()

	list, err := keys.List(owner)
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "No API keys for %s.\n", owner)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tLAST USED")
	for _, k := range list {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", k.ID, k.Name, k.CreatedAt.Format("2006-01-02 15:04"), lastUsed)
	}
	return w.Flush()
}

func runKeysRevoke(cmd *cobra.Command, arg, owner string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid key ID: %s", arg)
	}

	keys, release, err := openKeyStore()
	if err != nil {
		return err
	}
	defer release()

	if err := keys.Delete(id, owner); err != nil {
		return fmt.Errorf("revoking key %d: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Key %d revoked.\n", id)
	return nil
}
