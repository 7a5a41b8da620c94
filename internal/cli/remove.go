package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a property",
		Long:  "Remove a property and its payment history. Removing an unknown id does nothing.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, args[0])
	if err != nil {
		return err
	}
	removed, err := book.Delete(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("removing property: %w", err)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{
			"id":      id,
			"removed": removed,
		})
	}

	if !removed {
		fmt.Fprintf(out, "No property %s.\n", args[0])
		return nil
	}
	fmt.Fprintf(out, "Property %s removed.\n", id)
	return nil
}
