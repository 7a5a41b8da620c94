package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a property",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, args[0])
	if err != nil {
		return err
	}
	p, ok := book.Get(id)
	if !ok {
		return fmt.Errorf("property %s not found", args[0])
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), p)
	}
	printProperty(cmd.OutOrStdout(), p, getCurrency())
	return nil
}
