package cli

import (
	"fmt"
	"strings"

	"github.com/evcraddock/rentbook/internal/ledger"
)

// minPrefixLen is the shortest id prefix that is expanded to a full id.
const minPrefixLen = 4

// resolveID expands a full id or unique id prefix to a property id.
// Unknown ids, blank arguments and prefixes shorter than minPrefixLen are
// returned unchanged so ledger operations treat them as no-ops.
func resolveID(book *ledger.Book, arg string) (string, error) {
	if _, ok := book.Get(arg); ok {
		return arg, nil
	}
	if len(strings.TrimSpace(arg)) < minPrefixLen {
		return arg, nil
	}

	var matches []string
	for _, p := range book.Properties() {
		if strings.HasPrefix(p.ID, arg) {
			matches = append(matches, p.ID)
		}
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("id prefix %q matches %d properties", arg, len(matches))
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return arg, nil
}
