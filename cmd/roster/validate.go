package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reachlyapp/reachly-server/internal/normalize"
	"github.com/reachlyapp/reachly-server/internal/roster"
)

var errInvalidRoster = errors.New("roster files contain invalid entries")

func runValidate(cmd *cobra.Command, args []string) error {
	bad := validateFiles(cmd.OutOrStdout(), args)
	if bad > 0 {
		return errInvalidRoster
	}
	return nil
}

// validateFiles reports every problem in the given files and returns how many
// files had at least one.
func validateFiles(out io.Writer, paths []string) int {
	bad := 0
	for _, path := range paths {
		entries, err := roster.DecodeFile(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			bad++
			continue
		}

		problems := 0
		slugs := make(map[string]int, len(entries))
		for idx := range entries {
			e := &entries[idx]
			if err := e.Validate(); err != nil {
				fmt.Fprintf(out, "  entry %d (%s): %v\n", idx, e.Name, err)
				problems++
				continue
			}
			slug := normalize.Slugify(cmp.Or(e.Slug, e.Name))
			if first, ok := slugs[slug]; ok {
				fmt.Fprintf(out, "  entry %d (%s): slug %q already used by entry %d\n", idx, e.Name, slug, first)
				problems++
				continue
			}
			slugs[slug] = idx
		}

		if problems > 0 {
			fmt.Fprintf(out, "✗ %s: %d of %d entries invalid\n", path, problems, len(entries))
			bad++
			continue
		}
		fmt.Fprintf(out, "✓ %s: %d entries\n", path, len(entries))
	}
	return bad
}
