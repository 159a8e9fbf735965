package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mosaic-hrd/website/internal/listing"
)

func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window <current> <total>",
		Short: "Print the pagination window shown for a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid current page %q: %w", args[0], err)
			}
			total, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid total pages %q: %w", args[1], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatWindow(listing.Window(current, total)))
			return err
		},
	}
}

// formatWindow renders links as "1 … 4 [5] 6 … 10".
func formatWindow(links []listing.PageLink) string {
	parts := make([]string, len(links))
	for i, l := range links {
		switch {
		case l.Ellipsis:
			parts[i] = "…"
		case l.Current:
			parts[i] = "[" + strconv.Itoa(l.Number) + "]"
		default:
			parts[i] = strconv.Itoa(l.Number)
		}
	}
	return strings.Join(parts, " ")
}
