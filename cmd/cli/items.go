package main

import (
	"fmt"

	"github.com/myrjola/nai/internal/menu"
	"github.com/spf13/cobra"
)

func (c *cli) itemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "items",
		Short:   "List the catalog items with their item types and questions",
		GroupID: catalogGroup.ID,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, item := range c.catalog.Items() {
				if _, err := fmt.Fprintf(out, "%s (%s)\n", item.Name, item.Type.WireName()); err != nil {
					return err //nolint:wrapcheck // nothing to add
				}
				for i, q := range item.Questions {
					_, _ = fmt.Fprintf(out, "  %s\n", menu.Label(i, q))
				}
			}
			return nil
		},
	}
}
