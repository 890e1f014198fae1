package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/query"
	"github.com/spf13/cobra"
)

// errNotAnswered makes the process exit with a failure after the display text has been printed.
var errNotAnswered = errors.NewSentinel("question not answered")

func (c *cli) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ask <itemType> <question...>",
		Short:   "Ask one question about an item type and print the answer",
		Example: `  nai ask tool What opens?`,
		GroupID: queryGroup.ID,
		Args:    cobra.MinimumNArgs(2), //nolint:mnd // item type and at least one word
		RunE: func(cmd *cobra.Command, args []string) error {
			itemType, err := catalog.ParseItemType(args[0])
			if err != nil {
				return errors.Wrap(err, "ask")
			}
			client, err := query.NewClient(c.cfg.ServerURL, c.logger, query.WithTimeout(c.cfg.QueryTimeout))
			if err != nil {
				return errors.Wrap(err, "new query client")
			}

			ctx := cmd.Context()
			outcome := client.Do(ctx, query.Request{
				ItemType: itemType.WireName(),
				Question: strings.Join(args[1:], " "),
			})
			if _, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.DisplayText()); err != nil {
				return errors.Wrap(err, "print answer")
			}
			if outcome.Kind != query.Success {
				c.logger.LogAttrs(ctx, slog.LevelDebug, "question not answered",
					slog.String("kind", outcome.Kind.String()), errors.SlogError(outcome.Err))
				return errNotAnswered
			}
			return nil
		},
	}
}
