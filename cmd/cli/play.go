package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/inventory"
	"github.com/myrjola/nai/internal/logging"
	"github.com/myrjola/nai/internal/presenter"
	"github.com/myrjola/nai/internal/query"
	"github.com/myrjola/nai/internal/session"
	"github.com/spf13/cobra"
)

func (c *cli) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "play",
		Short:   "Browse the inventory and ask questions interactively",
		GroupID: queryGroup.ID,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The terminal belongs to the game, so logs go to a file.
			logFile, err := os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:mnd // rw owner
			if err != nil {
				return errors.Wrap(err, "open log file")
			}
			defer func() {
				_ = logFile.Close()
			}()
			logger := logging.NewLogger(logFile, c.level)

			slots, err := inventory.Fill(c.cfg.Slots, c.catalog.Items())
			if err != nil {
				return errors.Wrap(err, "fill inventory")
			}
			client, err := query.NewClient(c.cfg.ServerURL, logger, query.WithTimeout(c.cfg.QueryTimeout))
			if err != nil {
				return errors.Wrap(err, "new query client")
			}
			go client.Start()
			defer client.Stop()

			display := presenter.NewRecorder(slots.Len())
			model := newPlayModel(slots, display)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

			if model.controller, err = session.Initialize(session.Config{
				Slots:        slots,
				Display:      display,
				Querier:      client,
				Logger:       logger,
				DiscardStale: c.cfg.DiscardStale,
				OnOutcomeApplied: func() {
					program.Send(outcomeAppliedMsg{})
				},
			}); err != nil {
				return errors.Wrap(err, "start session")
			}

			if _, err = program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return errors.Wrap(err, "run game")
			}
			return nil
		},
	}
}
