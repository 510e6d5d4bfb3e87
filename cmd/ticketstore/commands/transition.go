package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jra3/ticketstore/internal/ticket"
)

func transitionCmd(use, short string, to ticket.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ref>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			t, err := r.Transition(context.Background(), args[0], to)
			if err != nil {
				return err
			}
			printTicketSummary(t)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(transitionCmd("start", "Move a ticket to in-progress", ticket.StatusDoing))
	rootCmd.AddCommand(transitionCmd("block", "Mark a ticket blocked", ticket.StatusBlocked))
	rootCmd.AddCommand(transitionCmd("review", "Move a ticket to review", ticket.StatusReview))
	rootCmd.AddCommand(transitionCmd("done", "Mark a ticket done", ticket.StatusDone))
	rootCmd.AddCommand(transitionCmd("reopen", "Move a done or blocked ticket back to in-progress", ticket.StatusDoing))
}
