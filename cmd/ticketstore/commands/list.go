package commands

import (
	"context"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jra3/ticketstore/internal/repo"
)

var listIncludeArchived bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		bar := progressbar.Default(-1, "scanning tickets")
		defer bar.Finish()

		tickets, err := r.ListTickets(context.Background(), repo.ListOptions{IncludeArchived: listIncludeArchived})
		if err != nil {
			return err
		}
		bar.Add(len(tickets))

		for _, t := range tickets {
			printTicketSummary(t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listIncludeArchived, "all", false, "include archived tickets")
}
