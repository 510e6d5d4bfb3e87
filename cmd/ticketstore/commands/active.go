package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/ticketstore/internal/ticketerr"
)

var activeCmd = &cobra.Command{
	Use:   "active [ref]",
	Short: "Get or set the active ticket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		ctx := context.Background()
		if len(args) == 1 {
			return r.SetActive(ctx, args[0])
		}

		t, err := r.GetActive(ctx)
		if ticketerr.Is(err, ticketerr.NotFound) {
			fmt.Println("no active ticket")
			return nil
		}
		if err != nil {
			return err
		}
		printTicketSummary(t)
		return nil
	},
}

var clearActiveCmd = &cobra.Command{
	Use:   "clear-active",
	Short: "Clear the active ticket pointer",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()
		return r.ClearActive(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(clearActiveCmd)
}
