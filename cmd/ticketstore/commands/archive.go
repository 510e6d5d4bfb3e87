package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <ref>",
	Short: "Archive a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()
		return r.ArchiveTicket(context.Background(), args[0])
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <ref>",
	Short: "Restore an archived ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()
		return r.UnarchiveTicket(context.Background(), args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Permanently delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()
		return r.DeleteTicket(context.Background(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
	rootCmd.AddCommand(deleteCmd)
}
