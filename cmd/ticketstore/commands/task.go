package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var taskDoneCmd = &cobra.Command{
	Use:   "task-done <ref> <task-id>",
	Short: "Mark a subtask done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		t, err := r.SetTaskDone(context.Background(), args[0], args[1], true)
		if err != nil {
			return err
		}
		printTicketSummary(t)
		return nil
	},
}

var taskUndoCmd = &cobra.Command{
	Use:   "task-undo <ref> <task-id>",
	Short: "Mark a subtask not done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		t, err := r.SetTaskDone(context.Background(), args[0], args[1], false)
		if err != nil {
			return err
		}
		printTicketSummary(t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taskDoneCmd)
	rootCmd.AddCommand(taskUndoCmd)
}
