package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a single ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		t, err := r.LoadTicket(context.Background(), args[0])
		if err != nil {
			return err
		}

		printTicketSummary(t)
		fmt.Println(t.Description)
		if t.StartedAt != nil {
			fmt.Printf("started: %s\n", humanize.Time(*t.StartedAt))
		}
		if t.ClosedAt != nil {
			fmt.Printf("closed: %s\n", humanize.Time(*t.ClosedAt))
		}
		if t.Assignee != "" {
			fmt.Printf("assignee: %s\n", t.Assignee)
		}
		if len(t.Tags) > 0 {
			fmt.Printf("tags: %v\n", t.Tags)
		}
		for _, task := range t.Tasks {
			mark := " "
			if task.Done {
				mark = "x"
			}
			fmt.Printf("  [%s] %s (%s)\n", mark, task.Title, task.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
