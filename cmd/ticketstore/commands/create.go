package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/ticketstore/internal/ticket"
)

var (
	createTitle       string
	createDescription string
	createPriority    string
	createTags        []string
	createAssignee    string
	createStart       bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new ticket",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		priority := ticket.Priority(createPriority)
		if priority == "" {
			priority = ticket.PriorityMedium
		}
		if !priority.Valid() {
			return fmt.Errorf("invalid priority %q", createPriority)
		}

		t, err := r.CreateTicket(context.Background(), ticket.Draft{
			SlugBase:    createTitle,
			Title:       createTitle,
			Description: createDescription,
			Priority:    priority,
			Tags:        createTags,
			Assignee:    createAssignee,
			Start:       createStart,
		})
		if err != nil {
			return err
		}

		printTicketSummary(t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createTitle, "title", "", "ticket title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "ticket description")
	createCmd.Flags().StringVar(&createPriority, "priority", "", "low|medium|high|critical")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "tag (repeatable)")
	createCmd.Flags().StringVar(&createAssignee, "assignee", "", "assignee")
	createCmd.Flags().BoolVar(&createStart, "start", false, "create already in progress")
	createCmd.MarkFlagRequired("title")
}
