package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	initName        string
	initDescription string
	initForce       bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new ticket project in --root",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		return r.Initialize(context.Background(), initName, initDescription, initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "project name")
	initCmd.Flags().StringVar(&initDescription, "description", "", "project description")
	initCmd.Flags().BoolVar(&initForce, "force", false, "reinitialize an existing project")
}
