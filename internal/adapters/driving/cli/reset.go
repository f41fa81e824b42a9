package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// resetFunc purges both stores. Injected by the composition root.
var resetFunc func(context.Context) error

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every document, chunk and vector",
	Long:  `Purges both stores completely. Requires --force.`,
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "confirm the purge")
	rootCmd.AddCommand(resetCmd)
}

// SetResetFunc injects the purge operation.
func SetResetFunc(f func(context.Context) error) {
	resetFunc = f
}

func runReset(cmd *cobra.Command, _ []string) error {
	if resetFunc == nil {
		return errors.New("reset not configured")
	}
	if !resetForce {
		return errors.New("refusing to purge without --force")
	}

	if err := resetFunc(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("All data deleted.")
	return nil
}
