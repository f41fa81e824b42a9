package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/watcher"
)

var (
	watchCollection string
	watchDebounceMS int
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a folder and index dropped files",
	Long: `Watches a directory and indexes every file dropped into it.
Removing a file deletes its document again. Duplicates and unsupported file
types are skipped. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCollection, "collection", "c", "inbox", "collection receiving the files")
	watchCmd.Flags().IntVar(&watchDebounceMS, "debounce", 0, "quiet period in milliseconds before indexing a file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexerService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	var opts []watcher.Option
	if watchDebounceMS > 0 {
		opts = append(opts, watcher.WithDebounce(time.Duration(watchDebounceMS)*time.Millisecond))
	}
	w := watcher.New(indexerService, documentService, args[0], watchCollection, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (collection %s). Press Ctrl-C to stop.\n", args[0], watchCollection)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
