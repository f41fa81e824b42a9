// Package cli implements the ragstore command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	indexerService   driving.Indexer
	retrieverService driving.Retriever
	documentService  driving.DocumentService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "ragstore",
	Short: "Index and retrieve documents with semantic search",
	Long: `ragstore keeps a local knowledge base: documents are split into
chunks, embedded, and stored so they can be retrieved by semantic
similarity. Drop files in, query them back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Indexer   driving.Indexer
	Retriever driving.Retriever
	Documents driving.DocumentService
}

// SetServices injects the services the commands run against.
func SetServices(s Services) {
	indexerService = s.Indexer
	retrieverService = s.Retriever
	documentService = s.Documents
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
