package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

var (
	retrieveCollection string
	retrieveTopK       int
	retrieveJSON       bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve chunks by semantic similarity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveCollection, "collection", "c", "", "collection to query (required)")
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of chunks to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	_ = retrieveCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	results, err := retrieverService.Retrieve(cmd.Context(), retrieveCollection, args[0], retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return printRetrieved(cmd, results)
}

func printRetrieved(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, chunk := range results {
		cmd.Printf("  [%d] distance %.4f\n", i+1, chunk.Distance)
		if chunk.Metadata.Title != "" {
			cmd.Printf("      Title: %s\n", chunk.Metadata.Title)
		}
		if chunk.Metadata.Source != "" {
			cmd.Printf("      Source: %s\n", chunk.Metadata.Source)
		}
		cmd.Printf("      %s\n", chunk.Content)
		cmd.Println()
	}
	return nil
}
