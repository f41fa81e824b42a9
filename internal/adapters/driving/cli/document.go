package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, view, update, or delete indexed documents and their chunks.`,
}

var documentListCollection string

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [collection] [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentGet,
}

var (
	updateTitle    string
	updateSource   string
	updateAbstract string
	updateKeywords string
)

var documentUpdateCmd = &cobra.Command{
	Use:   "update [collection] [doc-id]",
	Short: "Update document metadata",
	Long:  `Updates metadata fields only. Content and document id never change.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentUpdate,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [collection] [doc-id]",
	Short: "Delete a document from both stores",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentDelete,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [collection] [doc-id]",
	Short: "List a document's chunks in split order",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentChunks,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentListCollection, "collection", "c", "", "filter by collection")
	documentUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	documentUpdateCmd.Flags().StringVar(&updateSource, "source", "", "new source")
	documentUpdateCmd.Flags().StringVar(&updateAbstract, "abstract", "", "new abstract")
	documentUpdateCmd.Flags().StringVar(&updateKeywords, "keywords", "", "new comma-separated keywords")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentUpdateCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentChunksCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	headers, err := documentService.ListDocumentHeaders(cmd.Context(), documentListCollection)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(headers) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range headers {
		cmd.Printf("  %s\n", headers[i].ID)
		cmd.Printf("    Collection: %s\n", headers[i].CollectionName)
		cmd.Printf("    File:       %s (%s, %d bytes)\n", headers[i].FileName, headers[i].FileType, headers[i].ByteSize)
		if headers[i].Title != "" {
			cmd.Printf("    Title:      %s\n", headers[i].Title)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(headers))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	header, err := documentService.GetDocumentHeader(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	printHeader(cmd, header)
	return nil
}

func printHeader(cmd *cobra.Command, header *domain.DocumentHeader) {
	cmd.Printf("Document: %s\n\n", header.ID)
	cmd.Printf("  Collection: %s\n", header.CollectionName)
	cmd.Printf("  File:       %s (%s, %d bytes)\n", header.FileName, header.FileType, header.ByteSize)
	if header.Title != "" {
		cmd.Printf("  Title:      %s\n", header.Title)
	}
	if header.Source != "" {
		cmd.Printf("  Source:     %s\n", header.Source)
	}
	if header.Authors != "" {
		cmd.Printf("  Authors:    %s\n", header.Authors)
	}
	if header.Keywords != "" {
		cmd.Printf("  Keywords:   %s\n", header.Keywords)
	}
	cmd.Printf("  Created:    %s\n", header.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:    %s\n", header.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, group := range header.ChunkGroups {
		cmd.Printf("\n  Chunk group %s\n", group.ID)
		cmd.Printf("    Algorithm: %s (size %d, overlap %d)\n", group.SplitAlgo, group.ChunkSize, group.ChunkOverlap)
		cmd.Printf("    Chunks:    %d\n", group.ChunkCount)
	}
}

func runDocumentUpdate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	collection, id := args[0], args[1]
	ctx := cmd.Context()

	// Start from the current metadata so unset flags keep their values.
	current, err := documentService.GetDocumentHeader(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	meta := domain.DocumentMetadata{
		FileName:      current.FileName,
		Title:         current.Title,
		Source:        current.Source,
		Abstract:      current.Abstract,
		Authors:       current.Authors,
		Publisher:     current.Publisher,
		PublishedDate: current.PublishedDate,
		Comments:      current.Comments,
		Keywords:      current.Keywords,
	}
	if cmd.Flags().Changed("title") {
		meta.Title = updateTitle
	}
	if cmd.Flags().Changed("source") {
		meta.Source = updateSource
	}
	if cmd.Flags().Changed("abstract") {
		meta.Abstract = updateAbstract
	}
	if cmd.Flags().Changed("keywords") {
		meta.Keywords = updateKeywords
	}

	header, err := documentService.UpdateDocument(ctx, collection, id, meta)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	cmd.Printf("Updated document %s.\n", header.ID)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.DeleteDocument(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s from collection %s.\n", args[1], args[0])
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.ListChunksByDocument(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	for _, chunk := range chunks {
		flags := ""
		if chunk.IsDuplicate {
			flags += " duplicate"
		}
		if chunk.IsIndexed {
			flags += " indexed"
		}
		cmd.Printf("  [%d] %s (%d bytes)%s\n", chunk.Position, chunk.ID, chunk.ByteSize, flags)
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}
