package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/logger"
)

var (
	indexCollection   string
	indexTitle        string
	indexSource       string
	indexAbstract     string
	indexAuthors      string
	indexPublisher    string
	indexPublished    string
	indexComments     string
	indexKeywords     string
	indexChunkSize    int
	indexChunkOverlap int
	indexHashOnly     bool
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index a document into a collection",
	Long: `Reads a file, splits it into chunks, embeds them and stores the
document so it can be retrieved. The document id is derived from the file's
text content; indexing the same content into the same collection twice fails
as a duplicate.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexCollection, "collection", "c", "", "target collection (required)")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "document title")
	indexCmd.Flags().StringVar(&indexSource, "source", "", "document source")
	indexCmd.Flags().StringVar(&indexAbstract, "abstract", "", "document abstract")
	indexCmd.Flags().StringVar(&indexAuthors, "authors", "", "document authors")
	indexCmd.Flags().StringVar(&indexPublisher, "publisher", "", "document publisher")
	indexCmd.Flags().StringVar(&indexPublished, "published", "", "publication date (YYYY-MM-DD)")
	indexCmd.Flags().StringVar(&indexComments, "comments", "", "free-form comments")
	indexCmd.Flags().StringVar(&indexKeywords, "keywords", "", "comma-separated keywords")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", 0, "override configured chunk size")
	indexCmd.Flags().IntVar(&indexChunkOverlap, "chunk-overlap", 0, "override configured chunk overlap")
	indexCmd.Flags().BoolVar(&indexHashOnly, "hash-only", false, "compute the document id without indexing")
	_ = indexCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}

	fileName := filepath.Base(path)
	fileType := extractors.NormalizeType(strings.TrimPrefix(filepath.Ext(fileName), "."))
	ctx := cmd.Context()

	if indexHashOnly {
		id, err := indexerService.DocumentHash(ctx, indexCollection, fileName, fileType, data)
		if err != nil {
			return err
		}
		cmd.Println(id)
		return nil
	}

	meta := domain.DocumentMetadata{
		FileName:  fileName,
		Title:     indexTitle,
		Source:    indexSource,
		Abstract:  indexAbstract,
		Authors:   indexAuthors,
		Publisher: indexPublisher,
		Comments:  indexComments,
		Keywords:  indexKeywords,
	}
	if indexPublished != "" {
		// Unparseable dates are dropped, not rejected: the date is display
		// metadata and must never block indexing.
		if published, err := time.Parse("2006-01-02", indexPublished); err == nil {
			meta.PublishedDate = &published
		} else {
			logger.Warn("Ignoring unparseable published date %q", indexPublished)
		}
	}

	req := driving.IndexRequest{
		Collection: indexCollection,
		FileName:   fileName,
		FileType:   fileType,
		Data:       data,
		Metadata:   meta,
		ChunkSize:  indexChunkSize,
	}
	if cmd.Flags().Changed("chunk-overlap") {
		req.ChunkOverlap = &indexChunkOverlap
	}

	id, err := indexerService.IndexDocument(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			return fmt.Errorf("document already indexed in collection %s", indexCollection)
		}
		return err
	}

	cmd.Printf("Indexed %s into %s\n", fileName, indexCollection)
	cmd.Printf("Document id: %s\n", id)
	return nil
}
