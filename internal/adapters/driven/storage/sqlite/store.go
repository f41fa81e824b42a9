package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/hash"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document store. It owns document headers,
// chunk-group metadata and chunk records, and enforces the per-collection
// uniqueness of content hashes.
type Store struct {
	db        *sql.DB
	path      string
	extractor driven.TextExtractor
}

// NewStore creates a SQLite document store under dataDir. If dataDir is
// empty, defaults to ~/.ragstore/data/documents.db. The extractor converts
// stored file bytes back into text for hashing and splitting.
func NewStore(dataDir string, extractor driven.TextExtractor) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragstore", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "documents.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:        db,
		path:      dbPath,
		extractor: extractor,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Indexing Transaction ====================

// CreateDocumentHash extracts text from content, hashes it and probes for a
// duplicate in the collection. Persists nothing.
func (s *Store) CreateDocumentHash(ctx context.Context, collection string, content driven.DocumentContent) (string, error) {
	if len(content.Data) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, content.FileName)
	}

	text, err := s.extractor.Extract(ctx, content.Data, content.FileType)
	if err != nil {
		return "", err
	}
	id := hash.Text(text)

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE id = ? AND collection_name = ? AND is_active = 1
	`, id, collection).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("checking for duplicate: %w", err)
	}
	if count > 0 {
		return "", fmt.Errorf("%w: %s in collection %s", domain.ErrDuplicateDocument, id, collection)
	}

	return id, nil
}

// CreateDocumentHeader persists the document row. Uniqueness is re-checked
// inside the transaction so a race between the hash probe and this call
// still surfaces as a duplicate, not a constraint violation.
func (s *Store) CreateDocumentHeader(
	ctx context.Context, id, collection string, content driven.DocumentContent, meta domain.DocumentMetadata,
) (*domain.Document, error) {
	if len(content.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, content.FileName)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE id = ? AND collection_name = ? AND is_active = 1
	`, id, collection).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s in collection %s", domain.ErrDuplicateDocument, id, collection)
	}

	now := time.Now().UTC()
	fileName := meta.FileName
	if fileName == "" {
		fileName = content.FileName
	}

	doc := &domain.Document{
		ID:             id,
		CollectionName: collection,
		FileName:       fileName,
		FileType:       content.FileType,
		ByteSize:       int64(len(content.Data)),
		File:           content.Data,
		Title:          meta.Title,
		Source:         meta.Source,
		Abstract:       meta.Abstract,
		Authors:        meta.Authors,
		Publisher:      meta.Publisher,
		PublishedDate:  meta.PublishedDate,
		Comments:       meta.Comments,
		Keywords:       meta.Keywords,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (
			id, collection_name, file_name, file_type, byte_size, file,
			title, source, abstract, authors, publisher, published_date,
			comments, keywords, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.CollectionName, doc.FileName, doc.FileType, doc.ByteSize, doc.File,
		doc.Title, doc.Source, doc.Abstract, doc.Authors, doc.Publisher, nullTime(doc.PublishedDate),
		doc.Comments, doc.Keywords, doc.IsActive, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return doc, nil
}

// CreateChunkGroup re-extracts the stored document text, splits it and
// persists the group. Fragments are returned in memory, in split order,
// each carrying its declared content hash.
func (s *Store) CreateChunkGroup(
	ctx context.Context, documentID, collection string, chunkSize, chunkOverlap int, splitter driven.Splitter,
) (*domain.ChunkGroup, []domain.Fragment, error) {
	var file []byte
	var fileType string
	err := s.db.QueryRowContext(ctx, `
		SELECT file, file_type FROM documents
		WHERE id = ? AND collection_name = ?
	`, documentID, collection).Scan(&file, &fileType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return nil, nil, fmt.Errorf("loading document: %w", err)
	}

	text, err := s.extractor.Extract(ctx, file, fileType)
	if err != nil {
		return nil, nil, err
	}

	pieces, err := splitter.Split(text, chunkSize, chunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	fragments := make([]domain.Fragment, len(pieces))
	for i, piece := range pieces {
		fragments[i] = domain.Fragment{Hash: hash.Text(piece), Text: piece}
	}

	group := &domain.ChunkGroup{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		SplitAlgo:    splitter.Name(),
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		ChunkCount:   len(fragments),
		IsActive:     true,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chunk_groups (id, document_id, collection_name, split_algo, chunk_size, chunk_overlap, chunk_count, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, group.ID, group.DocumentID, collection, group.SplitAlgo,
		group.ChunkSize, group.ChunkOverlap, group.ChunkCount, group.IsActive)
	if err != nil {
		return nil, nil, fmt.Errorf("inserting chunk group: %w", err)
	}

	return group, fragments, nil
}

// CreateChunks persists one chunk row per fragment inside a single
// transaction. A recomputed hash that disagrees with the declared one fails
// the whole batch with domain.ErrIntegrityMismatch.
func (s *Store) CreateChunks(ctx context.Context, chunkGroupID string, fragments []domain.Fragment) ([]domain.ChunkInfo, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunk_groups WHERE id = ?", chunkGroupID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking chunk group: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, chunk_group_id, hash, byte_size, content, position, is_duplicate, is_indexed)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	infos := make([]domain.ChunkInfo, 0, len(fragments))
	for i, fragment := range fragments {
		recomputed := hash.Text(fragment.Text)
		if recomputed != fragment.Hash {
			return nil, fmt.Errorf("%w: %s != %s", domain.ErrIntegrityMismatch, recomputed, fragment.Hash)
		}

		// Identical content in another group is flagged, not rejected.
		var dupes int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM chunks WHERE hash = ?", fragment.Hash).Scan(&dupes); err != nil {
			return nil, fmt.Errorf("checking duplicate hash: %w", err)
		}

		info := domain.ChunkInfo{
			ID:          uuid.New().String(),
			Hash:        fragment.Hash,
			IsDuplicate: dupes > 0,
			IsIndexed:   false,
		}

		if _, err := stmt.ExecContext(ctx, info.ID, chunkGroupID, info.Hash,
			len(fragment.Text), fragment.Text, i, info.IsDuplicate); err != nil {
			return nil, fmt.Errorf("inserting chunk: %w", err)
		}
		infos = append(infos, info)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return infos, nil
}

// MarkChunkIndexed records that a chunk has been embedded.
func (s *Store) MarkChunkIndexed(ctx context.Context, chunkID string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE chunks SET is_indexed = 1 WHERE id = ?", chunkID)
	if err != nil {
		return fmt.Errorf("marking chunk indexed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking chunk indexed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	return nil
}

// ==================== Documents ====================

const documentColumns = `id, collection_name, file_name, file_type, byte_size,
	title, source, abstract, authors, publisher, published_date,
	comments, keywords, is_active, created_at, updated_at`

// GetDocument retrieves a full document including its raw bytes and chunk groups.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`, file FROM documents
		WHERE id = ? AND collection_name = ?
	`, id, collection)

	var doc domain.Document
	var published sql.NullTime
	if err := row.Scan(&doc.ID, &doc.CollectionName, &doc.FileName, &doc.FileType, &doc.ByteSize,
		&doc.Title, &doc.Source, &doc.Abstract, &doc.Authors, &doc.Publisher, &published,
		&doc.Comments, &doc.Keywords, &doc.IsActive, &doc.CreatedAt, &doc.UpdatedAt, &doc.File); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if published.Valid {
		doc.PublishedDate = &published.Time
	}

	groups, err := s.listChunkGroups(ctx, id, collection)
	if err != nil {
		return nil, err
	}
	doc.ChunkGroups = groups

	return &doc, nil
}

// GetDocumentHeader retrieves the document projection without raw bytes.
func (s *Store) GetDocumentHeader(ctx context.Context, collection, id string) (*domain.DocumentHeader, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE id = ? AND collection_name = ?
	`, id, collection)

	header, err := scanHeader(row)
	if err != nil {
		return nil, err
	}

	groups, err := s.listChunkGroups(ctx, id, collection)
	if err != nil {
		return nil, err
	}
	header.ChunkGroups = groups

	return header, nil
}

// ListDocumentHeaders lists headers, optionally filtered by collection.
func (s *Store) ListDocumentHeaders(ctx context.Context, collection string) ([]domain.DocumentHeader, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	args := []any{}
	if collection != "" {
		query += " WHERE collection_name = ?"
		args = append(args, collection)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var headers []domain.DocumentHeader //nolint:prealloc // size unknown from query
	for rows.Next() {
		header, err := scanHeaderRows(rows)
		if err != nil {
			return nil, err
		}
		headers = append(headers, *header)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return headers, nil
}

// UpdateDocument updates metadata fields only. Content and id never change.
func (s *Store) UpdateDocument(
	ctx context.Context, collection, id string, meta domain.DocumentMetadata,
) (*domain.DocumentHeader, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET
			file_name = ?, title = ?, source = ?, abstract = ?, authors = ?,
			publisher = ?, published_date = ?, comments = ?, keywords = ?, updated_at = ?
		WHERE id = ? AND collection_name = ?
	`, meta.FileName, meta.Title, meta.Source, meta.Abstract, meta.Authors,
		meta.Publisher, nullTime(meta.PublishedDate), meta.Comments, meta.Keywords,
		time.Now().UTC(), id, collection)
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	return s.GetDocumentHeader(ctx, collection, id)
}

// DeleteDocument removes the document and cascades to its chunk groups and
// chunks inside one transaction.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE id = ? AND collection_name = ?",
		id, collection).Scan(&count); err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks WHERE chunk_group_id IN (
			SELECT id FROM chunk_groups WHERE document_id = ? AND collection_name = ?
		)
	`, id, collection); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunk_groups WHERE document_id = ? AND collection_name = ?", id, collection); err != nil {
		return fmt.Errorf("deleting chunk groups: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND collection_name = ?", id, collection); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteCollection removes every document in the collection, cascading.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks WHERE chunk_group_id IN (
			SELECT id FROM chunk_groups WHERE collection_name = ?
		)
	`, collection); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunk_groups WHERE collection_name = ?", collection); err != nil {
		return fmt.Errorf("deleting chunk groups: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE collection_name = ?", collection); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Chunk Groups ====================

// GetChunkGroup retrieves a chunk group by id.
func (s *Store) GetChunkGroup(ctx context.Context, chunkGroupID string) (*domain.ChunkGroup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, split_algo, chunk_size, chunk_overlap, chunk_count, is_active
		FROM chunk_groups WHERE id = ?
	`, chunkGroupID)

	var group domain.ChunkGroup
	if err := row.Scan(&group.ID, &group.DocumentID, &group.SplitAlgo,
		&group.ChunkSize, &group.ChunkOverlap, &group.ChunkCount, &group.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
		}
		return nil, fmt.Errorf("scanning chunk group: %w", err)
	}
	return &group, nil
}

// DeleteChunkGroup removes the group and its chunks.
func (s *Store) DeleteChunkGroup(ctx context.Context, chunkGroupID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunk_groups WHERE id = ?", chunkGroupID).Scan(&count); err != nil {
		return fmt.Errorf("checking chunk group: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE chunk_group_id = ?", chunkGroupID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunk_groups WHERE id = ?", chunkGroupID); err != nil {
		return fmt.Errorf("deleting chunk group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// listChunkGroups returns a document's chunk groups.
func (s *Store) listChunkGroups(ctx context.Context, documentID, collection string) ([]domain.ChunkGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, split_algo, chunk_size, chunk_overlap, chunk_count, is_active
		FROM chunk_groups WHERE document_id = ? AND collection_name = ?
	`, documentID, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunk groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.ChunkGroup //nolint:prealloc // size unknown from query
	for rows.Next() {
		var group domain.ChunkGroup
		if err := rows.Scan(&group.ID, &group.DocumentID, &group.SplitAlgo,
			&group.ChunkSize, &group.ChunkOverlap, &group.ChunkCount, &group.IsActive); err != nil {
			return nil, fmt.Errorf("scanning chunk group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk groups: %w", err)
	}
	return groups, nil
}

// ==================== Chunks ====================

// GetChunk retrieves a chunk with its content.
func (s *Store) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, chunk_group_id, hash, byte_size, content, position, is_duplicate, is_indexed
		FROM chunks WHERE id = ?
	`, chunkID)

	chunk, err := scanChunkRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
		}
		return nil, err
	}
	return chunk, nil
}

// ListChunksByDocument returns all chunks of a document in split order.
func (s *Store) ListChunksByDocument(ctx context.Context, collection, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.chunk_group_id, c.hash, c.byte_size, c.content, c.position, c.is_duplicate, c.is_indexed
		FROM chunks c
		JOIN chunk_groups g ON g.id = c.chunk_group_id
		WHERE g.document_id = ? AND g.collection_name = ?
		ORDER BY c.position
	`, documentID, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.ChunkGroupID, &chunk.Hash, &chunk.ByteSize,
			&chunk.Content, &chunk.Position, &chunk.IsDuplicate, &chunk.IsIndexed); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteChunk removes a single chunk row.
func (s *Store) DeleteChunk(ctx context.Context, chunkID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", chunkID)
	if err != nil {
		return fmt.Errorf("deleting chunk: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting chunk: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	return nil
}

// CollectionChunkCount counts the chunks stored for a collection.
func (s *Store) CollectionChunkCount(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks c
		JOIN chunk_groups g ON g.id = c.chunk_group_id
		WHERE g.collection_name = ?
	`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Reset drops all data from the store.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"chunks", "chunk_groups", "documents"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// ==================== Helper Functions ====================

// nullTime converts an optional time into its nullable SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// scanHeader scans a document header from *sql.Row.
func scanHeader(row *sql.Row) (*domain.DocumentHeader, error) {
	var header domain.DocumentHeader
	var published sql.NullTime
	if err := row.Scan(&header.ID, &header.CollectionName, &header.FileName, &header.FileType,
		&header.ByteSize, &header.Title, &header.Source, &header.Abstract, &header.Authors,
		&header.Publisher, &published, &header.Comments, &header.Keywords,
		&header.IsActive, &header.CreatedAt, &header.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document header: %w", err)
	}
	if published.Valid {
		header.PublishedDate = &published.Time
	}
	return &header, nil
}

// scanHeaderRows scans a document header from *sql.Rows.
func scanHeaderRows(rows *sql.Rows) (*domain.DocumentHeader, error) {
	var header domain.DocumentHeader
	var published sql.NullTime
	if err := rows.Scan(&header.ID, &header.CollectionName, &header.FileName, &header.FileType,
		&header.ByteSize, &header.Title, &header.Source, &header.Abstract, &header.Authors,
		&header.Publisher, &published, &header.Comments, &header.Keywords,
		&header.IsActive, &header.CreatedAt, &header.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document header: %w", err)
	}
	if published.Valid {
		header.PublishedDate = &published.Time
	}
	return &header, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	if err := row.Scan(&chunk.ID, &chunk.ChunkGroupID, &chunk.Hash, &chunk.ByteSize,
		&chunk.Content, &chunk.Position, &chunk.IsDuplicate, &chunk.IsIndexed); err != nil {
		return nil, err
	}
	return &chunk, nil
}
