package domain

import "time"

// Document is an indexed source document. Its ID is the content hash of the
// extracted text, so identity is a pure function of content: the same bytes
// uploaded twice into one collection are the same document.
type Document struct {
	// ID is the content hash of the extracted text (44-character digest).
	ID string

	// CollectionName scopes the document. The same content may exist in
	// several collections, each as its own row with the same ID.
	CollectionName string

	// FileName is the original file name, kept for display only.
	FileName string

	// FileType is the normalised extension ("txt", "pdf", ...).
	FileType string

	// ByteSize is the size of the original file in bytes.
	ByteSize int64

	// File holds the original raw bytes so chunk groups can be re-derived.
	File []byte

	// Free-text metadata. None of these participate in identity.
	Title         string
	Source        string
	Abstract      string
	Authors       string
	Publisher     string
	PublishedDate *time.Time
	Comments      string
	Keywords      string

	// IsActive marks the document as visible to retrieval.
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// ChunkGroups are the splitting strategies applied to this document.
	ChunkGroups []ChunkGroup
}

// Header returns the lightweight projection of the document: everything
// except the raw file bytes and chunk bodies.
func (d *Document) Header() DocumentHeader {
	groups := make([]ChunkGroup, len(d.ChunkGroups))
	copy(groups, d.ChunkGroups)
	return DocumentHeader{
		ID:             d.ID,
		CollectionName: d.CollectionName,
		FileName:       d.FileName,
		FileType:       d.FileType,
		ByteSize:       d.ByteSize,
		Title:          d.Title,
		Source:         d.Source,
		Abstract:       d.Abstract,
		Authors:        d.Authors,
		Publisher:      d.Publisher,
		PublishedDate:  d.PublishedDate,
		Comments:       d.Comments,
		Keywords:       d.Keywords,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		ChunkGroups:    groups,
	}
}

// DocumentHeader is the document without its raw bytes or chunk contents.
// List and get-header operations return this projection.
type DocumentHeader struct {
	ID             string
	CollectionName string
	FileName       string
	FileType       string
	ByteSize       int64
	Title          string
	Source         string
	Abstract       string
	Authors        string
	Publisher      string
	PublishedDate  *time.Time
	Comments       string
	Keywords       string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ChunkGroups    []ChunkGroup
}

// DocumentMetadata carries the mutable fields of a document for updates.
// Content, ID and collection are immutable after indexing.
type DocumentMetadata struct {
	FileName      string
	Title         string
	Source        string
	Abstract      string
	Authors       string
	Publisher     string
	PublishedDate *time.Time
	Comments      string
	Keywords      string
}

// ChunkGroup records one application of a splitting strategy to a document.
// A document may carry multiple groups; indexing creates exactly one.
type ChunkGroup struct {
	// ID is a generated identifier (not content-derived).
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// SplitAlgo names the splitting strategy (e.g. "fixed_window").
	SplitAlgo string

	// ChunkSize and ChunkOverlap are the parameters the splitter ran with.
	ChunkSize    int
	ChunkOverlap int

	// ChunkCount is the number of chunks the split produced.
	ChunkCount int

	// IsActive mirrors the owning document's active flag.
	IsActive bool
}

// Chunk is one fragment of a document's text, the unit of embedding.
type Chunk struct {
	// ID is a generated identifier used as the vector-store key.
	ID string

	// ChunkGroupID links to the owning ChunkGroup.
	ChunkGroupID string

	// Hash is the content hash of Content. It must always equal the hash
	// recomputed from Content; a mismatch is a fatal integrity error.
	Hash string

	// ByteSize is the length of Content in bytes.
	ByteSize int

	// Content is the chunk text.
	Content string

	// Position is the zero-based index of the chunk within its group's
	// split order.
	Position int

	// IsDuplicate is set when an identical chunk hash already exists in
	// another group. Duplicates are flagged, not rejected.
	IsDuplicate bool

	// IsIndexed is set once the chunk has been embedded into the vector store.
	IsIndexed bool
}

// ChunkInfo is the lightweight chunk descriptor returned by chunk creation,
// letting the indexer proceed without re-reading full content.
type ChunkInfo struct {
	ID          string
	Hash        string
	IsDuplicate bool
	IsIndexed   bool
}

// Fragment is one split piece of a document's text together with the hash
// declared for it at split time. Chunk creation recomputes the hash from
// Text and treats any disagreement as corruption.
type Fragment struct {
	Hash string
	Text string
}
