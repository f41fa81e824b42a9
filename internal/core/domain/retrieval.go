package domain

// ChunkMetadata is the denormalised metadata stored alongside each vector
// entry so queries can be answered without a join back to the document store.
type ChunkMetadata struct {
	DocumentID    string
	ChunkGroupID  string
	Source        string
	Title         string
	Abstract      string
	Keywords      string
	PublishedDate string
}

// RetrievedChunk is one ranked retrieval result.
type RetrievedChunk struct {
	// ID is the chunk ID the vector store returned.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata is the denormalised metadata written at index time.
	Metadata ChunkMetadata

	// Distance is the similarity distance; smaller means more similar.
	Distance float64
}
