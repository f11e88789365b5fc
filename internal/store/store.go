// Package store defines the vector store contract shared by the chromem-go and
// pgvector backends.
package store

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"anchor-rag/internal/models"
)

// Document is one embedded chunk as persisted in a vector store.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// SearchResult is a stored document with its similarity to the query.
type SearchResult struct {
	Document
	Similarity float32
}

type Store interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, embedding []float32, k int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// FromChunkEmbeddings assigns IDs and metadata to embedded chunks.
func FromChunkEmbeddings(ces []models.ChunkEmbedding) []Document {
	docs := make([]Document, len(ces))
	for i, ce := range ces {
		docs[i] = Document{
			ID:      uuid.NewString(),
			Content: ce.Content,
			Metadata: map[string]string{
				models.MetaSource: ce.SourceFilename,
				models.MetaPage:   strconv.Itoa(ce.PageNumber),
				models.MetaChunk:  strconv.Itoa(ce.ChunkID),
			},
			Embedding: ce.Embedding,
		}
	}
	return docs
}
