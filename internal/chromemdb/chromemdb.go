package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"anchor-rag/internal/store"
)

var ErrNoCollection = errors.New("collection is required")

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

var _ store.Store = (*VectorDBManager)(nil)

const (
	compress = false
)

// NewVectorDBManager opens (or creates) the database and the named collection.
// An in-memory database is not persisted; use Export to save it. It is loaded
// back from that export when one exists under dbPath.
func NewVectorDBManager(dbPath, collectionName string, inMemory bool, encryptionKey string) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	m := &VectorDBManager{
		db:            db,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}
	if _, err := m.GetOrCreateCollection(collectionName); err != nil {
		return nil, err
	}
	if inMemory && m.hasExport() {
		if err := m.Import(context.Background()); err != nil {
			return nil, err
		}
		log.Debug().Str("file", m.filePath).Int("documents", m.collection.Count()).Msg("Loaded exported collection")
	}
	return m, nil
}

func (m *VectorDBManager) hasExport() bool {
	_, err := os.Stat(m.filePath)
	return err == nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// Add stores documents that already carry embeddings.
func (m *VectorDBManager) Add(ctx context.Context, docs []store.Document) error {
	if m.collection == nil {
		return ErrNoCollection
	}
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
		}
	}

	if err := m.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns up to k documents ordered by similarity. chromem-go rejects
// k larger than the collection, so k is clamped.
func (m *VectorDBManager) Search(ctx context.Context, embedding []float32, k int) ([]store.SearchResult, error) {
	if m.collection == nil {
		return nil, ErrNoCollection
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding must be provided")
	}

	k = min(k, m.collection.Count())
	if k <= 0 {
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]store.SearchResult, len(results))
	for i, r := range results {
		out[i] = store.SearchResult{
			Document: store.Document{
				ID:        r.ID,
				Content:   r.Content,
				Metadata:  r.Metadata,
				Embedding: r.Embedding,
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (m *VectorDBManager) Count(context.Context) (int, error) {
	if m.collection == nil {
		return 0, ErrNoCollection
	}
	return m.collection.Count(), nil
}

// Close is a no-op; persistent chromem-go databases write through on every add.
func (m *VectorDBManager) Close() error { return nil }

// delete collection and its export, if any
func (m *VectorDBManager) DeleteCollection() error {
	if m.collection == nil {
		return ErrNoCollection
	}
	if err := m.db.DeleteCollection(m.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	m.collection = nil
	if err := os.Remove(m.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove export: %w", err)
	}
	return nil
}

// Export writes the collection to an encrypted file under the db path.
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.collection == nil {
		return ErrNoCollection
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", m.filePath).
		Bool("compress", m.compress).
		Msg("Exporting collection")

	if err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import loads a collection previously written by Export.
func (m *VectorDBManager) Import(ctx context.Context) error {
	if m.collection == nil {
		return ErrNoCollection
	}
	name := m.collection.Name
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey, name); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	// import replaces the collection object
	_, err := m.GetOrCreateCollection(name)
	return err
}
