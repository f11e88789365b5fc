package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"anchor-rag/internal/config"
	"anchor-rag/internal/store"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string            `bun:"id,pk"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     pgvector.Vector   `bun:"embedding,notnull,type:vector"`
	Similarity    float32           `bun:"similarity,scanonly"`
}

// PgVectorStore keeps documents in Postgres with the pgvector extension.
type PgVectorStore struct {
	db         *bun.DB
	vectorSize int
}

var _ store.Store = (*PgVectorStore)(nil)

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the database with bun's pgdriver, or lib/pq when the
// configured driver is "postgres".
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return sql.Open("postgres", cfg.DSN)
	case "pgdriver", "":
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewPgVectorStore connects, then creates the extension and table when absent.
func NewPgVectorStore(ctx context.Context, cfg *config.DatabaseConfig) (*PgVectorStore, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, cfg.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &PgVectorStore{db: db, vectorSize: cfg.VectorSize}, nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *PgVectorStore) Add(ctx context.Context, docs []store.Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]Document, len(docs))
	for i, d := range docs {
		if s.vectorSize > 0 && len(d.Embedding) != s.vectorSize {
			return fmt.Errorf("document %s: embedding has %d dimensions, want %d", d.ID, len(d.Embedding), s.vectorSize)
		}
		rows[i] = newDocument(d)
	}
	_, err := s.db.NewInsert().Model(&rows).On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("metadata = EXCLUDED.metadata").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store documents: %w", err)
	}
	log.Debug().Int("count", len(rows)).Msg("Stored documents")
	return nil
}

// Search orders by cosine distance; similarity is 1 - distance.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]store.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	q := pgvector.NewVector(embedding)

	var rows []Document
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "content", "metadata", "embedding").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", q).
		OrderExpr("embedding <=> ?", q).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	out := make([]store.SearchResult, len(rows))
	for i, r := range rows {
		out[i] = store.SearchResult{Document: r.storeDocument(), Similarity: r.Similarity}
	}
	return out, nil
}

func newDocument(d store.Document) Document {
	return Document{
		ID:        d.ID,
		Content:   d.Content,
		Metadata:  d.Metadata,
		Embedding: pgvector.NewVector(d.Embedding),
	}
}

func (d Document) storeDocument() store.Document {
	return store.Document{
		ID:        d.ID,
		Content:   d.Content,
		Metadata:  d.Metadata,
		Embedding: d.Embedding.Slice(),
	}
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// Reset drops and recreates the documents table.
func (s *PgVectorStore) Reset(ctx context.Context) error {
	if err := DropDocuments(ctx, s.db); err != nil {
		return fmt.Errorf("drop documents: %w", err)
	}
	return InitDB(ctx, s.db)
}

// drop table documents
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}
