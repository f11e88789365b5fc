package rag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"anchor-rag/internal/embedding"
	"anchor-rag/internal/llmservice"
	"anchor-rag/internal/models"
	"anchor-rag/internal/parser"
	"anchor-rag/internal/sanitize"
	"anchor-rag/internal/store"
)

const defaultTopK = 4

var ErrEmptyQuestion = errors.New("prompt must not be empty")

var thinkRe = regexp.MustCompile(models.ThinkTag)

// Querier answers a question with retrieved context.
type Querier interface {
	Query(ctx context.Context, question string) (*models.Answer, error)
}

type RAG struct {
	store    store.Store
	embedder embeddings.Embedder
	llm      llms.Model
	topK     int
}

var _ Querier = (*RAG)(nil)

func NewRAG(s store.Store, embedder embeddings.Embedder, llm llms.Model, topK int) *RAG {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RAG{store: s, embedder: embedder, llm: llm, topK: topK}
}

// Query embeds the question, retrieves the top-k chunks, and asks the LLM to
// answer from them. Sources keep retrieval order and carry sanitized HTML.
func (r *RAG) Query(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := r.store.Search(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("query", question).Int("documents", len(docs)).Msg("Retrieved context")

	prompt := BuildPrompt(question, docs)
	answer, err := llmservice.Complete(ctx, r.llm, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]models.SourceDocument, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, models.SourceDocument{
			ID:         d.ID,
			Content:    sanitize.HTML(d.Content),
			Metadata:   d.Metadata,
			Similarity: d.Similarity,
		})
	}

	return &models.Answer{
		Query:   question,
		Content: CleanAnswer(answer),
		Sources: sources,
	}, nil
}

// BuildPrompt fills the question-answering template with the plain text of
// the retrieved documents.
func BuildPrompt(question string, docs []store.SearchResult) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if text := sanitize.Text(d.Content); text != "" {
			parts = append(parts, text)
		}
	}
	return fmt.Sprintf(models.QAPromptTemplate, strings.Join(parts, models.ContextSeparator), question)
}

// CleanAnswer drops reasoning blocks some models emit before the answer.
func CleanAnswer(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

// IngestFile parses, embeds and stores one document. With dryRun the chunks
// are produced but nothing is embedded or stored.
func (r *RAG) IngestFile(ctx context.Context, p parser.Parser, filePath string, dryRun bool) (int, error) {
	chunks, err := p.ParseFile(filePath)
	if err != nil {
		return 0, err
	}
	log.Info().Str("file", filePath).Int("chunks", len(chunks)).Msg("Parsed document")
	if dryRun || len(chunks) == 0 {
		return len(chunks), nil
	}

	chunkEmbeddings, err := embedding.GenerateEmbedding(ctx, r.embedder, filePath, chunks)
	if err != nil {
		return 0, err
	}

	docs := store.FromChunkEmbeddings(chunkEmbeddings)
	if err := r.store.Add(ctx, docs); err != nil {
		return 0, err
	}
	log.Info().Str("file", filePath).Int("documents", len(docs)).Msg("Stored document chunks")
	return len(docs), nil
}
