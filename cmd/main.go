package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"anchor-rag/internal/chromemdb"
	"anchor-rag/internal/config"
	"anchor-rag/internal/db"
	"anchor-rag/internal/embedding"
	"anchor-rag/internal/formcontroller"
	"anchor-rag/internal/helper"
	"anchor-rag/internal/llmservice"
	"anchor-rag/internal/logging"
	"anchor-rag/internal/parser"
	"anchor-rag/internal/rag"
	"anchor-rag/internal/server"
	"anchor-rag/internal/store"
)

const (
	defaultConfigFilePath = "./configs/config.yaml"
	defaultEndpoint       = "http://localhost:5000"
)

func main() {
	configPath := flag.String("config", defaultConfigFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	dryRun := flag.Bool("dry-run", false, "Parse only, do not embed or store")
	query := flag.String("query", "", "Answer a query locally and exit")
	ask := flag.String("ask", "", "Submit a prompt to a running server")
	endpoint := flag.String("endpoint", defaultEndpoint, "Server base URL used by -ask")
	expand := flag.Bool("expand", false, "Print source documents with -ask")
	export := flag.Bool("export", false, "Export the chromem collection to an encrypted file")
	reset := flag.Bool("reset", false, "Delete every stored document")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.PrettyLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	modes := 0
	for _, set := range []bool{*filePath != "", *query != "", *ask != "", *export, *reset} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		log.Fatal().Msg("Please provide only one of -file, -query, -ask, -export or -reset")
	}

	// -ask only talks to a server; it needs no local models or store
	if *ask != "" {
		code := askServer(ctx, *endpoint, *ask, *expand)
		stop()
		os.Exit(code)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	log.Debug().Str("store", cfg.RAG.Store).Str("collection", cfg.RAG.CollectionName).Msg("Loaded config")

	switch {
	case *export:
		err = exportCollection(ctx, cfg)
	case *reset:
		err = resetStore(ctx, cfg)
	case *filePath != "":
		err = ingestFile(ctx, cfg, *filePath, *dryRun)
	case *query != "":
		err = answerQuery(ctx, cfg, *query)
	default:
		err = serve(ctx, cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.RAG.Store {
	case config.StorePgvector:
		return db.NewPgVectorStore(ctx, &cfg.Database)
	default:
		if !cfg.RAG.InMemory {
			if err := helper.CreateFolder(cfg.RAG.DBPath); err != nil {
				return nil, err
			}
		}
		return chromemdb.NewVectorDBManager(cfg.RAG.DBPath, cfg.RAG.CollectionName, cfg.RAG.InMemory, cfg.RAG.EncryptionKey)
	}
}

func newRAG(ctx context.Context, cfg *config.Config) (*rag.RAG, store.Store, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open vector store: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("initialize embedder: %w", err)
	}

	llm, err := llmservice.NewModel(&cfg.InferLLM)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("initialize llm: %w", err)
	}

	return rag.NewRAG(st, embedder, llm, cfg.RAG.TopK), st, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	r, st, err := newRAG(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if n, err := st.Count(ctx); err == nil {
		log.Info().Int("documents", n).Msg("Vector store ready")
	}

	return server.New(r, cfg.Server).ListenAndServe(ctx)
}

func ingestFile(ctx context.Context, cfg *config.Config, filePath string, dryRun bool) error {
	p := parser.New(&cfg.RAG)

	if dryRun {
		chunks, err := p.ParseFile(filePath)
		if err != nil {
			return err
		}
		if err := helper.PrettyPrint(os.Stdout, chunks); err != nil {
			return err
		}
		log.Info().Int("chunks", len(chunks)).Msg("Dry run, nothing stored")
		return nil
	}

	r, st, err := newRAG(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := r.IngestFile(ctx, p, filePath, false)
	if err != nil {
		return err
	}
	log.Info().Str("file", filePath).Int("documents", n).Msg("Ingested")

	if m, ok := st.(*chromemdb.VectorDBManager); ok && cfg.RAG.InMemory {
		return m.Export(ctx)
	}
	return nil
}

func answerQuery(ctx context.Context, cfg *config.Config, query string) error {
	r, st, err := newRAG(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	response, err := r.Query(ctx, query)
	if err != nil {
		return err
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for i, s := range response.Sources {
		fmt.Printf("[%d] %s (page %s, similarity %.3f)\n", i+1, s.Metadata["source"], s.Metadata["page"], s.Similarity)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
	return nil
}

func exportCollection(ctx context.Context, cfg *config.Config) error {
	if cfg.RAG.Store != config.StoreChromem {
		return fmt.Errorf("export is only supported for the %s store", config.StoreChromem)
	}
	m, err := chromemdb.NewVectorDBManager(cfg.RAG.DBPath, cfg.RAG.CollectionName, false, cfg.RAG.EncryptionKey)
	if err != nil {
		return err
	}
	return m.Export(ctx)
}

func resetStore(ctx context.Context, cfg *config.Config) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	switch s := st.(type) {
	case *chromemdb.VectorDBManager:
		err = s.DeleteCollection()
	case *db.PgVectorStore:
		err = s.Reset(ctx)
	}
	if err != nil {
		return err
	}
	log.Info().Str("store", cfg.RAG.Store).Msg("Vector store reset")
	return nil
}

// askServer drives the query form controller against a running server and
// prints the rendered result. The exit code is non-zero on failure.
func askServer(ctx context.Context, endpoint, prompt string, expand bool) int {
	page := formcontroller.NewTerminalPage(os.Stdout, prompt, expand)
	ctrl, err := formcontroller.New(page.Elements(), formcontroller.NewHTTPClient(endpoint))
	if err != nil {
		log.Error().Err(err).Msg("Error creating form controller")
		return 1
	}

	_, err = ctrl.Submit(ctx)
	var appErr *formcontroller.ApplicationError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &appErr):
		return 2
	default:
		return 1
	}
}
