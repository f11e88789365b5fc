package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr           = ":5000"
	defaultChunkSize      = 1000
	defaultChunkOverlap   = 200
	defaultTopK           = 4
	defaultCollectionName = "ResearchV1"
	defaultDBPath         = "./chromemdb"
	defaultVectorSize     = 1536
	defaultEmbedModel     = "text-embedding-3-small"
	defaultInferenceModel = "gpt-4o-mini"
	defaultStore          = StoreChromem
)

// Vector store backends.
const (
	StoreChromem  = "chromem"
	StorePgvector = "pgvector"
)

// LLM providers understood by the embedding and llmservice packages.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

var ErrMissingModel = errors.New("model name is required")

type Config struct {
	Server    ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	EmbedLLM  LLMConfig      `yaml:"embed_llm" envPrefix:"EMBED_"`
	InferLLM  LLMConfig      `yaml:"inference_llm" envPrefix:"INFERENCE_"`
	RAG       RAGConfig      `yaml:"rag" envPrefix:"RAG_"`
	Database  DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	LogLevel  string         `yaml:"log_level" env:"LOG_LEVEL"`
	PrettyLog bool           `yaml:"pretty_log" env:"PRETTY_LOG"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr" env:"ADDR"`
	AllowOrigins []string `yaml:"allow_origins" env:"ALLOW_ORIGINS" envSeparator:","`
}

// LLMConfig describes one model endpoint. Key may carry a "Bearer " prefix.
type LLMConfig struct {
	Provider string `yaml:"provider" env:"PROVIDER"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	Key      string `yaml:"key" env:"KEY"`
	Model    string `yaml:"model" env:"MODEL"`
}

type RAGConfig struct {
	Store          string `yaml:"store" env:"STORE"`
	ChunkSize      int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap   int    `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
	TopK           int    `yaml:"top_k" env:"TOP_K"`
	CollectionName string `yaml:"collection_name" env:"COLLECTION_NAME"`
	DBPath         string `yaml:"db_path" env:"DB_PATH"`
	InMemory       bool   `yaml:"in_memory" env:"IN_MEMORY"`
	EncryptionKey  string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
}

type DatabaseConfig struct {
	// Driver is "pgdriver" (bun's native driver) or "postgres" (lib/pq).
	Driver     string `yaml:"driver" env:"DRIVER"`
	DSN        string `yaml:"dsn" env:"DSN"`
	Password   string `yaml:"password" env:"PASSWORD"`
	VectorSize int    `yaml:"vector_size" env:"VECTOR_SIZE"`
	Debug      bool   `yaml:"debug" env:"DEBUG"`
}

// LoadConfig reads the YAML file at path, then applies .env and process
// environment overrides. A missing file is not an error; defaults and
// environment variables still produce a usable config.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ANCHOR_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.RAG.Store == "" {
		c.RAG.Store = defaultStore
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		c.RAG.ChunkOverlap = min(defaultChunkOverlap, c.RAG.ChunkSize/2)
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.CollectionName == "" {
		c.RAG.CollectionName = defaultCollectionName
	}
	if c.RAG.DBPath == "" {
		c.RAG.DBPath = defaultDBPath
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "pgdriver"
	}
	if c.Database.VectorSize <= 0 {
		c.Database.VectorSize = defaultVectorSize
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = ProviderOpenAI
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = defaultEmbedModel
	}
	if c.InferLLM.Provider == "" {
		c.InferLLM.Provider = ProviderOpenAI
	}
	// answers go through the chat completions API
	if c.InferLLM.Model == "" && c.InferLLM.Provider == ProviderOpenAI {
		c.InferLLM.Model = defaultInferenceModel
	}
	// the inference endpoint falls back to the embedding credentials
	if c.InferLLM.Key == "" {
		c.InferLLM.Key = c.EmbedLLM.Key
	}
	if c.InferLLM.BaseURL == "" && c.InferLLM.Provider == c.EmbedLLM.Provider {
		c.InferLLM.BaseURL = c.EmbedLLM.BaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports configuration that cannot serve queries.
func (c *Config) Validate() error {
	switch c.RAG.Store {
	case StoreChromem:
	case StorePgvector:
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for store %q", c.RAG.Store)
		}
	default:
		return fmt.Errorf("unknown vector store %q", c.RAG.Store)
	}
	for name, llm := range map[string]LLMConfig{"embed_llm": c.EmbedLLM, "inference_llm": c.InferLLM} {
		if llm.Provider != ProviderOpenAI && llm.Provider != ProviderOllama {
			return fmt.Errorf("%s: unknown provider %q", name, llm.Provider)
		}
		if llm.Model == "" && llm.Provider == ProviderOllama {
			return fmt.Errorf("%s: %w", name, ErrMissingModel)
		}
	}
	return nil
}
