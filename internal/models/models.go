package models

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// ChunkEmbedding is a chunk with its vector and originating file.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// SourceDocument is a retrieved chunk as shown to the user. Content is HTML.
type SourceDocument struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float32           `json:"similarity"`
}

// Answer is the outcome of one retrieval-augmented query.
type Answer struct {
	Query   string
	Content string
	Sources []SourceDocument
}

// SourceContents returns the HTML content of each source in retrieval order.
func (a *Answer) SourceContents() []string {
	out := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		out = append(out, s.Content)
	}
	return out
}
