package models

const (
	ThinkTag         = `(?s)<think>.*?</think>`
	ContextSeparator = "\n\n"

	MetaSource = "source"
	MetaPage   = "page"
	MetaChunk  = "chunk"
)

var (
	QAPromptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
`
)
