package services

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"github/aiworkbench/rag/models"
)

// Chunker splits RawDocuments into bounded, overlapping passages. The
// recursive splitter prefers paragraph and sentence boundaries before
// cutting on raw characters.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split chunks each document in order; chunk order within a document
// follows split order, and every chunk inherits its parent's metadata.
// An empty input yields an empty output.
func (c *Chunker) Split(docs []models.RawDocument) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, doc := range docs {
		parts, err := c.splitter.SplitText(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split document: %w", err)
		}
		for _, part := range parts {
			meta := make(map[string]string, len(doc.Metadata))
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			chunks = append(chunks, models.Chunk{Text: part, Metadata: meta})
		}
	}
	return chunks, nil
}
