package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github/aiworkbench/rag/models"
)

// NoRelevantDocuments is the sentinel source label returned when
// retrieval finds nothing, so callers can tell "no match" apart from
// "matches found but untitled".
const NoRelevantDocuments = "no relevant documents found"

const answerInstruction = "Answer the question using only the given context. " +
	"If the context is insufficient, say you don't know."

const unknownSourceLabel = "unknown source"

// QueryService is the retrieval-answer assembler: it embeds a question,
// pulls the nearest chunks from the store, and has the completion
// service synthesize an answer grounded in them.
type QueryService struct {
	store     DocumentStore
	embedder  Embedder
	completer Completer
	topK      int
}

func NewQueryService(store DocumentStore, embedder Embedder, completer Completer, topK int) *QueryService {
	return &QueryService{store: store, embedder: embedder, completer: completer, topK: topK}
}

// Ask answers a question from the indexed corpus and attributes the
// retrieved passages. A query against an empty index still produces an
// answer; its source list is the sentinel marker.
func (s *QueryService) Ask(ctx context.Context, question string) (*models.QueryResponse, error) {
	log.Printf("SERVICE: Querying with: '%s'", question)

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	retrieved, err := s.store.Search(ctx, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	log.Printf("SERVICE: Retrieved %d passages", len(retrieved))

	answer, err := s.completer.Complete(ctx, buildPrompt(question, retrieved))
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	return &models.QueryResponse{
		Answer:  answer,
		Sources: sourceLabels(retrieved),
	}, nil
}

func buildPrompt(question string, retrieved []models.RetrievedChunk) string {
	var context strings.Builder
	for i, chunk := range retrieved {
		if i > 0 {
			context.WriteString("\n\n---\n\n")
		}
		context.WriteString(chunk.Text)
	}
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s", answerInstruction, context.String(), question)
}

// sourceLabels derives one human-readable label per retrieved chunk and
// deduplicates them in retrieval order. Title is preferred, then the
// basename of the source path, then a generic placeholder.
func sourceLabels(retrieved []models.RetrievedChunk) []string {
	if len(retrieved) == 0 {
		return []string{NoRelevantDocuments}
	}
	var labels []string
	seen := make(map[string]bool)
	for _, chunk := range retrieved {
		label := chunkLabel(chunk)
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	return labels
}

func chunkLabel(chunk models.RetrievedChunk) string {
	if title, ok := chunk.Metadata["title"].(string); ok && title != "" {
		return title
	}
	if source, ok := chunk.Metadata["source"].(string); ok && source != "" {
		return path.Base(source)
	}
	return unknownSourceLabel
}
