package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"github/aiworkbench/rag/models"
)

// ChromaStore implements DocumentStore on a ChromaDB v2 collection.
type ChromaStore struct {
	collection chromago.Collection
	batchSize  int
}

func NewChromaStore(collection chromago.Collection, batchSize int) *ChromaStore {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ChromaStore{collection: collection, batchSize: batchSize}
}

// Upsert writes chunk/vector pairs in batches. Batches already written
// stay written if a later batch fails; there is no rollback.
func (s *ChromaStore) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.addBatch(ctx, chunks[start:end], vectors[start:end]); err != nil {
			return fmt.Errorf("failed to add batch starting at chunk %d: %w", start, err)
		}
	}
	return nil
}

func (s *ChromaStore) addBatch(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	ids := make([]chromago.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	embs := make([]embeddings.Embedding, len(chunks))
	metas := make([]chromago.DocumentMetadata, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chromago.DocumentID(uuid.New().String())
		texts[i] = chunk.Text
		embs[i] = embeddings.NewEmbeddingFromFloat32(vectors[i])

		attrs := make([]*chromago.MetaAttribute, 0, len(chunk.Metadata))
		for k, v := range chunk.Metadata {
			attrs = append(attrs, chromago.NewStringAttribute(k, v))
		}
		metas[i] = chromago.NewDocumentMetadata(attrs...)
	}

	return s.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
}

// Search returns the topK nearest chunks in similarity order.
func (s *ChromaStore) Search(ctx context.Context, vector []float32, topK int) ([]models.RetrievedChunk, error) {
	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var retrieved []models.RetrievedChunk
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return retrieved, nil
	}
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		var meta map[string]interface{}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			meta = decodeMetadata(metadataGroups[0][i])
		}
		retrieved = append(retrieved, models.RetrievedChunk{
			Text:     doc.ContentString(),
			Metadata: meta,
		})
	}
	return retrieved, nil
}

// SourceExists reports whether any record in the collection carries the
// exact source value in its metadata. The first match wins; no
// normalization of the input is performed.
func (s *ChromaStore) SourceExists(ctx context.Context, source string) (bool, error) {
	results, err := s.collection.Get(ctx,
		chromago.WithWhereGet(chromago.EqString("source", source)),
		chromago.WithLimitGet(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing source: %w", err)
	}
	return len(results.GetIDs()) > 0, nil
}

// Count returns the number of records in the collection.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// The DocumentMetadata type exposes no accessor for the full value set;
// round-tripping through JSON is the supported way to get a plain map.
func decodeMetadata(meta chromago.DocumentMetadata) map[string]interface{} {
	if meta == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		log.Printf("STORE WARN: could not marshal metadata: %v", err)
		return map[string]interface{}{}
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Printf("STORE WARN: could not unmarshal metadata: %v", err)
		return map[string]interface{}{}
	}
	return metaMap
}
