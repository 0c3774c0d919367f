package services

import (
	"context"
	"fmt"
	"log"

	"github/aiworkbench/rag/models"
)

// IngestService runs the full ingestion pipeline for one source:
// duplicate guard, loader dispatch, chunking, embedding and indexing.
type IngestService struct {
	store       DocumentStore
	embedder    Embedder
	chunker     *Chunker
	pdf         PDFExtractor
	pages       PageFetcher
	transcripts *TranscriptNormalizer
}

func NewIngestService(store DocumentStore, embedder Embedder, chunker *Chunker,
	pdf PDFExtractor, pages PageFetcher, transcripts *TranscriptNormalizer) *IngestService {
	return &IngestService{
		store:       store,
		embedder:    embedder,
		chunker:     chunker,
		pdf:         pdf,
		pages:       pages,
		transcripts: transcripts,
	}
}

// Ingest loads, chunks and indexes the source named by sourcePath. The
// duplicate check and the index write are two separate operations, not
// one transaction: two concurrent ingestions of the same source can
// both pass the check and both write.
func (s *IngestService) Ingest(ctx context.Context, sourcePath string) error {
	log.Printf("SERVICE: Checking for existing source: %s", sourcePath)
	exists, err := s.store.SourceExists(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("duplicate check failed for %s: %w", sourcePath, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, sourcePath)
	}

	descriptor := Classify(sourcePath)
	docs, err := s.load(ctx, descriptor)
	if err != nil {
		return err
	}

	chunks, err := s.chunker.Split(docs)
	if err != nil {
		return fmt.Errorf("failed to chunk %s: %w", sourcePath, err)
	}
	log.Printf("SERVICE: Split '%s' into %d chunks.", sourcePath, len(chunks))

	if err := s.Index(ctx, chunks); err != nil {
		return fmt.Errorf("failed to index %s: %w", sourcePath, err)
	}
	log.Printf("SERVICE: Successfully ingested '%s'.", sourcePath)
	return nil
}

func (s *IngestService) load(ctx context.Context, descriptor models.SourceDescriptor) ([]models.RawDocument, error) {
	switch descriptor.Kind {
	case models.SourcePDF:
		return LoadPDF(s.pdf, descriptor.Path)
	case models.SourceYouTube:
		return s.transcripts.LoadYouTube(ctx, descriptor.Path)
	default:
		return LoadWebPage(ctx, s.pages, descriptor.Path)
	}
}

// Index embeds each chunk and commits the records to the store. Empty
// input is a no-op. Batches committed before a failure stay committed.
func (s *IngestService) Index(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		log.Println("SERVICE: Received no chunks to index. Skipping.")
		return nil
	}
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return s.store.Upsert(ctx, chunks, vectors)
}
