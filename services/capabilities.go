package services

import (
	"context"

	"github/aiworkbench/rag/models"
)

// The external collaborators of the pipeline, each reduced to the one
// call the pipeline actually makes. Everything heavy (the embedding
// model, the vector store, Gemini, YouTube, the PDF engine) sits behind
// one of these so the pipeline can be tested with doubles.

// Embedder turns text into a vector. Ingestion and querying must use
// the same Embedder instance or retrieval silently degrades.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Translator translates text into English. The call blocks until the
// translation resolves; there is no partial result and no cancellation
// beyond the context.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// Completer synthesizes an answer from a fully formatted prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PDFExtractor returns the text of each page of a local PDF file.
type PDFExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PageFetcher fetches a web page and returns its title and visible text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (title, text string, err error)
}

// CaptionTrack describes one caption track offered by a video.
// Code follows the original convention: auto-generated tracks carry an
// "a." prefix ("a.en"), manual tracks are the bare language code ("en").
type CaptionTrack struct {
	Code string
	Name string
	Auto bool
}

// CaptionSource lists and fetches caption tracks for a video. FetchTrack
// returns line-oriented subtitle text (SRT: sequence numbers, time
// ranges, caption lines).
type CaptionSource interface {
	ListTracks(ctx context.Context, videoURL string) ([]CaptionTrack, error)
	FetchTrack(ctx context.Context, videoURL string, track CaptionTrack) (string, error)
	VideoTitle(ctx context.Context, videoURL string) (string, error)
}

// DocumentStore is the persisted vector collection shared by ingestion
// and querying.
type DocumentStore interface {
	Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]models.RetrievedChunk, error)
	SourceExists(ctx context.Context, source string) (bool, error)
	Count(ctx context.Context) (int, error)
}
