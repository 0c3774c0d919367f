package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github/aiworkbench/rag/models"
)

// In-memory test doubles for the capability seams. The fake store keeps
// real records so ingest-then-query round trips can be exercised
// without Chroma.

type fakeStore struct {
	mu      sync.Mutex
	chunks  []models.Chunk
	vectors [][]float32

	upsertErr error
	searchErr error
	existsErr error
}

func (f *fakeStore) Upsert(_ context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, chunks...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, topK int) ([]models.RetrievedChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RetrievedChunk
	for _, c := range f.chunks {
		if len(out) == topK {
			break
		}
		meta := make(map[string]interface{}, len(c.Metadata))
		for k, v := range c.Metadata {
			meta[k] = v
		}
		out = append(out, models.RetrievedChunk{Text: c.Text, Metadata: meta})
	}
	return out, nil
}

func (f *fakeStore) SourceExists(_ context.Context, source string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.chunks {
		if c.Metadata["source"] == source {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks), nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeCompleter struct {
	lastPrompt string
	answer     string
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	if f.answer == "" {
		return "a synthesized answer", nil
	}
	return f.answer, nil
}

type fakeTranslator struct {
	calls    int
	lastLang string
	result   string
	err      error
}

func (f *fakeTranslator) Translate(_ context.Context, _ string, sourceLang string) (string, error) {
	f.calls++
	f.lastLang = sourceLang
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

type fakeCaptionSource struct {
	tracks   []CaptionTrack
	listErr  error
	srtByKey map[string]string // keyed by track code
	title    string
}

func (f *fakeCaptionSource) ListTracks(_ context.Context, _ string) ([]CaptionTrack, error) {
	return f.tracks, f.listErr
}

func (f *fakeCaptionSource) FetchTrack(_ context.Context, _ string, track CaptionTrack) (string, error) {
	srt, ok := f.srtByKey[track.Code]
	if !ok {
		return "", fmt.Errorf("no fixture for track %s", track.Code)
	}
	return srt, nil
}

func (f *fakeCaptionSource) VideoTitle(_ context.Context, _ string) (string, error) {
	if f.title == "" {
		return "", errors.New("no title")
	}
	return f.title, nil
}

type fakePDFExtractor struct {
	pages []string
	calls int
	err   error
}

func (f *fakePDFExtractor) ExtractPages(_ string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

type fakePageFetcher struct {
	title string
	text  string
	calls int
	err   error
}

func (f *fakePageFetcher) Fetch(_ context.Context, _ string) (string, string, error) {
	f.calls++
	return f.title, f.text, f.err
}
