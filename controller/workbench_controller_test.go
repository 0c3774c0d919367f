package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/aiworkbench/rag/models"
	"github/aiworkbench/rag/services"
)

type stubStore struct {
	chunks []models.Chunk
}

func (s *stubStore) Upsert(_ context.Context, chunks []models.Chunk, _ [][]float32) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *stubStore) Search(_ context.Context, _ []float32, topK int) ([]models.RetrievedChunk, error) {
	var out []models.RetrievedChunk
	for _, c := range s.chunks {
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

func (s *stubStore) SourceExists(_ context.Context, source string) (bool, error) {
	for _, c := range s.chunks {
		if c.Metadata["source"] == source {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) Count(_ context.Context) (int, error) { return len(s.chunks), nil }

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

type stubCompleter struct{}

func (stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return "stub answer", nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

type stubPDF struct{ pages []string }

func (s stubPDF) ExtractPages(_ string) ([]string, error) { return s.pages, nil }

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, _ string) (string, string, error) {
	return "", "", nil
}

type stubCaptions struct{}

func (stubCaptions) ListTracks(_ context.Context, _ string) ([]services.CaptionTrack, error) {
	return nil, nil
}
func (stubCaptions) FetchTrack(_ context.Context, _ string, _ services.CaptionTrack) (string, error) {
	return "", nil
}
func (stubCaptions) VideoTitle(_ context.Context, _ string) (string, error) { return "", nil }

func newTestRouter(t *testing.T, store *stubStore, pdfPages []string) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	ingest := services.NewIngestService(store, stubEmbedder{}, services.NewChunker(1000, 150),
		stubPDF{pages: pdfPages}, stubFetcher{},
		services.NewTranscriptNormalizer(stubCaptions{}, stubTranslator{}))
	query := services.NewQueryService(store, stubEmbedder{}, stubCompleter{}, 4)
	wc := NewWorkbenchController(ingest, query, store, uploadDir)

	router := gin.New()
	router.GET("/health", wc.Health)
	router.POST("/api/v1/ingest", wc.Ingest)
	router.POST("/api/v1/query", wc.Query)
	return router, uploadDir
}

func multipartPDF(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("pdf_file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Contains(t, resp.Detail, "0 records")
}

func TestIngest_MissingInput(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest",
		strings.NewReader(url.Values{"source_url": {"   "}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_UploadedPDFStagedAndRemoved(t *testing.T) {
	store := &stubStore{}
	router, uploadDir := newTestRouter(t, store, []string{"Hello world. This is a test document."})

	body, contentType := multipartPDF(t, "test.pdf")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.chunks, 1)
	assert.Equal(t, filepath.Join(uploadDir, "test.pdf"), store.chunks[0].Metadata["source"])

	// The staged upload must be gone after the request completes.
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngest_DuplicateIsConflict(t *testing.T) {
	store := &stubStore{}
	router, _ := newTestRouter(t, store, []string{"some text"})

	send := func() *httptest.ResponseRecorder {
		body, contentType := multipartPDF(t, "dup.pdf")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusCreated, send().Code)
	written := len(store.chunks)

	w := send()
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, written, len(store.chunks))
}

func TestIngest_InsecureURL(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest",
		strings.NewReader(url.Values{"source_url": {"http://example.com/doc"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "secure")
}

func TestQuery_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"nope":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuery_EmptyIndexSentinel(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"question":"anything?"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, []string{services.NoRelevantDocuments}, resp.Sources)
}
