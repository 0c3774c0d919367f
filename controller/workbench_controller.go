package controller

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github/aiworkbench/rag/models"
	"github/aiworkbench/rag/services"
)

// WorkbenchController exposes the ingestion and query pipeline over
// HTTP. All pipeline errors are converted into user-facing status
// messages here; nothing crashes the serving process.
type WorkbenchController struct {
	ingestService *services.IngestService
	queryService  *services.QueryService
	store         services.DocumentStore
	uploadDir     string
}

func NewWorkbenchController(ingest *services.IngestService, query *services.QueryService,
	store services.DocumentStore, uploadDir string) *WorkbenchController {
	return &WorkbenchController{
		ingestService: ingest,
		queryService:  query,
		store:         store,
		uploadDir:     uploadDir,
	}
}

// Ingest handles POST /api/v1/ingest. The request carries either a PDF
// upload in the "pdf_file" field or a URL in the "source_url" field,
// never both. Uploaded files are staged under the upload dir and
// removed on every exit path.
func (c *WorkbenchController) Ingest(ctx *gin.Context) {
	sourceName, cleanup, err := c.resolveSource(ctx)
	if errors.Is(err, services.ErrNoInput) {
		ctx.JSON(http.StatusBadRequest, models.IngestResponse{
			Error: "No valid input provided. Please upload a PDF or enter a URL.",
		})
		return
	}
	if err != nil {
		log.Printf("CONTROLLER ERROR: Failed to stage upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, models.IngestResponse{
			Error: "Failed to store the uploaded file.",
		})
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := c.ingestService.Ingest(ctx.Request.Context(), sourceName); err != nil {
		status, message := ingestFailure(sourceName, err)
		ctx.JSON(status, models.IngestResponse{Error: message, Source: sourceName})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Message: fmt.Sprintf("Successfully ingested '%s'.", sourceName),
		Source:  sourceName,
	})
}

// resolveSource stages an uploaded PDF or accepts a URL string, and
// returns the canonical source name for the guard plus a cleanup func
// for any staged file.
func (c *WorkbenchController) resolveSource(ctx *gin.Context) (string, func(), error) {
	if file, err := ctx.FormFile("pdf_file"); err == nil && file.Filename != "" {
		staged := filepath.Join(c.uploadDir, filepath.Base(file.Filename))
		if err := ctx.SaveUploadedFile(file, staged); err != nil {
			return "", nil, fmt.Errorf("failed to stage upload: %w", err)
		}
		cleanup := func() {
			if err := os.Remove(staged); err != nil {
				log.Printf("CONTROLLER WARN: could not remove staged upload %s: %v", staged, err)
			}
		}
		return staged, cleanup, nil
	}
	if url := strings.TrimSpace(ctx.PostForm("source_url")); url != "" {
		return url, nil, nil
	}
	return "", nil, services.ErrNoInput
}

// ingestFailure maps pipeline errors onto HTTP statuses and user-facing
// messages. A duplicate is an expected outcome, not an error; anything
// outside the taxonomy is logged for operators and reported generically.
func ingestFailure(sourceName string, err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrDuplicateSource):
		return http.StatusConflict, fmt.Sprintf("'%s' has already been ingested.", sourceName)
	case errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusBadRequest, fmt.Sprintf("'%s' is not a supported source format.", sourceName)
	case errors.Is(err, services.ErrInsecureSource):
		return http.StatusBadRequest, fmt.Sprintf("'%s' is not a secure (https) link.", sourceName)
	case errors.Is(err, services.ErrNoCaptionsAvailable):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Could not ingest '%s': the video likely lacks captions.", sourceName)
	case errors.Is(err, services.ErrTranslationFailure):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Could not ingest '%s': transcript translation failed.", sourceName)
	case errors.Is(err, services.ErrEmptyExtraction):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Could not ingest '%s': no usable text was extracted.", sourceName)
	default:
		log.Printf("CONTROLLER ERROR: Ingestion pipeline failed for '%s': %v", sourceName, err)
		return http.StatusInternalServerError, fmt.Sprintf("An error occurred while ingesting '%s'.", sourceName)
	}
}

// Query handles POST /api/v1/query.
func (c *WorkbenchController) Query(ctx *gin.Context) {
	var req models.QueryTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.QueryResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.queryService.Ask(ctx.Request.Context(), req.Question)
	if err != nil {
		log.Printf("CONTROLLER ERROR: Query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, models.QueryResponse{Error: "Failed to generate an answer."})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health with a liveness ping against the store.
func (c *WorkbenchController) Health(ctx *gin.Context) {
	count, err := c.store.Count(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, models.HealthResponse{
			Status: "unhealthy",
			Detail: fmt.Sprintf("vector store ping failed: %v", err),
		})
		return
	}
	ctx.JSON(http.StatusOK, models.HealthResponse{
		Status: "healthy",
		Detail: fmt.Sprintf("%d records indexed", count),
	})
}
