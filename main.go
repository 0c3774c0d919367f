package main

import (
	"context"
	"log"
	"net/http"
	"os"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github/aiworkbench/rag/config"
	"github/aiworkbench/rag/controller"
	"github/aiworkbench/rag/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.Collection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	// Without a Gemini key the server still ingests and retrieves;
	// synthesis and translation fail per call instead of at startup.
	var completer services.Completer
	var translator services.Translator
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set. Answer synthesis and translation will fail until it is provided.")
		unavailable := services.NewUnavailableGeminiService("GEMINI_API_KEY is not set")
		completer, translator = unavailable, unavailable
	} else {
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
		}
		log.Println("Successfully connected to Google Gemini.")
		gemini := services.NewGeminiService(geminiClient, cfg.GenModel)
		completer, translator = gemini, gemini
	}

	// Long-lived handles, constructed once and shared by all requests.
	store := services.NewChromaStore(collection, cfg.BatchSize)
	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbedModel)
	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	pdfExtractor := services.NewUniPDFExtractor(cfg.UnidocLicenseKey)
	pageFetcher := services.NewHTTPPageFetcher(httpClient)
	captions := services.NewYouTubeCaptionClient(httpClient)
	transcripts := services.NewTranscriptNormalizer(captions, translator)

	ingestService := services.NewIngestService(store, embedder, chunker, pdfExtractor, pageFetcher, transcripts)
	queryService := services.NewQueryService(store, embedder, completer, cfg.TopK)
	workbenchController := controller.NewWorkbenchController(ingestService, queryService, store, cfg.UploadDir)

	if cfg.WatchDir != "" {
		watcher := services.NewDropFolderWatcher(ingestService)
		go watcher.Watch(context.Background(), cfg.WatchDir)
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", workbenchController.Health)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ingest", workbenchController.Ingest)
		apiV1.POST("/query", workbenchController.Query)
	}

	log.Printf("Workbench server starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// getOrCreateCollection fetches the named collection, creating it on
// first run.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "document workbench collection"),
				chromago.NewStringAttribute("created_by", "workbench_server"),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
