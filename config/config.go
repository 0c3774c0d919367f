package config

import (
	"errors"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the pipeline needs: service endpoints and
// credentials come from the environment, tunables from an optional
// config.yaml with documented defaults.
type Config struct {
	Port       string `yaml:"port"`
	ChromaURL  string `yaml:"chroma_url"`
	Collection string `yaml:"collection"`

	OllamaURL  string `yaml:"ollama_url"`
	EmbedModel string `yaml:"embed_model"`
	GenModel   string `yaml:"gen_model"`

	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
	BatchSize    int `yaml:"batch_size"`

	UploadDir   string `yaml:"upload_dir"`
	WatchDir    string `yaml:"watch_dir"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	// Environment-only secrets, never read from YAML.
	GeminiAPIKey     string `yaml:"-"`
	UnidocLicenseKey string `yaml:"-"`
}

// Load reads the optional YAML config from path, fills defaults, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	warnMissingCredentials(cfg)
	return cfg, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func defaultConfig() *Config {
	return &Config{
		Port:         "8080",
		ChromaURL:    "http://localhost:8000",
		Collection:   "documents",
		OllamaURL:    "http://localhost:11434",
		EmbedModel:   "nomic-embed-text:v1.5",
		GenModel:     "gemini-2.5-flash",
		ChunkSize:    1000,
		ChunkOverlap: 150,
		TopK:         4,
		BatchSize:    50,
		UploadDir:    "uploads",
		TimeoutSecs:  30,
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.ChromaURL == "" {
		cfg.ChromaURL = def.ChromaURL
	}
	if cfg.Collection == "" {
		cfg.Collection = def.Collection
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = def.OllamaURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = def.EmbedModel
	}
	if cfg.GenModel == "" {
		cfg.GenModel = def.GenModel
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		clamped := cfg.ChunkSize / 5
		log.Printf("CONFIG WARN: chunk_overlap %d >= chunk_size %d, clamping overlap to %d",
			cfg.ChunkOverlap, cfg.ChunkSize, clamped)
		cfg.ChunkOverlap = clamped
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = def.UploadDir
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = def.TimeoutSecs
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CHROMA_URL"); v != "" {
		cfg.ChromaURL = v
	}
	if v := os.Getenv("CHROMA_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("GEN_MODEL"); v != "" {
		cfg.GenModel = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("WATCH_DIR"); v != "" {
		cfg.WatchDir = v
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.UnidocLicenseKey = os.Getenv("UNIDOC_LICENSE_KEY")
}

// Missing credentials are warnings, not fatal: ingestion of local PDFs
// still works without Gemini, and querying works without the PDF license.
func warnMissingCredentials(cfg *Config) {
	if cfg.GeminiAPIKey == "" {
		log.Println("CONFIG WARN: GEMINI_API_KEY is not set; query answering and transcript translation will fail.")
	}
	if cfg.UnidocLicenseKey == "" {
		log.Println("CONFIG WARN: UNIDOC_LICENSE_KEY is not set; PDF ingestion will fail.")
	}
}
