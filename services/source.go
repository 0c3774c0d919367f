package services

import (
	"net/url"
	"strings"

	"github/aiworkbench/rag/models"
)

// Classify derives the SourceDescriptor for a raw input string. The
// mapping is deterministic: a ".pdf" suffix wins, then the YouTube host
// patterns, and everything else is treated as a generic web page. The
// secure-scheme check for web pages happens in the loader, before any
// network I/O.
func Classify(sourcePath string) models.SourceDescriptor {
	if strings.HasSuffix(strings.ToLower(sourcePath), ".pdf") {
		return models.SourceDescriptor{Path: sourcePath, Kind: models.SourcePDF}
	}
	if isYouTubeURL(sourcePath) {
		return models.SourceDescriptor{Path: sourcePath, Kind: models.SourceYouTube}
	}
	return models.SourceDescriptor{Path: sourcePath, Kind: models.SourceWebPage}
}

func isYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "youtu.be" ||
		strings.HasSuffix(host, ".youtube.com")
}
