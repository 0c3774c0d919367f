package services

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github/aiworkbench/rag/models"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// HTTPPageFetcher fetches a web page and reduces it to title + visible text.
type HTTPPageFetcher struct {
	client *http.Client
}

func NewHTTPPageFetcher(client *http.Client) *HTTPPageFetcher {
	return &HTTPPageFetcher{client: client}
}

func (f *HTTPPageFetcher) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch of %s returned status %d", pageURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	raw := string(body)
	return extractTitle(raw), stripHTML(raw), nil
}

func extractTitle(rawHTML string) string {
	m := titleRe.FindStringSubmatch(rawHTML)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

func stripHTML(rawHTML string) string {
	out := scriptRe.ReplaceAllString(rawHTML, " ")
	out = styleRe.ReplaceAllString(out, " ")
	out = tagRe.ReplaceAllString(out, " ")
	out = html.UnescapeString(out)
	return strings.TrimSpace(spaceRe.ReplaceAllString(out, " "))
}

// LoadWebPage fetches a generic web page into a single RawDocument. The
// secure-scheme check fails before any network call is made.
func LoadWebPage(ctx context.Context, fetcher PageFetcher, pageURL string) ([]models.RawDocument, error) {
	if !strings.HasPrefix(pageURL, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrInsecureSource, pageURL)
	}
	log.Printf("LOADER: Loading web page: %s", pageURL)

	title, text, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load web page %s: %w", pageURL, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyExtraction, pageURL)
	}

	meta := map[string]string{"source": pageURL}
	if title != "" {
		meta["title"] = title
	}
	return []models.RawDocument{{Text: text, Metadata: meta}}, nil
}
