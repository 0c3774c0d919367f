package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiService backs both the answer-synthesis and translation
// capabilities with a single long-lived Gemini client.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(client *genai.Client, model string) *GeminiService {
	return &GeminiService{client: client, model: model}
}

// Complete sends a fully formatted prompt and returns the response text.
func (g *GeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	text := candidateText(result)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// Translate renders text into English as a single blocking call.
func (g *GeminiService) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from language code %q into English. Respond with the translation only, no commentary.\n\n%s",
		sourceLang, text)
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini translation call failed: %w", err)
	}
	return candidateText(result), nil
}

// UnavailableGeminiService stands in for GeminiService when no API key
// is configured. Every call fails with the given reason, so ingestion
// of English sources keeps working while synthesis and translation
// report the missing credential at call time.
type UnavailableGeminiService struct {
	reason string
}

func NewUnavailableGeminiService(reason string) *UnavailableGeminiService {
	return &UnavailableGeminiService{reason: reason}
}

func (g *UnavailableGeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("gemini is not configured: %s", g.reason)
}

func (g *UnavailableGeminiService) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	return "", fmt.Errorf("gemini is not configured: %s", g.reason)
}

func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
