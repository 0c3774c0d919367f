package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github/aiworkbench/rag/models"
)

// TranscriptNormalizer selects the best caption track for a video,
// cleans the raw subtitle text, and translates non-English transcripts.
type TranscriptNormalizer struct {
	captions   CaptionSource
	translator Translator
}

func NewTranscriptNormalizer(captions CaptionSource, translator Translator) *TranscriptNormalizer {
	return &TranscriptNormalizer{captions: captions, translator: translator}
}

// LoadYouTube produces exactly one RawDocument for the video, or fails
// with ErrNoCaptionsAvailable / ErrTranslationFailure.
func (n *TranscriptNormalizer) LoadYouTube(ctx context.Context, videoURL string) ([]models.RawDocument, error) {
	log.Printf("LOADER: Loading YouTube video: %s", videoURL)

	tracks, err := n.captions.ListTracks(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list captions for %s: %w", videoURL, err)
	}
	track, ok := selectCaptionTrack(tracks)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCaptionsAvailable, videoURL)
	}

	raw, err := n.captions.FetchTrack(ctx, videoURL, track)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caption track %s: %w", track.Code, err)
	}
	text := CleanSRTCaptions(raw)

	// Non-English transcripts go through the translator as one blocking
	// call per document; the request waits until it resolves.
	if track.Code != "en" && track.Code != "a.en" {
		srcLang := strings.TrimPrefix(track.Code, "a.")
		if srcLang != track.Code {
			log.Printf("NORMALIZER: Cleaned auto-generated lang code from '%s' to '%s' for translator.", track.Code, srcLang)
		}
		log.Printf("NORMALIZER: Translating content from '%s' to English...", srcLang)
		translated, err := n.translator.Translate(ctx, text, srcLang)
		if err != nil || strings.TrimSpace(translated) == "" {
			if err != nil {
				log.Printf("NORMALIZER ERROR: translation failed: %v", err)
			}
			return nil, fmt.Errorf("%w: %s", ErrTranslationFailure, videoURL)
		}
		text = translated
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyExtraction, videoURL)
	}

	meta := map[string]string{
		"source":            videoURL,
		"original_language": track.Code,
	}
	if title, err := n.captions.VideoTitle(ctx, videoURL); err != nil {
		log.Printf("NORMALIZER WARN: could not fetch video title for %s: %v", videoURL, err)
	} else if title != "" {
		meta["title"] = title
	}

	return []models.RawDocument{{Text: text, Metadata: meta}}, nil
}

// selectCaptionTrack applies the priority order: auto-generated English,
// manual English, then the first available track of any language.
func selectCaptionTrack(tracks []CaptionTrack) (CaptionTrack, bool) {
	for _, t := range tracks {
		if t.Code == "a.en" {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.Code == "en" {
			return t, true
		}
	}
	if len(tracks) > 0 {
		log.Printf("NORMALIZER WARN: No English caption found. Using first available: '%s'", tracks[0].Name)
		return tracks[0], true
	}
	return CaptionTrack{}, false
}

// CleanSRTCaptions strips the SRT framing from a raw caption string:
// blank lines, purely numeric sequence lines, and time-range lines are
// dropped; the remaining caption lines are joined with single spaces.
func CleanSRTCaptions(srt string) string {
	var clean []string
	for _, line := range strings.Split(srt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isAllDigits(line) || strings.Contains(line, "-->") {
			continue
		}
		clean = append(clean, line)
	}
	return strings.Join(clean, " ")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
