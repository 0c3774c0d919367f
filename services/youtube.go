package services

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// YouTubeCaptionClient talks to YouTube's timedtext and oEmbed endpoints
// directly over HTTP. Tracks are listed from the timedtext track list;
// a fetched track is converted to SRT so the normalizer sees the same
// line-oriented subtitle format regardless of transport.
type YouTubeCaptionClient struct {
	client  *http.Client
	baseURL string // overridable for tests
}

func NewYouTubeCaptionClient(client *http.Client) *YouTubeCaptionClient {
	return &YouTubeCaptionClient{client: client, baseURL: "https://www.youtube.com"}
}

type timedTextTrackList struct {
	Tracks []struct {
		Name     string `xml:"name,attr"`
		LangCode string `xml:"lang_code,attr"`
		Kind     string `xml:"kind,attr"`
	} `xml:"track"`
}

type timedTextTranscript struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// videoID pulls the video identifier out of the supported URL shapes:
// youtu.be/<id>, youtube.com/watch?v=<id>, /embed/<id>, /shorts/<id>.
func videoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("invalid video URL %s: %w", videoURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("could not extract a video id from %s", videoURL)
}

func (c *YouTubeCaptionClient) ListTracks(ctx context.Context, videoURL string) ([]CaptionTrack, error) {
	id, err := videoID(videoURL)
	if err != nil {
		return nil, err
	}
	listURL := fmt.Sprintf("%s/api/timedtext?type=list&v=%s", c.baseURL, url.QueryEscape(id))
	body, err := c.get(ctx, listURL)
	if err != nil {
		return nil, err
	}

	var list timedTextTrackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse caption track list: %w", err)
	}

	tracks := make([]CaptionTrack, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		code := t.LangCode
		auto := t.Kind == "asr"
		if auto {
			code = "a." + code
		}
		tracks = append(tracks, CaptionTrack{Code: code, Name: t.Name, Auto: auto})
	}
	return tracks, nil
}

// FetchTrack downloads the timedtext transcript for the track and
// renders it as SRT (sequence number, time range, caption line).
func (c *YouTubeCaptionClient) FetchTrack(ctx context.Context, videoURL string, track CaptionTrack) (string, error) {
	id, err := videoID(videoURL)
	if err != nil {
		return "", err
	}
	lang := strings.TrimPrefix(track.Code, "a.")
	fetchURL := fmt.Sprintf("%s/api/timedtext?v=%s&lang=%s", c.baseURL, url.QueryEscape(id), url.QueryEscape(lang))
	if track.Auto {
		fetchURL += "&kind=asr"
	}
	if track.Name != "" {
		fetchURL += "&name=" + url.QueryEscape(track.Name)
	}
	body, err := c.get(ctx, fetchURL)
	if err != nil {
		return "", err
	}

	var transcript timedTextTranscript
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return "", fmt.Errorf("failed to parse caption transcript: %w", err)
	}

	var sb strings.Builder
	for i, t := range transcript.Texts {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(t.Start), srtTimestamp(t.Start+t.Dur),
			html.UnescapeString(t.Body))
	}
	return sb.String(), nil
}

func (c *YouTubeCaptionClient) VideoTitle(ctx context.Context, videoURL string) (string, error) {
	oembedURL := fmt.Sprintf("%s/oembed?url=%s&format=json", c.baseURL, url.QueryEscape(videoURL))
	body, err := c.get(ctx, oembedURL)
	if err != nil {
		return "", err
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse oembed response: %w", err)
	}
	return payload.Title, nil
}

func (c *YouTubeCaptionClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube request %s returned status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func srtTimestamp(seconds float64) string {
	ms := int(seconds*1000 + 0.5)
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
