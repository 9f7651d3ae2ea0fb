package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"

	"github.com/tidwall/gjson"
)

const (
	MetadataVideoID       = "video_id"
	MetadataAuthor        = "author"
	MetadataLengthSeconds = "length_seconds"
	MetadataViewCount     = "view_count"
	MetadataLanguage      = "language"

	defaultWatchURL = "https://www.youtube.com/watch"

	playerResponseMarker = "ytInitialPlayerResponse = "
	playabilityOK        = "OK"
	asrKind              = "asr"
	poTokenExperiment    = "xpe"

	maxWatchPageBytes = 6 << 20
	maxTimedTextBytes = 2 << 20
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// YouTube loads the transcript of a video plus its basic metadata.
//
// The watch page embeds the player response as JSON; caption tracks listed there
// point at timed-text XML that needs no API key.
type YouTube struct {
	client    *http.Client
	userAgent string
	languages []string
	watchURL  string
	log       *slog.Logger
}

type YouTubeOption func(*YouTube)

// WithWatchURL overrides the watch page endpoint.
func WithWatchURL(watchURL string) YouTubeOption {
	return func(y *YouTube) {
		y.watchURL = watchURL
	}
}

func WithHTTPClient(client *http.Client) YouTubeOption {
	return func(y *YouTube) {
		y.client = client
	}
}

type captionTrack struct {
	BaseURL      string
	LanguageCode string
	Kind         string
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
	Body  struct {
		Paragraphs []timedTextLine `xml:"p"`
	} `xml:"body"`
}

type timedTextLine struct {
	Inner string `xml:",innerxml"`
}

func NewYouTube(
	cfg config.YouTube,
	web config.Web,
	log *slog.Logger,
	opts ...YouTubeOption,
) *YouTube {
	userAgent := strings.TrimSpace(web.UserAgent)
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	y := &YouTube{
		client:    newHTTPClient(web.Timeout, false),
		userAgent: userAgent,
		languages: languages,
		watchURL:  defaultWatchURL,
		log:       log,
	}

	for _, opt := range opts {
		opt(y)
	}

	return y
}

func (y *YouTube) Load(ctx context.Context, target domain.TargetURL) ([]domain.Document, error) {
	videoID, err := VideoID(target.Raw)
	if err != nil {
		return nil, unavailable("extract video ID", err)
	}

	playerResponse, err := y.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if status := gjson.GetBytes(playerResponse, "playabilityStatus.status").String(); status != "" && status != playabilityOK {
		reason := strings.TrimSpace(gjson.GetBytes(playerResponse, "playabilityStatus.reason").String())
		if reason == "" {
			reason = status
		}

		return nil, unavailable("video is not playable", errors.New(reason))
	}

	tracks := captionTracks(playerResponse)
	if len(tracks) == 0 {
		return nil, unavailable("video has no captions", nil)
	}

	track, ok := pickBestTrack(tracks, y.languages)
	if !ok {
		return nil, unavailable("all caption tracks require a PoToken", nil)
	}

	transcript, err := y.fetchTranscript(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	details := gjson.GetBytes(playerResponse, "videoDetails")

	y.log.DebugContext(ctx, "YouTube transcript is loaded",
		"videoID", videoID,
		"language", track.LanguageCode,
		"kind", track.Kind,
		"transcriptLen", len(transcript))

	return []domain.Document{{
		Content: transcript,
		Metadata: map[string]string{
			MetadataSource:        target.Raw,
			MetadataVideoID:       videoID,
			MetadataTitle:         details.Get("title").String(),
			MetadataAuthor:        details.Get("author").String(),
			MetadataLengthSeconds: details.Get("lengthSeconds").String(),
			MetadataViewCount:     details.Get("viewCount").String(),
			MetadataLanguage:      track.LanguageCode,
		},
	}}, nil
}

// VideoID extracts the video ID from watch, shorts, embed and live URLs.
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	id := strings.TrimSpace(u.Query().Get("v"))
	if id == "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) >= 2 {
			switch parts[0] {
			case "shorts", "embed", "live", "v":
				id = parts[1]
			}
		}
	}

	if id == "" {
		return "", fmt.Errorf("no video ID in %q", raw)
	}

	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("malformed video ID %q", id)
	}

	return id, nil
}

func (y *YouTube) fetchPlayerResponse(ctx context.Context, videoID string) ([]byte, error) {
	watchURL, err := url.Parse(y.watchURL)
	if err != nil {
		return nil, unavailable("parse watch URL", err)
	}

	query := watchURL.Query()
	query.Set("v", videoID)
	query.Set("hl", "en")
	watchURL.RawQuery = query.Encode()

	body, err := y.get(ctx, watchURL.String(), "text/html,application/xhtml+xml", maxWatchPageBytes)
	if err != nil {
		return nil, unavailable("fetch watch page", err)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, unavailable("player response not found in watch page", nil)
	}

	var raw json.RawMessage
	if err = json.NewDecoder(bytes.NewReader(body[idx+len(playerResponseMarker):])).Decode(&raw); err != nil {
		return nil, unavailable("decode player response", err)
	}

	return raw, nil
}

func (y *YouTube) fetchTranscript(ctx context.Context, baseURL string) (string, error) {
	body, err := y.get(ctx, baseURL, "text/xml,application/xml,*/*", maxTimedTextBytes)
	if err != nil {
		return "", unavailable("fetch timed text", err)
	}

	var tt timedText
	if err = xml.Unmarshal(body, &tt); err != nil {
		return "", unavailable("parse timed text", err)
	}

	lines := tt.Lines
	if len(lines) == 0 {
		lines = tt.Body.Paragraphs
	}

	var sb strings.Builder
	for _, line := range lines {
		// Inner XML is still entity-encoded; captions may also carry markup such as <font>.
		text := strings.Join(strings.Fields(stripTags(html.UnescapeString(line.Inner))), " ")
		if text == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", unavailable("transcript is empty", nil)
	}

	return sb.String(), nil
}

func (y *YouTube) get(ctx context.Context, rawURL string, accept string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, rawURL); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func captionTracks(playerResponse []byte) []captionTrack {
	var tracks []captionTrack

	gjson.GetBytes(playerResponse, "captions.playerCaptionsTracklistRenderer.captionTracks").
		ForEach(func(_, value gjson.Result) bool {
			baseURL := strings.TrimSpace(value.Get("baseUrl").String())
			if baseURL != "" {
				tracks = append(tracks, captionTrack{
					BaseURL:      baseURL,
					LanguageCode: value.Get("languageCode").String(),
					Kind:         value.Get("kind").String(),
				})
			}
			return true
		})

	return tracks
}

// needsPoToken reports whether a track can only be fetched by a real browser.
func needsPoToken(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}

	return u.Query().Get("exp") == poTokenExperiment
}

// pickBestTrack prefers manual tracks in the requested languages, then
// auto-generated ones, then any English track, then whatever is left.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}

	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != asrKind {
				return t, true
			}
		}
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}

	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}

	return usable[0], true
}
