package caption

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/sirupsen/logrus"

	"github.com/ytget/yt-subtitles/internal/model"
	"github.com/ytget/yt-subtitles/internal/subtitle"
)

// Timedtext request constants
const (
	TimedTextFormatParam = "fmt"
	TimedTextFormat      = "srv3"
	MaxTimedTextBytes    = 16 << 20
)

var (
	// ErrNoCaptions is returned when the video has no track for the language
	ErrNoCaptions = model.ErrNoCaptions

	// ErrInvalidLanguage is returned for an empty or malformed language code
	ErrInvalidLanguage = errors.New("invalid language code")
)

// Options tunes a single fetch
type Options struct {
	// Format of the rendered text; SRT when empty
	Format subtitle.Format

	// Fallback allows a close language match (e.g. "en-GB" for "en") and,
	// for manual keys, an auto-generated track when no manual one matches.
	Fallback bool
}

// Result is a rendered caption track
type Result struct {
	VideoID string
	Title   string
	Track   model.CaptionTrack
	Format  subtitle.Format
	Cues    int
	Text    string
}

// Service handles caption lookups
type Service struct {
	source     VideoSource
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewService creates a caption service backed by a youtube client
func NewService(client *youtube.Client, logger *logrus.Logger) *Service {
	httpClient := client.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return NewServiceWithSource(client, httpClient, logger)
}

// NewServiceWithSource creates a caption service with an explicit video source
func NewServiceWithSource(source VideoSource, httpClient *http.Client, logger *logrus.Logger) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Service{
		source:     source,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Fetch returns the caption track for lang rendered as subtitle text.
// Lookup keys follow the track key space: "en" addresses a manual English
// track, "a.en" an auto-generated one. ErrNoCaptions is returned when no
// track matches or the matched track is empty.
func (s *Service) Fetch(ctx context.Context, videoURL, lang string, opts Options) (*Result, error) {
	lang = strings.TrimSpace(lang)
	if code, _ := model.SplitKey(lang); code == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}

	format := opts.Format
	if format == "" {
		format = subtitle.FormatSRT
	}

	video, err := s.source.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	tracks := convertTracks(video.CaptionTracks)
	track, ok := lookupTrack(tracks, lang)
	if !ok && opts.Fallback {
		track, ok = fallbackTrack(tracks, lang)
		if ok {
			s.logger.WithFields(logrus.Fields{
				"video":     video.ID,
				"requested": lang,
				"matched":   track.Key(),
			}).Info("Using closest caption track")
		}
	}
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"video":     video.ID,
			"requested": lang,
			"available": len(tracks),
		}).Debug("No caption track for language")
		return nil, ErrNoCaptions
	}

	cues, err := s.download(ctx, track)
	if err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		return nil, ErrNoCaptions
	}

	text, err := subtitle.Render(cues, format)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"video": video.ID,
		"track": track.Key(),
		"cues":  len(cues),
	}).Debug("Caption track rendered")

	return &Result{
		VideoID: video.ID,
		Title:   video.Title,
		Track:   track,
		Format:  format,
		Cues:    len(cues),
		Text:    text,
	}, nil
}

// Tracks lists the caption tracks a video offers
func (s *Service) Tracks(ctx context.Context, videoURL string) (*TrackList, error) {
	video, err := s.source.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &TrackList{
		VideoID: video.ID,
		Title:   video.Title,
		Tracks:  convertTracks(video.CaptionTracks),
	}, nil
}

// download fetches and parses the timedtext document of a track
func (s *Service) download(ctx context.Context, track model.CaptionTrack) ([]subtitle.Cue, error) {
	u, err := timedTextURL(track.BaseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build caption request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download caption track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download caption track: unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxTimedTextBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read caption track: %w", err)
	}

	cues, err := subtitle.ParseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption track: %w", err)
	}
	return cues, nil
}

// timedTextURL forces the srv3 layout on a track base URL
func timedTextURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("caption track has no URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid caption track URL: %w", err)
	}
	q := u.Query()
	q.Set(TimedTextFormatParam, TimedTextFormat)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func convertTracks(in []youtube.CaptionTrack) []model.CaptionTrack {
	tracks := make([]model.CaptionTrack, 0, len(in))
	for _, t := range in {
		tracks = append(tracks, model.CaptionTrack{
			LanguageCode: t.LanguageCode,
			Name:         t.Name.SimpleText,
			Kind:         t.Kind,
			Translatable: t.IsTranslatable,
			BaseURL:      t.BaseURL,
		})
	}
	return tracks
}

// lookupTrack finds a track by exact key
func lookupTrack(tracks []model.CaptionTrack, key string) (model.CaptionTrack, bool) {
	for _, t := range tracks {
		if t.Key() == key {
			return t, true
		}
	}
	return model.CaptionTrack{}, false
}

func fallbackTrack(tracks []model.CaptionTrack, key string) (model.CaptionTrack, bool) {
	if t, ok := matchTrack(tracks, key); ok {
		return t, true
	}
	code, auto := model.SplitKey(key)
	if auto {
		return model.CaptionTrack{}, false
	}
	if t, ok := lookupTrack(tracks, model.AutoGeneratedPrefix+code); ok {
		return t, true
	}
	return matchTrack(tracks, model.AutoGeneratedPrefix+code)
}
