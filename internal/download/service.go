package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ytget/yt-subtitles/internal/model"
	"github.com/ytget/yt-subtitles/internal/platform"
	"github.com/ytget/yt-subtitles/internal/subtitle"
)

// Defaults for the fixed yt-dlp subtitle bundle
const (
	DefaultSubFormat  = "vtt"
	DefaultRetryDelay = 2 * time.Second
	MaxRetries        = 5
)

var (
	// ErrNoCaptions is returned when yt-dlp wrote no subtitle file
	ErrNoCaptions = model.ErrNoCaptions

	// ErrEmptyURL is returned when no video URL was given
	ErrEmptyURL = errors.New("video URL is empty")

	// ErrEmptyOutput is returned when no output template was given
	ErrEmptyOutput = errors.New("output path is empty")
)

// Result describes a finished subtitle download
type Result struct {
	// Files are the subtitle files yt-dlp wrote. Empty when the output
	// template directory has placeholders and files cannot be discovered.
	Files []string

	// Converted are the files produced by format conversion
	Converted []string

	// Detected reports whether Files could be discovered at all
	Detected bool

	Attempts int
}

// Option configures a Service
type Option func(*Service)

// WithSubFormat sets the subtitle format yt-dlp is asked for
func WithSubFormat(format string) Option {
	return func(s *Service) {
		if format != "" {
			s.subFormat = format
		}
	}
}

// WithConversion converts written VTT files into target next to the original
func WithConversion(target subtitle.Format) Option {
	return func(s *Service) {
		s.convertTo = target
	}
}

// WithRetries sets how many times a failed run is retried
func WithRetries(retries int, delay time.Duration) Option {
	return func(s *Service) {
		if retries < 0 {
			retries = 0
		}
		if retries > MaxRetries {
			retries = MaxRetries
		}
		s.retries = retries
		s.retryDelay = delay
	}
}

// Service handles subtitle download operations
type Service struct {
	runner     Runner
	subFormat  string
	convertTo  subtitle.Format
	retries    int
	retryDelay time.Duration
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new download service
func NewService(runner Runner, logger *logrus.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	s := &Service{
		runner:     runner,
		subFormat:  DefaultSubFormat,
		retryDelay: DefaultRetryDelay,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Download asks yt-dlp to skip the video and write the subtitle or
// auto-generated subtitle for lang to outputTemplate. ErrNoCaptions is
// returned when the run succeeded but no subtitle file appeared.
func (s *Service) Download(ctx context.Context, videoURL, lang, outputTemplate string) (*Result, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, ErrEmptyURL
	}
	if strings.TrimSpace(outputTemplate) == "" {
		return nil, ErrEmptyOutput
	}

	if dir, literal := platform.TemplateDir(outputTemplate); literal {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	req := Request{
		URL:            videoURL,
		Language:       lang,
		OutputTemplate: outputTemplate,
		SubFormat:      s.subFormat,
	}

	started := s.now()
	attempts, err := s.runWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	files, detected, err := platform.FindSubtitleFiles(outputTemplate, s.subFormat, started)
	if err != nil {
		return nil, err
	}
	// yt-dlp skips subtitles that are already present, leaving the old mtime
	if path, ok := platform.ExpectedSubtitleFile(outputTemplate, lang, s.subFormat); ok && !slices.Contains(files, path) {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
			sort.Strings(files)
		}
	}

	result := &Result{Files: files, Detected: detected, Attempts: attempts}
	if detected && len(files) == 0 {
		s.logger.WithFields(logrus.Fields{
			"url":      videoURL,
			"language": lang,
		}).Debug("yt-dlp wrote no subtitle files")
		return nil, ErrNoCaptions
	}

	if s.convertTo != "" && s.convertTo != subtitle.Format(s.subFormat) {
		converted, err := s.convert(files)
		if err != nil {
			return nil, err
		}
		result.Converted = converted
	}

	s.logger.WithFields(logrus.Fields{
		"url":      videoURL,
		"language": lang,
		"files":    len(files),
		"attempts": attempts,
	}).Info("Subtitles downloaded")

	return result, nil
}

// runWithRetry attempts the run with retry logic and returns the number of
// attempts made
func (s *Service) runWithRetry(ctx context.Context, req Request) (int, error) {
	var lastErr error

	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}

			s.logger.WithFields(logrus.Fields{
				"url":     req.URL,
				"attempt": attempt + 1,
			}).Warn("Retrying subtitle download")
		}

		res, err := s.runner.Run(ctx, req)
		if err == nil {
			return attempt + 1, nil
		}

		lastErr = describeRunError(res, err)
		s.logger.WithError(lastErr).WithField("attempt", attempt+1).Debug("yt-dlp run failed")

		if ctx.Err() != nil {
			return attempt + 1, ctx.Err()
		}
	}

	return s.retries + 1, lastErr
}

// convert writes a converted copy of every VTT file
func (s *Service) convert(files []string) ([]string, error) {
	if s.subFormat != string(subtitle.FormatVTT) {
		return nil, fmt.Errorf("conversion needs vtt input, got %s", s.subFormat)
	}

	var out []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return out, fmt.Errorf("failed to read subtitle file: %w", err)
		}
		text, err := subtitle.ConvertVTT(string(data), s.convertTo)
		if err != nil {
			return out, fmt.Errorf("failed to convert %s: %w", file, err)
		}
		target := platform.ReplaceExt(file, string(s.convertTo))
		if err := platform.WriteFile(target, []byte(text)); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	return out, nil
}
