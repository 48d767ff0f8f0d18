package model

import (
	"path/filepath"
	"strings"
	"time"
)

// SubtitleTask represents a single subtitle download request
type SubtitleTask struct {
	ID             string
	URL            string
	Language       string
	OutputTemplate string
	Status         TaskStatus
	Files          []string  // subtitle files written by the run
	LastError      string    // last error message if any
	Title          string    // video title, when known
	Attempts       int       // yt-dlp runs performed
	StartedAt      time.Time // when the task was queued
	FinishedAt     time.Time // when the task reached a terminal state
}

// GetDisplayTitle returns title, first written file name, or URL in order of preference
func (t *SubtitleTask) GetDisplayTitle() string {
	if t.Title != "" && !strings.HasPrefix(t.Title, "http") {
		return t.Title
	}

	if len(t.Files) > 0 {
		name := filepath.Base(t.Files[0])
		// "video.en.vtt" -> "video"
		for i := 0; i < 2; i++ {
			if idx := strings.LastIndex(name, "."); idx > 0 {
				name = name[:idx]
			}
		}
		return name
	}

	return t.URL
}

// Elapsed returns how long the task ran, or zero while it is unfinished
func (t *SubtitleTask) Elapsed() time.Duration {
	if t.FinishedAt.IsZero() || t.StartedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}
