package caption

import (
	"context"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-subtitles/internal/model"
)

// VideoSource resolves a video URL or ID into video metadata, including
// its caption track list. *youtube.Client satisfies it.
type VideoSource interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
}

// Fetcher defines the interface for the caption service.
type Fetcher interface {
	Fetch(ctx context.Context, videoURL, lang string, opts Options) (*Result, error)
	Tracks(ctx context.Context, videoURL string) (*TrackList, error)
}

var (
	_ VideoSource = (*youtube.Client)(nil)
	_ Fetcher     = (*Service)(nil)
)

// TrackList is the set of caption tracks a video offers
type TrackList struct {
	VideoID string
	Title   string
	Tracks  []model.CaptionTrack
}
