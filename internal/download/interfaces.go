package download

import (
	"context"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-subtitles/internal/model"
)

// Request is one yt-dlp subtitle invocation
type Request struct {
	URL            string
	Language       string
	OutputTemplate string
	SubFormat      string
}

// Runner executes a yt-dlp subtitle invocation.
type Runner interface {
	Run(ctx context.Context, req Request) (*ytdlp.Result, error)
}

// SubtitleDownloader downloads the subtitles of one video.
type SubtitleDownloader interface {
	Download(ctx context.Context, videoURL, lang, outputTemplate string) (*Result, error)
}

// TaskQueue defines the interface for the batch download queue.
type TaskQueue interface {
	SetUpdateCallback(func(model.SubtitleTask))
	AddTask(url, lang, outputTemplate string) (*model.SubtitleTask, error)
	GetTask(id string) (model.SubtitleTask, bool)
	GetAllTasks() []model.SubtitleTask
	CancelTask(id string) error
	Wait()
}

var (
	_ Runner             = (*YTDLPRunner)(nil)
	_ SubtitleDownloader = (*Service)(nil)
	_ TaskQueue          = (*Queue)(nil)
)
