package download

import (
	"context"

	"github.com/lrstanley/go-ytdlp"
)

// YTDLPRunner runs yt-dlp through github.com/lrstanley/go-ytdlp
type YTDLPRunner struct {
	executable string
}

// NewYTDLPRunner creates a runner; an empty executable resolves yt-dlp from
// PATH or the library's install cache.
func NewYTDLPRunner(executable string) *YTDLPRunner {
	return &YTDLPRunner{executable: executable}
}

// Command builds the yt-dlp command for req: no video, manual and
// auto-generated subtitles for the requested languages, in the requested
// format, written to the output template. Existing subtitle files are
// rewritten so that every run leaves fresh files behind.
func (r *YTDLPRunner) Command(req Request) *ytdlp.Command {
	dl := ytdlp.New().
		SkipDownload().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(req.Language).
		SubFormat(req.SubFormat).
		Output(req.OutputTemplate).
		ForceOverwrites()

	if r.executable != "" {
		dl.SetExecutable(r.executable)
	}
	return dl
}

// Run executes the command for req
func (r *YTDLPRunner) Run(ctx context.Context, req Request) (*ytdlp.Result, error) {
	return r.Command(req).Run(ctx, req.URL)
}

// Install resolves yt-dlp, downloading it into the library cache when it
// is not already available.
func Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}
