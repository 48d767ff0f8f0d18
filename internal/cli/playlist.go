package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-subtitles/internal/config"
	"github.com/ytget/yt-subtitles/internal/download"
	"github.com/ytget/yt-subtitles/internal/model"
	"github.com/ytget/yt-subtitles/internal/platform"
)

// PlaylistOutputTemplate names subtitle files after the video ID
const PlaylistOutputTemplate = "%s.%%(ext)s"

// timedDownloader bounds every download of a batch by its own timeout
type timedDownloader struct {
	download.SubtitleDownloader
	timeout time.Duration
}

func (d timedDownloader) Download(ctx context.Context, videoURL, lang, outputTemplate string) (*download.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.SubtitleDownloader.Download(ctx, videoURL, lang, outputTemplate)
}

func newPlaylistCmd(a *app) *cobra.Command {
	var (
		f     downloadFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "playlist <playlist_url> [lang]",
		Short: "Download subtitles for every video of a playlist",
		Long: `Expands a playlist and has yt-dlp write the subtitle for the language of
each video into the output directory, several videos at a time. Files are
named after the video ID, e.g. "dQw4w9WgXcQ.en.vtt". Without a language
the configured default is used.

Examples:
  yt-subtitles playlist "https://www.youtube.com/playlist?list=PL123" en
  yt-subtitles playlist "https://www.youtube.com/watch?v=abc&list=PL123" de --parallel 4 --output-dir subs`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlistURL, lang := args[0], a.language("")
			if len(args) > 1 {
				lang = a.language(args[1])
			}

			if err := a.bindFlags(cmd.Flags(), map[string]string{
				"output-dir": config.KeyOutputDir,
				"parallel":   config.KeyMaxParallel,
			}); err != nil {
				return err
			}

			svc, err := a.newDownloader(cmd, &f)
			if err != nil {
				return err
			}

			parser := platform.NewPlaylistParser(PlaylistFetcher)
			parser.SetTimeout(a.settings.GetTimeout())
			parser.SetLimit(limit)

			playlist, err := parser.ParsePlaylist(cmd.Context(), playlistURL)
			if err != nil {
				return err
			}
			if !playlist.IsReadyForDownload() {
				return fmt.Errorf("playlist %s has no videos", playlist.ID)
			}

			outputDir := a.settings.GetOutputDirectory()
			if err := platform.CreateDirectoryIfNotExists(outputDir); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			a.logger.WithFields(logrus.Fields{
				"playlist": playlist.ID,
				"title":    playlist.Title,
				"videos":   len(playlist.Videos),
				"dir":      outputDir,
			}).Info("Downloading playlist subtitles")

			// tasks are stopped one by one on interrupt so that their videos
			// are reported as skipped
			queue := download.NewQueue(context.WithoutCancel(cmd.Context()), timedDownloader{
				SubtitleDownloader: svc,
				timeout:            a.settings.GetTimeout(),
			}, a.settings.GetMaxParallel(), a.logger)

			a.runPlaylist(cmd.Context(), playlist, queue, lang, outputDir)

			out := cmd.OutOrStdout()
			if err := writeTable(out, []string{"#", "VIDEO", "TITLE", "STATUS", "FILES"}, playlistRows(playlist),
				[]columnAlignment{alignRight}); err != nil {
				return err
			}
			return playlistOutcome(cmd.Context(), playlist, out)
		},
	}

	f.register(cmd)
	cmd.Flags().String("output-dir", "", "directory for subtitle files (default is ~/Downloads)")
	cmd.Flags().Int("parallel", config.DefaultMaxParallel, "videos processed at the same time (1-10)")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most this many videos (0 for all)")
	return cmd
}

// runPlaylist queues one task per video and waits for all of them.
// Cancelling ctx cancels every unfinished task.
func (a *app) runPlaylist(ctx context.Context, playlist *model.Playlist, queue download.TaskQueue, lang, outputDir string) {
	var mu sync.Mutex
	videoByTask := make(map[string]string, len(playlist.Videos))

	queue.SetUpdateCallback(func(task model.SubtitleTask) {
		mu.Lock()
		defer mu.Unlock()
		videoID, ok := videoByTask[task.ID]
		if !ok {
			return
		}
		playlist.ApplyTask(videoID, &task)
		if task.Status.IsFinished() {
			a.logger.WithFields(logrus.Fields{
				"video":    videoID,
				"status":   task.Status.String(),
				"progress": fmt.Sprintf("%.0f%%", playlist.Progress()),
			}).Info("Video processed")
		}
	})

	mu.Lock()
	playlist.UpdateStatus(model.PlaylistStatusDownloading)
	mu.Unlock()

	for _, video := range playlist.Videos {
		template := filepath.Join(outputDir, fmt.Sprintf(PlaylistOutputTemplate, video.ID))

		// updates of tasks not yet in videoByTask are picked up after Wait
		task, err := queue.AddTask(video.URL, lang, template)

		mu.Lock()
		if err != nil {
			video.Status = model.VideoStatusSkipped
			video.Error = err.Error()
			mu.Unlock()
			a.logger.WithError(err).WithField("video", video.ID).Warn("Skipping video")
			continue
		}
		videoByTask[task.ID] = video.ID
		mu.Unlock()
	}

	stop := context.AfterFunc(ctx, func() { a.cancelTasks(queue) })
	queue.Wait()
	stop()

	mu.Lock()
	defer mu.Unlock()
	for taskID, videoID := range videoByTask {
		if task, ok := queue.GetTask(taskID); ok {
			playlist.ApplyTask(videoID, &task)
		}
	}
	if playlist.HasErrors() {
		playlist.UpdateStatus(model.PlaylistStatusError)
	} else {
		playlist.UpdateStatus(model.PlaylistStatusCompleted)
	}
}

// cancelTasks cancels every task that has not finished yet
func (a *app) cancelTasks(queue download.TaskQueue) {
	for _, task := range queue.GetAllTasks() {
		if task.Status.IsFinished() || task.Status == model.TaskStatusCancelling {
			continue
		}
		if err := queue.CancelTask(task.ID); err != nil {
			// finished in the meantime
			a.logger.WithError(err).WithField("task", task.ID).Debug("Task not cancelled")
		}
	}
	a.logger.Warn("Playlist interrupted, remaining videos skipped")
}

func playlistRows(playlist *model.Playlist) [][]string {
	rows := make([][]string, 0, len(playlist.Videos))
	for i, video := range playlist.Videos {
		files := make([]string, 0, len(video.Files))
		for _, file := range video.Files {
			files = append(files, filepath.Base(file))
		}
		status := string(video.Status)
		if video.Error != "" {
			status += ": " + video.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			video.ID,
			video.Title,
			status,
			strings.Join(files, ", "),
		})
	}
	return rows
}

// playlistOutcome prints the summary line and turns the batch result into
// the command error: any failure is an error, and a batch where no video
// had captions is reported as no captions.
func playlistOutcome(ctx context.Context, playlist *model.Playlist, out io.Writer) error {
	completed := len(playlist.VideosByStatus(model.VideoStatusCompleted))
	noCaptions := len(playlist.VideosByStatus(model.VideoStatusNoCaptions))
	failed := len(playlist.VideosByStatus(model.VideoStatusError))
	skipped := len(playlist.VideosByStatus(model.VideoStatusSkipped))

	fmt.Fprintf(out, "Completed: %d, No captions: %d, Failed: %d, Skipped: %d\n", completed, noCaptions, failed, skipped)

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case failed > 0:
		return fmt.Errorf("%d of %d videos failed", failed, len(playlist.Videos))
	case completed == 0 && noCaptions > 0:
		return model.ErrNoCaptions
	}
	return nil
}
