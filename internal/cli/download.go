package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-subtitles/internal/config"
	"github.com/ytget/yt-subtitles/internal/download"
	"github.com/ytget/yt-subtitles/internal/subtitle"
)

// downloadFlags are shared by download and playlist
type downloadFlags struct {
	convert string
	install bool
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("sub-format", config.DefaultSubtitleFormat, "subtitle format requested from yt-dlp")
	flags.Int("retries", config.DefaultRetries, "retries for a failed yt-dlp run")
	flags.String("ytdlp", "", "path to the yt-dlp executable")
	flags.StringVar(&f.convert, "convert", "", "convert written vtt files (srt)")
	flags.BoolVar(&f.install, "install", false, "download yt-dlp when it is not installed")
}

// newDownloader builds the download service from settings and flags
func (a *app) newDownloader(cmd *cobra.Command, f *downloadFlags) (*download.Service, error) {
	if err := a.bindFlags(cmd.Flags(), map[string]string{
		"sub-format": config.KeySubtitleFormat,
		"retries":    config.KeyRetries,
		"ytdlp":      config.KeyYTDLPPath,
	}); err != nil {
		return nil, err
	}

	opts := []download.Option{
		download.WithSubFormat(a.settings.GetSubtitleFormat()),
		download.WithRetries(a.settings.GetRetries(), download.DefaultRetryDelay),
	}
	if f.convert != "" {
		target, err := subtitle.ParseFormat(f.convert)
		if err != nil {
			return nil, err
		}
		opts = append(opts, download.WithConversion(target))
	}

	executable := a.settings.GetYTDLPPath()
	if f.install && executable == "" {
		path, err := InstallFunc(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to install yt-dlp: %w", err)
		}
		a.logger.WithField("path", path).Debug("Using installed yt-dlp")
		executable = path
	}

	return download.NewService(NewRunnerFunc(executable), a.logger, opts...), nil
}

func newDownloadCmd(a *app) *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download <video_url> <lang> <output_path>",
		Short: "Have yt-dlp write the subtitle file for a language",
		Long: `Runs yt-dlp without downloading the video and writes the subtitle or
auto-generated subtitle for the language to the output path. The output
path is a yt-dlp output template; yt-dlp appends the language and format,
so "subs/talk" becomes "subs/talk.en.vtt".

Prints "True" when the subtitle was written.

Examples:
  yt-subtitles download https://www.youtube.com/watch?v=dQw4w9WgXcQ en subs/talk
  yt-subtitles download dQw4w9WgXcQ de "subs/%(title)s" --convert srt`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoURL, lang, output := args[0], a.language(args[1]), args[2]

			svc, err := a.newDownloader(cmd, &f)
			if err != nil {
				return err
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			start := time.Now()
			result, err := svc.Download(ctx, videoURL, lang, output)
			if err != nil {
				return err
			}

			fields := logrus.Fields{
				"files":    len(result.Files),
				"attempts": result.Attempts,
				"elapsed":  elapsed(start),
			}
			if !result.Detected {
				a.logger.WithFields(fields).Warn("Output directory has template fields, written files were not verified")
			} else {
				a.logger.WithFields(fields).Info("Subtitles downloaded")
			}
			for _, file := range append(result.Files, result.Converted...) {
				a.logger.WithField("file", file).Debug("Subtitle file written")
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), SuccessMessage)
			return err
		},
	}

	f.register(cmd)
	return cmd
}
