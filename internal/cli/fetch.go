package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-subtitles/internal/caption"
	"github.com/ytget/yt-subtitles/internal/subtitle"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		format   string
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <video_url> <lang>",
		Short: "Print the caption track for a language as SRT",
		Long: `Looks up the caption track for a language code and prints it.

Manual tracks are addressed by their code ("en"), auto-generated tracks
with an "a." prefix ("a.en"). Use the tracks command to list the codes a
video offers.

Examples:
  yt-subtitles fetch https://www.youtube.com/watch?v=dQw4w9WgXcQ en
  yt-subtitles fetch dQw4w9WgXcQ a.en --format vtt
  yt-subtitles fetch dQw4w9WgXcQ en-GB --fallback
  yt-subtitles fetch dQw4w9WgXcQ -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoURL, lang := args[0], a.language(args[1])

			f, err := subtitle.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			start := time.Now()
			fetcher := NewFetcherFunc(a.logger)
			result, err := fetcher.Fetch(ctx, videoURL, lang, caption.Options{
				Format:   f,
				Fallback: fallback,
			})
			if err != nil {
				return err
			}

			a.logger.WithFields(logrus.Fields{
				"video":   result.VideoID,
				"track":   result.Track.Key(),
				"cues":    result.Cues,
				"elapsed": elapsed(start),
			}).Info("Captions fetched")

			_, err = fmt.Fprint(cmd.OutOrStdout(), result.Text)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", string(subtitle.FormatSRT), "output format (srt, vtt)")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "use the closest available language when the exact track is missing")
	return cmd
}
