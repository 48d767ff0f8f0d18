package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-subtitles/internal/caption"
	"github.com/ytget/yt-subtitles/internal/model"
)

func newTracksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <video_url>",
		Short: "List the caption tracks of a video",
		Long: `Lists the caption tracks a video offers. The KEY column is the
language argument accepted by fetch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			list, err := NewFetcherFunc(a.logger).Tracks(ctx, args[0])
			if err != nil {
				return err
			}
			if len(list.Tracks) == 0 {
				return model.ErrNoCaptions
			}

			out := cmd.OutOrStdout()
			if list.Title != "" {
				fmt.Fprintf(out, "%s (%s)\n", list.Title, list.VideoID)
			}
			return writeTable(out, []string{"#", "KEY", "LANGUAGE", "NAME", "KIND", "TRANSLATABLE"}, trackRows(list.Tracks),
				[]columnAlignment{alignRight})
		},
	}
}

func trackRows(tracks []model.CaptionTrack) [][]string {
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		kind := "manual"
		if t.IsAutoGenerated() {
			kind = "auto"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Key(),
			caption.LanguageName(t.LanguageCode),
			t.Name,
			kind,
			strconv.FormatBool(t.Translatable),
		})
	}
	return rows
}
