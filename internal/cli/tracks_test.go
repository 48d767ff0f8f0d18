package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-subtitles/internal/caption"
	"github.com/ytget/yt-subtitles/internal/model"
)

func TestTracksCommand(t *testing.T) {
	isolate(t)
	useFetcher(t, &fakeFetcher{tracks: &caption.TrackList{
		VideoID: "abc",
		Title:   "Talk",
		Tracks: []model.CaptionTrack{
			{LanguageCode: "en", Name: "English", Translatable: true},
			{LanguageCode: "en", Name: "English (auto-generated)", Kind: model.AutoGeneratedKind},
			{LanguageCode: "pt-BR", Name: "Portuguese (Brazil)"},
		},
	}})

	stdout, stderr, code := run(t, "tracks", "https://youtu.be/abc")
	require.Equal(t, ExitOK, code, stderr)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Talk (abc)", lines[0])
	assert.Equal(t, "#\tKEY\tLANGUAGE\tNAME\tKIND\tTRANSLATABLE", lines[1])
	assert.Equal(t, "1\ten\tEnglish\tEnglish\tmanual\ttrue", lines[2])
	assert.Equal(t, "2\ta.en\tEnglish\tEnglish (auto-generated)\tauto\tfalse", lines[3])
	assert.Equal(t, "3\tpt-BR\tBrazilian Portuguese\tPortuguese (Brazil)\tmanual\tfalse", lines[4])
}

func TestTracksCommand_NoTracks(t *testing.T) {
	isolate(t)
	useFetcher(t, &fakeFetcher{tracks: &caption.TrackList{VideoID: "abc"}})

	stdout, _, code := run(t, "tracks", "abc")

	assert.Equal(t, ExitNoCaptions, code)
	assert.Equal(t, NoCaptionsMessage+"\n", stdout)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"#", "KEY"}, [][]string{{"1", "en"}, {"2"}}, []columnAlignment{alignRight})

	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "en")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestRenderPlain(t *testing.T) {
	out := renderPlain([]string{"A", "B"}, [][]string{{"1", "2"}, {"3"}})
	assert.Equal(t, "A\tB\n1\t2\n3\t", out)
	assert.Empty(t, renderPlain(nil, [][]string{{"x"}}))
}
