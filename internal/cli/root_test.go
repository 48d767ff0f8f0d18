package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-subtitles/internal/config"
	"github.com/ytget/yt-subtitles/internal/model"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "ok", err: nil, wantCode: ExitOK},
		{name: "no captions", err: model.ErrNoCaptions, wantCode: ExitNoCaptions, wantStdout: "No captions found\n"},
		{name: "wrapped no captions", err: fmt.Errorf("video abc: %w", model.ErrNoCaptions), wantCode: ExitNoCaptions, wantStdout: "No captions found\n"},
		{name: "error", err: errors.New("boom"), wantCode: ExitError, wantStderr: "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := report(tt.err, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	isolate(t)
	useFetcher(t, &fakeFetcher{})

	var stdout, stderr bytes.Buffer
	code := Execute(t.Context(), []string{"fetch", "abc", "en", "--log-level", "loud"}, &stdout, &stderr, "test")

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), `invalid log level "loud"`)
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, "translate")

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, ErrorPrefix)
}

func TestRootCommand_Version(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	code := Execute(t.Context(), []string{"--version"}, &stdout, &stderr, "1.2.3")

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout.String(), "1.2.3")
}

func TestApp_TimeoutFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("YTSUBS_TIMEOUT", "5s")

	a := &app{settings: config.NewSettings(viper.New())}
	require.NoError(t, a.settings.Load(""))

	ctx, cancel := a.withTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestRootCommand_HelpDescribesStreams(t *testing.T) {
	long := NewRootCmd("test").Long

	assert.Contains(t, long, `"Error: <message>" on stderr`)
	assert.Contains(t, long, `"No captions found" on stdout`)
	assert.Contains(t, long, "2 when the video has no")
}
