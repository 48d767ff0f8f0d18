package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-subtitles/internal/subtitle"
)

const sampleVTT = "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n"

// fakeRunner imitates yt-dlp: it writes <template>.<lang>.<format> for
// every language in files.
type fakeRunner struct {
	mu       sync.Mutex
	requests []Request
	files    []string
	errs     []error
	stderr   string
}

func (f *fakeRunner) Run(_ context.Context, req Request) (*ytdlp.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return &ytdlp.Result{Stderr: f.stderr}, err
		}
	}

	for _, lang := range f.files {
		path := req.OutputTemplate + "." + lang + "." + req.SubFormat
		if err := os.WriteFile(path, []byte(sampleVTT), 0644); err != nil {
			return nil, err
		}
	}
	return &ytdlp.Result{}, nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestDownload_WritesFile(t *testing.T) {
	runner := &fakeRunner{files: []string{"en"}}
	svc := NewService(runner, nil)
	out := filepath.Join(t.TempDir(), "subs", "video")

	res, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", out)
	require.NoError(t, err)

	assert.True(t, res.Detected)
	assert.Equal(t, []string{out + ".en.vtt"}, res.Files)
	assert.Equal(t, 1, res.Attempts)
	assert.FileExists(t, out+".en.vtt")

	require.Len(t, runner.requests, 1)
	req := runner.requests[0]
	assert.Equal(t, "en", req.Language)
	assert.Equal(t, DefaultSubFormat, req.SubFormat)
	assert.Equal(t, out, req.OutputTemplate)
}

func TestDownload_NoCaptions(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, nil)

	_, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "xx", filepath.Join(t.TempDir(), "video"))
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestDownload_ExistingFileKept(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "video")
	existing := out + ".en.vtt"
	require.NoError(t, os.WriteFile(existing, []byte(sampleVTT), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(existing, old, old))

	// succeeds without writing, like yt-dlp with an already present file
	svc := NewService(&fakeRunner{}, nil, WithConversion(subtitle.FormatSRT))

	res, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", out)
	require.NoError(t, err)
	assert.Equal(t, []string{existing}, res.Files)
	assert.Equal(t, []string{out + ".en.srt"}, res.Converted)

	// a stale file of another language does not count
	_, err = svc.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "de", out)
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestDownload_UndetectableTemplate(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, nil)

	res, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", "/nonexistent/%(channel)s/%(title)s.%(ext)s")
	require.NoError(t, err)
	assert.False(t, res.Detected)
	assert.Empty(t, res.Files)
}

func TestDownload_Validation(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil)

	_, err := svc.Download(context.Background(), " ", "en", "/tmp/out")
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = svc.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en", "")
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestDownload_ErrorCarriesYTDLPMessage(t *testing.T) {
	runner := &fakeRunner{
		errs:   []error{errors.New("exit status 1")},
		stderr: "WARNING: something\nERROR: [youtube] abc: Video unavailable\n",
	}
	svc := NewService(runner, nil)

	_, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=abc", "en", filepath.Join(t.TempDir(), "video"))
	require.Error(t, err)
	assert.Equal(t, "[youtube] abc: Video unavailable: exit status 1", err.Error())
}

func TestDownload_Retries(t *testing.T) {
	runner := &fakeRunner{
		files: []string{"en"},
		errs:  []error{errors.New("exit status 1"), nil},
	}
	svc := NewService(runner, nil, WithRetries(2, time.Millisecond))

	res, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=abc", "en", filepath.Join(t.TempDir(), "video"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, runner.calls())
}

func TestDownload_RetriesExhausted(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("a"), errors.New("b")}}
	svc := NewService(runner, nil, WithRetries(1, time.Millisecond))

	_, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=abc", "en", filepath.Join(t.TempDir(), "video"))
	require.Error(t, err)
	assert.Equal(t, "b", err.Error())
	assert.Equal(t, 2, runner.calls())
}

func TestDownload_RetryStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("a"), errors.New("b")}}
	svc := NewService(runner, nil, WithRetries(1, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Download(ctx, "https://www.youtube.com/watch?v=abc", "en", filepath.Join(t.TempDir(), "video"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runner.calls())
}

func TestDownload_ConvertToSRT(t *testing.T) {
	runner := &fakeRunner{files: []string{"en"}}
	svc := NewService(runner, nil, WithConversion(subtitle.FormatSRT))
	out := filepath.Join(t.TempDir(), "video")

	res, err := svc.Download(context.Background(), "https://www.youtube.com/watch?v=abc", "en", out)
	require.NoError(t, err)
	require.Equal(t, []string{out + ".en.srt"}, res.Converted)

	data, err := os.ReadFile(out + ".en.srt")
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\nhello\n", string(data))
}

func TestWithRetries_Clamps(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil, WithRetries(-1, 0))
	assert.Equal(t, 0, svc.retries)

	svc = NewService(&fakeRunner{}, nil, WithRetries(100, 0))
	assert.Equal(t, MaxRetries, svc.retries)
}

func TestWithSubFormat(t *testing.T) {
	svc := NewService(&fakeRunner{}, nil, WithSubFormat(""))
	assert.Equal(t, DefaultSubFormat, svc.subFormat)

	svc = NewService(&fakeRunner{}, nil, WithSubFormat("srv3"))
	assert.Equal(t, "srv3", svc.subFormat)
}

func TestLastErrorLine(t *testing.T) {
	assert.Equal(t, "", lastErrorLine(""))
	assert.Equal(t, "second", lastErrorLine("ERROR: first\nERROR: second\n[info] done"))
	assert.True(t, strings.HasPrefix(describeRunError(nil, errors.New("x")).Error(), "x"))
}

func TestYTDLPRunner_Command(t *testing.T) {
	runner := NewYTDLPRunner("/opt/yt-dlp")
	cmd := runner.Command(Request{
		URL:            "https://www.youtube.com/watch?v=abc",
		Language:       "en",
		OutputTemplate: "/tmp/out",
		SubFormat:      "vtt",
	}).BuildCommand(context.Background(), "https://www.youtube.com/watch?v=abc")

	args := strings.Join(cmd.Args, " ")
	for _, flag := range []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs en",
		"--sub-format vtt",
		"--output /tmp/out",
		"--force-overwrites",
	} {
		assert.Contains(t, args, flag)
	}
}
