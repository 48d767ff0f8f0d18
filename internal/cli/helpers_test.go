package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"github.com/ytget/yt-subtitles/internal/caption"
	"github.com/ytget/yt-subtitles/internal/download"
	"github.com/ytget/yt-subtitles/internal/platform"
)

// --- Fakes --- //

type fakeFetcher struct {
	result  *caption.Result
	tracks  *caption.TrackList
	err     error
	gotURL  string
	gotLang string
	gotOpts caption.Options
}

func (f *fakeFetcher) Fetch(_ context.Context, videoURL, lang string, opts caption.Options) (*caption.Result, error) {
	f.gotURL, f.gotLang, f.gotOpts = videoURL, lang, opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeFetcher) Tracks(_ context.Context, videoURL string) (*caption.TrackList, error) {
	f.gotURL = videoURL
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

// fakeRunner writes "<template>.<lang>.<format>" like yt-dlp does, unless
// the URL is listed in noSubs or errs
type fakeRunner struct {
	mu       sync.Mutex
	noSubs   map[string]bool
	errs     map[string]error
	requests []download.Request
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{noSubs: map[string]bool{}, errs: map[string]error{}}
}

func (r *fakeRunner) Run(_ context.Context, req download.Request) (*ytdlp.Result, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	err := r.errs[req.URL]
	skip := r.noSubs[req.URL]
	r.mu.Unlock()

	if err != nil {
		return &ytdlp.Result{Stderr: "ERROR: [youtube] " + err.Error()}, errors.New("exit status 1")
	}
	if skip {
		return &ytdlp.Result{}, nil
	}
	base := strings.TrimSuffix(req.OutputTemplate, ".%(ext)s")
	path := base + "." + req.Language + "." + req.SubFormat
	if err := platform.WriteFile(path, []byte("WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n")); err != nil {
		return nil, err
	}
	return &ytdlp.Result{}, nil
}

func (r *fakeRunner) lastRequest() download.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return download.Request{}
	}
	return r.requests[len(r.requests)-1]
}

// --- Helpers --- //

// isolate keeps tests away from real config files and environment
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "YTSUBS_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
		}
	}
}

func useFetcher(t *testing.T, f caption.Fetcher) {
	t.Helper()
	original := NewFetcherFunc
	t.Cleanup(func() { NewFetcherFunc = original })
	NewFetcherFunc = func(*logrus.Logger) caption.Fetcher { return f }
}

func useRunner(t *testing.T, r download.Runner) *string {
	t.Helper()
	original := NewRunnerFunc
	t.Cleanup(func() { NewRunnerFunc = original })
	var executable string
	NewRunnerFunc = func(path string) download.Runner {
		executable = path
		return r
	}
	return &executable
}

func usePlaylist(t *testing.T, fetch platform.PlaylistFetcher) {
	t.Helper()
	original := PlaylistFetcher
	t.Cleanup(func() { PlaylistFetcher = original })
	PlaylistFetcher = fetch
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append(args, "--log-level", "error"), &stdout, &stderr, "test")
	return stdout.String(), stderr.String(), code
}
