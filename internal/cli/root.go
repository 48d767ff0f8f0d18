// Package cli implements the yt-subtitles command tree.
//
// Results go to stdout, diagnostics and logs to stderr. A missing caption
// track is reported as "No captions found" with its own exit code so that
// callers can tell it apart from a failure.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytget/yt-subtitles/internal/caption"
	"github.com/ytget/yt-subtitles/internal/config"
	"github.com/ytget/yt-subtitles/internal/download"
	"github.com/ytget/yt-subtitles/internal/logging"
	"github.com/ytget/yt-subtitles/internal/model"
	"github.com/ytget/yt-subtitles/internal/platform"
)

// Exit codes
const (
	ExitOK         = 0
	ExitError      = 1
	ExitNoCaptions = 2
)

// Result strings
const (
	NoCaptionsMessage = "No captions found"
	SuccessMessage    = "True"
	ErrorPrefix       = "Error: "
)

// AppName is the binary name
const AppName = "yt-subtitles"

// DefaultLanguageArg stands for the configured default language
const DefaultLanguageArg = "-"

// NewFetcherFunc creates the caption fetcher. Tests replace it.
var NewFetcherFunc = func(logger *logrus.Logger) caption.Fetcher {
	return caption.NewService(&youtube.Client{}, logger)
}

// NewRunnerFunc creates the yt-dlp runner. Tests replace it.
var NewRunnerFunc = func(executable string) download.Runner {
	return download.NewYTDLPRunner(executable)
}

// InstallFunc resolves or installs yt-dlp. Tests replace it.
var InstallFunc = download.Install

// PlaylistFetcher expands playlists. Tests replace it.
var PlaylistFetcher platform.PlaylistFetcher = platform.YTDLPPlaylistFetcher

// app carries state shared by all commands of one invocation
type app struct {
	settings *config.Settings
	logger   *logrus.Logger
	cfgFile  string
}

// NewRootCmd builds a fresh command tree with its own settings instance
func NewRootCmd(version string) *cobra.Command {
	a := &app{
		settings: config.NewSettings(viper.New()),
		logger:   logging.Discard(),
	}

	root := &cobra.Command{
		Use:   AppName,
		Short: "Fetch and download video subtitles",
		Long: `yt-subtitles looks up caption tracks of a video and prints them as
SRT, or has yt-dlp write subtitle files next to an output template.

A language argument of "-" uses the configured default language ("en"
unless set with "language" in the config file or YTSUBS_LANGUAGE).

Results go to stdout. Errors are printed as "Error: <message>" on stderr,
while a missing track prints "No captions found" on stdout. Exit status is
0 on success, 1 on error and 2 when the video has no captions in the
requested language.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.yt-subtitles/config.yaml or ./config.yaml)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Duration("timeout", config.DefaultTimeout, "timeout for a single video")

	root.AddCommand(
		newFetchCmd(a),
		newDownloadCmd(a),
		newTracksCmd(a),
		newPlaylistCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger. Flags bound to settings
// keys override config file and environment values when set explicitly.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.bindFlags(cmd.Flags(), map[string]string{
		"log-level": config.KeyLogLevel,
		"timeout":   config.KeyTimeout,
	}); err != nil {
		return err
	}

	if err := a.settings.Load(a.cfgFile); err != nil {
		return err
	}

	logger, err := logging.New(a.settings.GetLogLevel(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	if used := a.settings.ConfigFileUsed(); used != "" {
		a.logger.WithField("file", used).Debug("Using config file")
	}
	return nil
}

// bindFlags binds command flags to settings keys
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	v := a.settings.Viper()
	for name, key := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// language resolves a language argument, "-" or empty meaning the
// configured default
func (a *app) language(arg string) string {
	if arg = strings.TrimSpace(arg); arg == "" || arg == DefaultLanguageArg {
		return a.settings.GetLanguage()
	}
	return arg
}

// withTimeout derives the per-video context
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.settings.GetTimeout())
}

// Execute runs the command tree with args and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, version string) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return report(err, stdout, stderr)
}

// report prints the outcome of a command and maps it onto an exit code
func report(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, model.ErrNoCaptions):
		fmt.Fprintln(stdout, NoCaptionsMessage)
		return ExitNoCaptions
	default:
		fmt.Fprintf(stderr, "%s%v\n", ErrorPrefix, err)
		return ExitError
	}
}

// elapsed formats a duration for log fields
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
