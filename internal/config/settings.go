package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/yt-subtitles/internal/platform"
)

// Settings keys
const (
	KeyOutputDir      = "output_dir"
	KeyLanguage       = "language"
	KeySubtitleFormat = "subtitle_format"
	KeyMaxParallel    = "max_parallel"
	KeyRetries        = "retries"
	KeyTimeout        = "timeout"
	KeyLogLevel       = "log_level"
	KeyYTDLPPath      = "ytdlp_path"
)

// Default values
const (
	DefaultLanguage       = "en"
	DefaultSubtitleFormat = "vtt"
	DefaultMaxParallel    = 2
	DefaultRetries        = 0
	DefaultTimeout        = 2 * time.Minute
	DefaultLogLevel       = "info"
	DefaultFallbackDir    = "/tmp/downloads"
)

// Limits
const (
	MinParallel = 1
	MaxParallel = 10
	MaxRetries  = 5
)

// Config file lookup
const (
	ConfigDirName = ".yt-subtitles"
	ConfigName    = "config"
	ConfigType    = "yaml"
	EnvPrefix     = "YTSUBS"
)

// Settings manages application configuration
type Settings struct {
	v *viper.Viper
}

// NewSettings creates a settings manager on top of v with defaults applied.
// A nil v gets a fresh viper instance.
func NewSettings(v *viper.Viper) *Settings {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeySubtitleFormat, DefaultSubtitleFormat)
	v.SetDefault(KeyMaxParallel, DefaultMaxParallel)
	v.SetDefault(KeyRetries, DefaultRetries)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	return &Settings{v: v}
}

// Load reads the config file and YTSUBS_* environment variables. With an
// empty cfgFile it looks for config.yaml in $HOME/.yt-subtitles and the
// working directory; a missing file is not an error.
func (s *Settings) Load(cfgFile string) error {
	if cfgFile != "" {
		s.v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			s.v.AddConfigPath(filepath.Join(home, ConfigDirName))
		}
		s.v.AddConfigPath(".")
		s.v.SetConfigType(ConfigType)
		s.v.SetConfigName(ConfigName)
	}

	s.v.SetEnvPrefix(EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	s.v.AutomaticEnv()

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (cfgFile == "" && os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", s.v.ConfigFileUsed(), err)
	}
	return nil
}

// ConfigFileUsed returns the config file that was read, if any
func (s *Settings) ConfigFileUsed() string {
	return s.v.ConfigFileUsed()
}

// Viper exposes the underlying instance for flag binding
func (s *Settings) Viper() *viper.Viper {
	return s.v
}

// GetOutputDirectory returns the configured output directory
func (s *Settings) GetOutputDirectory() string {
	dir := s.v.GetString(KeyOutputDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = DefaultFallbackDir
		}
		return defaultDir
	}
	return dir
}

// GetLanguage returns the default subtitle language
func (s *Settings) GetLanguage() string {
	lang := strings.TrimSpace(s.v.GetString(KeyLanguage))
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// GetSubtitleFormat returns the subtitle format requested from yt-dlp
func (s *Settings) GetSubtitleFormat() string {
	format := strings.TrimSpace(s.v.GetString(KeySubtitleFormat))
	if format == "" {
		return DefaultSubtitleFormat
	}
	return format
}

// GetMaxParallel returns the maximum number of parallel yt-dlp runs
func (s *Settings) GetMaxParallel() int {
	return clamp(s.v.GetInt(KeyMaxParallel), MinParallel, MaxParallel)
}

// GetRetries returns how often a failed yt-dlp run is retried
func (s *Settings) GetRetries() int {
	return clamp(s.v.GetInt(KeyRetries), 0, MaxRetries)
}

// GetTimeout returns the per-command timeout. Zero or negative values fall
// back to the default.
func (s *Settings) GetTimeout() time.Duration {
	timeout := s.v.GetDuration(KeyTimeout)
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// GetLogLevel returns the configured log level
func (s *Settings) GetLogLevel() string {
	level := strings.TrimSpace(s.v.GetString(KeyLogLevel))
	if level == "" {
		return DefaultLogLevel
	}
	return level
}

// GetYTDLPPath returns the yt-dlp executable, empty for the one on PATH
func (s *Settings) GetYTDLPPath() string {
	return s.v.GetString(KeyYTDLPPath)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
