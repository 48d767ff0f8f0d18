package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Output template markers
const (
	TemplateFieldPrefix = "%("
	ExtField            = ".%(ext)s"
	AllLanguages        = "all"
	DownloadsDirName    = "Downloads"
)

var plainLanguage = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DownloadsDirName), nil
}

// TemplateDir returns the directory part of an output template and whether
// it is literal, i.e. contains no %(field)s placeholders.
func TemplateDir(template string) (string, bool) {
	dir := filepath.Dir(template)
	return dir, !strings.Contains(dir, TemplateFieldPrefix)
}

// templatePrefix returns the literal leading part of the template file name
// that every file yt-dlp derives from it shares. A template without fields
// yields "<stem>." since yt-dlp appends ".<lang>.<ext>" to it.
func templatePrefix(template string) string {
	base := filepath.Base(template)
	if idx := strings.Index(base, TemplateFieldPrefix); idx >= 0 {
		return base[:idx]
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "."
}

// templateStem returns the file name yt-dlp derives subtitle names from,
// and false when it still holds fields other than a trailing extension.
func templateStem(template string) (string, bool) {
	base := filepath.Base(template)
	if strings.HasSuffix(base, ExtField) {
		base = strings.TrimSuffix(base, ExtField)
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base, !strings.Contains(base, TemplateFieldPrefix)
}

// ExpectedSubtitleFile returns the path yt-dlp writes the lang subtitle of
// template to. The boolean is false when the path cannot be known, e.g.
// for templates with fields or language selectors like "all" or "en.*".
func ExpectedSubtitleFile(template, lang, ext string) (string, bool) {
	dir, ok := TemplateDir(template)
	if !ok || lang == AllLanguages || !plainLanguage.MatchString(lang) {
		return "", false
	}
	stem, ok := templateStem(template)
	if !ok || stem == "" {
		return "", false
	}
	return filepath.Join(dir, stem+"."+lang+"."+strings.TrimPrefix(ext, ".")), true
}

// FindSubtitleFiles lists subtitle files with extension ext that were
// written for template at or after since. The boolean result is false when
// the template directory is not literal and discovery is impossible.
func FindSubtitleFiles(template, ext string, since time.Time) ([]string, bool, error) {
	dir, ok := TemplateDir(template)
	if !ok {
		return nil, false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, true, nil
		}
		return nil, true, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	prefix := templatePrefix(template)
	suffix := "." + strings.TrimPrefix(ext, ".")
	// coarse filesystem timestamps
	since = since.Truncate(time.Second)

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, true, nil
}

// ReplaceExt swaps the extension of path for ext
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.TrimPrefix(ext, ".")
}

// WriteFile writes data to path, creating the parent directory
func WriteFile(path string, data []byte) error {
	if err := CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
