package download

import (
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

const ytdlpErrorPrefix = "ERROR:"

// describeRunError enriches a failed run with the last yt-dlp error line
func describeRunError(res *ytdlp.Result, err error) error {
	if res == nil {
		return err
	}
	line := lastErrorLine(res.Stderr)
	if line == "" || strings.Contains(err.Error(), line) {
		return err
	}
	return fmt.Errorf("%s: %w", line, err)
}

// lastErrorLine returns the message of the last "ERROR:" line in output
func lastErrorLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, ytdlpErrorPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, ytdlpErrorPrefix))
		}
	}
	return ""
}
