package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// Format names a subtitle text format
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatSRT, FormatVTT:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q (want srt or vtt)", name)
	}
}

// Cue is one timed subtitle entry
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Render renders cues in the given format
func Render(cues []Cue, format Format) (string, error) {
	switch format {
	case FormatSRT:
		return RenderSRT(cues), nil
	case FormatVTT:
		return RenderVTT(cues), nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q", format)
	}
}

// formatTimestamp formats d as HH:MM:SS<sep>mmm
func formatTimestamp(d time.Duration, sep string) string {
	if d < 0 {
		d = 0
	}
	totalMs := d.Milliseconds()
	h := totalMs / 3600000
	totalMs %= 3600000
	m := totalMs / 60000
	totalMs %= 60000
	s := totalMs / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}

// parseTimestamp accepts HH:MM:SS.mmm, HH:MM:SS,mmm and MM:SS.mmm
func parseTimestamp(value string) (time.Duration, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	var h, m, s, ms int
	parts := strings.Split(value, ":")
	var err error
	switch len(parts) {
	case 3:
		_, err = fmt.Sscanf(value, "%d:%d:%d.%d", &h, &m, &s, &ms)
	case 2:
		_, err = fmt.Sscanf(value, "%d:%d.%d", &m, &s, &ms)
	default:
		err = fmt.Errorf("unexpected field count")
	}
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
