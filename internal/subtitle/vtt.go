package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	vttTimingRe = regexp.MustCompile(`((?:\d{2,}:)?\d{2}:\d{2}[.,]\d{3})\s*-->\s*((?:\d{2,}:)?\d{2}:\d{2}[.,]\d{3})`)
	vttTagRe    = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTT parses WebVTT content into cues. Inline timing and styling tags
// are stripped. Lines repeated from the previous cue, as rolling
// auto-generated captions do, are dropped, and cues left empty are skipped.
func ParseVTT(content string) ([]Cue, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if !strings.HasPrefix(strings.TrimPrefix(lines[0], "\ufeff"), "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}

	var cues []Cue
	var current *Cue
	var currentLines []string
	previous := map[string]bool{}

	flush := func() {
		if current == nil {
			return
		}
		if len(currentLines) > 0 {
			current.Text = strings.Join(currentLines, "\n")
			current.Index = len(cues) + 1
			cues = append(cues, *current)
			previous = make(map[string]bool, len(currentLines))
			for _, l := range currentLines {
				previous[l] = true
			}
		}
		current = nil
		currentLines = nil
	}

	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)

		if line == "" {
			flush()
			continue
		}

		if m := vttTimingRe.FindStringSubmatch(line); len(m) == 3 {
			flush()
			start, err := parseTimestamp(m[1])
			if err != nil {
				return nil, err
			}
			end, err := parseTimestamp(m[2])
			if err != nil {
				return nil, err
			}
			current = &Cue{Start: start, End: end}
			continue
		}

		// header fields, NOTE blocks and cue identifiers
		if current == nil {
			continue
		}

		text := strings.TrimSpace(vttTagRe.ReplaceAllString(line, ""))
		if text == "" || previous[text] {
			continue
		}
		currentLines = append(currentLines, text)
	}
	flush()

	return cues, nil
}

// RenderVTT renders cues as WebVTT
func RenderVTT(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatTimestamp(cue.Start, "."), formatTimestamp(cue.End, ".")))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// ConvertVTT converts WebVTT content into the target format
func ConvertVTT(content string, target Format) (string, error) {
	cues, err := ParseVTT(content)
	if err != nil {
		return "", fmt.Errorf("parse vtt: %w", err)
	}
	return Render(cues, target)
}
