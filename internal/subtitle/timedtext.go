package subtitle

import (
	"encoding/xml"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
)

// timedText covers both timedtext XML layouts YouTube serves: srv3
// (<timedtext><body><p t d>) and srv1 (<transcript><text start dur>).
type timedText struct {
	Body struct {
		Paragraphs []srv3Paragraph `xml:"p"`
	} `xml:"body"`
	Texts []srv1Text `xml:"text"`
}

type srv3Paragraph struct {
	T        string        `xml:"t,attr"`
	D        string        `xml:"d,attr"`
	Text     string        `xml:",chardata"`
	Segments []srv3Segment `xml:"s"`
}

type srv3Segment struct {
	Text string `xml:",chardata"`
}

type srv1Text struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// ParseTimedText parses YouTube timedtext XML into cues. Empty entries are
// skipped and cue text is flattened to a single line.
func ParseTimedText(data []byte) ([]Cue, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext: %w", err)
	}

	var cues []Cue
	add := func(start, dur time.Duration, text string) {
		text = cleanCaptionText(text)
		if text == "" {
			return
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: start,
			End:   start + dur,
			Text:  text,
		})
	}

	for _, p := range doc.Body.Paragraphs {
		start, err := millis(p.T)
		if err != nil {
			return nil, fmt.Errorf("paragraph start: %w", err)
		}
		// a missing duration means zero length
		dur, _ := millis(p.D)

		var sb strings.Builder
		sb.WriteString(p.Text)
		for _, s := range p.Segments {
			sb.WriteString(s.Text)
		}
		add(start, dur, sb.String())
	}

	for _, t := range doc.Texts {
		start, err := seconds(t.Start)
		if err != nil {
			return nil, fmt.Errorf("text start: %w", err)
		}
		dur, _ := seconds(t.Dur)
		add(start, dur, t.Text)
	}

	return cues, nil
}

// cleanCaptionText joins lines, collapses doubled spaces and unescapes the
// HTML entities srv1 documents carry inside already XML-decoded text.
func cleanCaptionText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "  ", " ")
	return strings.TrimSpace(html.UnescapeString(text))
}

func millis(v string) (time.Duration, error) {
	if v == "" {
		return 0, fmt.Errorf("missing value")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(f)) * time.Millisecond, nil
}

func seconds(v string) (time.Duration, error) {
	if v == "" {
		return 0, fmt.Errorf("missing value")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(f*1000)) * time.Millisecond, nil
}
