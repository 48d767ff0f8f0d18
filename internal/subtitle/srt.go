package subtitle

import (
	"fmt"
	"strings"
)

// RenderSRT renders cues as SubRip text. Sequence numbers start at 1.
func RenderSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatTimestamp(cue.Start, ","), formatTimestamp(cue.End, ",")))
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
