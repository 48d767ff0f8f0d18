package caption

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/ytget/yt-subtitles/internal/model"
)

var englishNames = display.Tags(language.English)

// LanguageName returns the English display name for a caption language
// code, or an empty string when the code is not a known BCP 47 tag.
func LanguageName(code string) string {
	code, _ = model.SplitKey(code)
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return englishNames.Name(tag)
}

// matchTrack picks the closest track for lang among tracks of the same
// kind. Manual tracks are only matched by manual keys and auto-generated
// tracks by "a." keys. The match must be at least of High confidence.
func matchTrack(tracks []model.CaptionTrack, lang string) (model.CaptionTrack, bool) {
	code, auto := model.SplitKey(lang)
	want, err := language.Parse(code)
	if err != nil {
		return model.CaptionTrack{}, false
	}

	var candidates []model.CaptionTrack
	var tags []language.Tag
	for _, t := range tracks {
		if t.IsAutoGenerated() != auto {
			continue
		}
		tag, err := language.Parse(t.LanguageCode)
		if err != nil {
			continue
		}
		candidates = append(candidates, t)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return model.CaptionTrack{}, false
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf < language.High || idx < 0 || idx >= len(candidates) {
		return model.CaptionTrack{}, false
	}
	return candidates[idx], true
}
