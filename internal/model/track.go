package model

import "strings"

// AutoGeneratedKind is the track kind YouTube uses for speech-recognition captions.
const AutoGeneratedKind = "asr"

// AutoGeneratedPrefix marks lookup keys of auto-generated tracks, e.g. "a.en".
const AutoGeneratedPrefix = "a."

// CaptionTrack describes one caption track offered for a video
type CaptionTrack struct {
	LanguageCode string
	Name         string
	Kind         string
	Translatable bool
	BaseURL      string
}

// IsAutoGenerated reports whether the track was produced by speech recognition
func (t CaptionTrack) IsAutoGenerated() bool {
	return t.Kind == AutoGeneratedKind
}

// Key returns the lookup key for the track: the language code for manual
// tracks and "a.<code>" for auto-generated ones.
func (t CaptionTrack) Key() string {
	if t.IsAutoGenerated() {
		return AutoGeneratedPrefix + t.LanguageCode
	}
	return t.LanguageCode
}

// SplitKey splits a lookup key into its language code and whether it
// addresses an auto-generated track.
func SplitKey(key string) (code string, auto bool) {
	if strings.HasPrefix(key, AutoGeneratedPrefix) {
		return strings.TrimPrefix(key, AutoGeneratedPrefix), true
	}
	return key, false
}
