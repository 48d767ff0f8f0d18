// Package subtitle holds the cue model shared by the caption services and
// the converters between YouTube timedtext XML, SubRip (SRT) and WebVTT.
package subtitle
