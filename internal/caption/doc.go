// Package caption fetches a video's caption track for a language code
// through github.com/kkdai/youtube/v2 and renders it as subtitle text.
package caption
