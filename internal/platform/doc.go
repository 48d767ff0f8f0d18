package platform

// Package platform contains OS and external tooling glue: filesystem
// helpers, discovery of subtitle files yt-dlp wrote for an output template,
// and playlist expansion via github.com/ytget/ytdlp/v2.
