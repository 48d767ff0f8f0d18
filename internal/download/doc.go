package download

// Package download implements the subtitle download pipeline built on top
// of yt-dlp (via github.com/lrstanley/go-ytdlp): a single skip-download
// subtitle run, optional VTT conversion, and a bounded-parallel task queue
// used for batches such as playlists.
