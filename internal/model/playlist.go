package model

import (
	"time"
)

// PlaylistStatus represents the current status of a playlist
type PlaylistStatus string

const (
	PlaylistStatusParsing     PlaylistStatus = "parsing"
	PlaylistStatusReady       PlaylistStatus = "ready"
	PlaylistStatusDownloading PlaylistStatus = "downloading"
	PlaylistStatusCompleted   PlaylistStatus = "completed"
	PlaylistStatusError       PlaylistStatus = "error"
)

// VideoStatus represents the subtitle status of a single video in playlist
type VideoStatus string

const (
	VideoStatusPending     VideoStatus = "pending"
	VideoStatusDownloading VideoStatus = "downloading"
	VideoStatusCompleted   VideoStatus = "completed"
	VideoStatusNoCaptions  VideoStatus = "no_captions"
	VideoStatusError       VideoStatus = "error"
	VideoStatusSkipped     VideoStatus = "skipped"
)

// VideoStatusFromTask maps a finished task status onto the playlist video status
func VideoStatusFromTask(status TaskStatus) VideoStatus {
	switch status {
	case TaskStatusPending:
		return VideoStatusPending
	case TaskStatusRunning, TaskStatusCancelling:
		return VideoStatusDownloading
	case TaskStatusCompleted:
		return VideoStatusCompleted
	case TaskStatusNoCaptions:
		return VideoStatusNoCaptions
	case TaskStatusCancelled:
		return VideoStatusSkipped
	default:
		return VideoStatusError
	}
}

// PlaylistVideo represents a single video in a playlist
type PlaylistVideo struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	URL       string      `json:"url"`
	Status    VideoStatus `json:"status"`
	TaskID    string      `json:"task_id,omitempty"`
	Files     []string    `json:"files,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Playlist represents a YouTube playlist with its videos
type Playlist struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Videos      []*PlaylistVideo `json:"videos"`
	Status      PlaylistStatus   `json:"status"`
	TotalVideos int              `json:"total_videos"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	now := time.Now()
	return &Playlist{
		URL:       url,
		Status:    PlaylistStatusParsing,
		Videos:    make([]*PlaylistVideo, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddVideo adds a video to the playlist
func (p *Playlist) AddVideo(video *PlaylistVideo) {
	p.Videos = append(p.Videos, video)
	p.TotalVideos = len(p.Videos)
	p.UpdatedAt = time.Now()
}

// Video returns the playlist video with the given ID
func (p *Playlist) Video(videoID string) (*PlaylistVideo, bool) {
	for _, video := range p.Videos {
		if video.ID == videoID {
			return video, true
		}
	}
	return nil, false
}

// UpdateStatus updates the playlist status
func (p *Playlist) UpdateStatus(status PlaylistStatus) {
	p.Status = status
	p.UpdatedAt = time.Now()
}

// ApplyTask copies the outcome of a subtitle task onto the matching video
func (p *Playlist) ApplyTask(videoID string, task *SubtitleTask) {
	video, ok := p.Video(videoID)
	if !ok {
		return
	}
	video.TaskID = task.ID
	video.Status = VideoStatusFromTask(task.Status)
	video.Files = append([]string(nil), task.Files...)
	video.Error = task.LastError
	video.UpdatedAt = time.Now()
	p.UpdatedAt = video.UpdatedAt
}

// VideosByStatus returns all videos with the given status
func (p *Playlist) VideosByStatus(status VideoStatus) []*PlaylistVideo {
	var out []*PlaylistVideo
	for _, video := range p.Videos {
		if video.Status == status {
			out = append(out, video)
		}
	}
	return out
}

// Progress returns the share of videos that reached a final status, as percentage
func (p *Playlist) Progress() float64 {
	if p.TotalVideos == 0 {
		return 0
	}

	done := 0
	for _, video := range p.Videos {
		switch video.Status {
		case VideoStatusPending, VideoStatusDownloading:
		default:
			done++
		}
	}
	return float64(done) / float64(p.TotalVideos) * 100
}

// IsReadyForDownload checks if playlist is ready to start downloading
func (p *Playlist) IsReadyForDownload() bool {
	return p.Status == PlaylistStatusReady && p.TotalVideos > 0
}

// HasErrors checks if any video has errors
func (p *Playlist) HasErrors() bool {
	return len(p.VideosByStatus(VideoStatusError)) > 0
}
