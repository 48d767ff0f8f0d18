package model

// TaskStatus represents the status of a subtitle download task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means yt-dlp is running for the task
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusCancelling means a cancel was requested and the run is winding down
	TaskStatusCancelling TaskStatus = "Cancelling"

	// TaskStatusCancelled means the task was cancelled before it finished
	TaskStatusCancelled TaskStatus = "Cancelled"

	// TaskStatusCompleted means at least one subtitle file was written
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusNoCaptions means the run succeeded but no track matched the language
	TaskStatusNoCaptions TaskStatus = "NoCaptions"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusRunning || ts == TaskStatusCancelling
}

// IsFinished returns true if the task reached a terminal state
func (ts TaskStatus) IsFinished() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusNoCaptions, TaskStatusCancelled, TaskStatusError:
		return true
	}
	return false
}
