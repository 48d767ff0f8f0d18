package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ytget/yt-subtitles/internal/model"
)

// Queue limits
const (
	DefaultMaxParallel = 2
	MinParallel        = 1
	MaxParallel        = 10
	TaskIDPrefix       = "task-"
)

// Queue runs subtitle downloads with bounded parallelism
type Queue struct {
	downloader  SubtitleDownloader
	ctx         context.Context
	tasks       map[string]*model.SubtitleTask
	order       []string
	cancels     map[string]context.CancelFunc
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	pending     sync.WaitGroup
	onUpdate    func(model.SubtitleTask) // callback for progress reporting
	logger      *logrus.Logger
}

// NewQueue creates a new queue. Tasks run under ctx; cancelling it cancels
// every running and pending task.
func NewQueue(ctx context.Context, downloader SubtitleDownloader, maxParallel int, logger *logrus.Logger) *Queue {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Queue{
		downloader:  downloader,
		ctx:         ctx,
		tasks:       make(map[string]*model.SubtitleTask),
		cancels:     make(map[string]context.CancelFunc),
		maxParallel: clampParallel(maxParallel),
		logger:      logger,
	}
}

// SetUpdateCallback sets the callback function for task updates
func (q *Queue) SetUpdateCallback(callback func(model.SubtitleTask)) {
	q.tasksMutex.Lock()
	defer q.tasksMutex.Unlock()
	q.onUpdate = callback
}

// AddTask queues a subtitle download
func (q *Queue) AddTask(url, lang, outputTemplate string) (*model.SubtitleTask, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	q.tasksMutex.Lock()
	for _, task := range q.tasks {
		if task.URL == url && task.Language == lang && !task.Status.IsFinished() {
			q.tasksMutex.Unlock()
			return nil, fmt.Errorf("task already exists for URL: %s", url)
		}
	}

	task := &model.SubtitleTask{
		ID:             generateTaskID(),
		URL:            url,
		Language:       lang,
		OutputTemplate: outputTemplate,
		Status:         model.TaskStatusPending,
		StartedAt:      time.Now(),
	}
	q.tasks[task.ID] = task
	q.order = append(q.order, task.ID)
	q.pending.Add(1)
	snapshot := *task
	q.tasksMutex.Unlock()

	q.startPendingTasks()
	return &snapshot, nil
}

// GetTask returns a snapshot of a task by ID
func (q *Queue) GetTask(id string) (model.SubtitleTask, bool) {
	q.tasksMutex.RLock()
	defer q.tasksMutex.RUnlock()
	task, exists := q.tasks[id]
	if !exists {
		return model.SubtitleTask{}, false
	}
	return *task, true
}

// GetAllTasks returns snapshots of all tasks in insertion order
func (q *Queue) GetAllTasks() []model.SubtitleTask {
	q.tasksMutex.RLock()
	defer q.tasksMutex.RUnlock()

	tasks := make([]model.SubtitleTask, 0, len(q.order))
	for _, id := range q.order {
		tasks = append(tasks, *q.tasks[id])
	}
	return tasks
}

// CancelTask cancels a pending or running task
func (q *Queue) CancelTask(id string) error {
	q.tasksMutex.Lock()

	task, exists := q.tasks[id]
	if !exists {
		q.tasksMutex.Unlock()
		return fmt.Errorf("task not found: %s", id)
	}

	switch {
	case task.Status == model.TaskStatusPending:
		task.Status = model.TaskStatusCancelled
		task.FinishedAt = time.Now()
		q.tasksMutex.Unlock()
		q.notifyUpdate(task)
		q.pending.Done()
		return nil
	case task.Status.IsActive():
		task.Status = model.TaskStatusCancelling
		cancel := q.cancels[id]
		q.tasksMutex.Unlock()
		q.notifyUpdate(task)
		if cancel != nil {
			cancel()
		}
		return nil
	default:
		q.tasksMutex.Unlock()
		return fmt.Errorf("task is already finished: %s", task.Status)
	}
}

// Wait blocks until every queued task reached a terminal state
func (q *Queue) Wait() {
	q.pending.Wait()
}

// startPendingTasks starts pending tasks in insertion order while there is capacity
func (q *Queue) startPendingTasks() {
	q.tasksMutex.Lock()
	var started []model.SubtitleTask
	for _, id := range q.order {
		if q.activeCount >= q.maxParallel {
			break
		}
		task := q.tasks[id]
		if task.Status != model.TaskStatusPending {
			continue
		}
		ctx, cancel := context.WithCancel(q.ctx)
		q.cancels[id] = cancel
		task.Status = model.TaskStatusRunning
		q.activeCount++
		started = append(started, *task)
		go q.runTask(ctx, task)
	}
	callback := q.onUpdate
	q.tasksMutex.Unlock()

	if callback != nil {
		for _, snapshot := range started {
			callback(snapshot)
		}
	}
}

// runTask downloads the subtitles of a task and records the outcome
func (q *Queue) runTask(ctx context.Context, task *model.SubtitleTask) {
	defer func() {
		q.tasksMutex.Lock()
		q.activeCount--
		if cancel, ok := q.cancels[task.ID]; ok {
			cancel()
			delete(q.cancels, task.ID)
		}
		q.tasksMutex.Unlock()

		q.notifyUpdate(task)
		q.pending.Done()

		// Try to start next pending task
		q.startPendingTasks()
	}()

	result, err := q.downloader.Download(ctx, task.URL, task.Language, task.OutputTemplate)

	q.tasksMutex.Lock()
	defer q.tasksMutex.Unlock()

	task.FinishedAt = time.Now()
	if result != nil {
		task.Attempts = result.Attempts
		task.Files = append(append([]string(nil), result.Files...), result.Converted...)
	}

	switch {
	case err == nil:
		task.Status = model.TaskStatusCompleted
	case errors.Is(err, model.ErrNoCaptions):
		task.Status = model.TaskStatusNoCaptions
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		task.Status = model.TaskStatusCancelled
		task.LastError = err.Error()
	default:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		q.logger.WithError(err).WithField("url", task.URL).Warn("Subtitle task failed")
	}
}

// notifyUpdate calls the update callback if set
func (q *Queue) notifyUpdate(task *model.SubtitleTask) {
	q.tasksMutex.RLock()
	callback := q.onUpdate
	snapshot := *task
	q.tasksMutex.RUnlock()

	if callback != nil {
		callback(snapshot)
	}
}

func clampParallel(n int) int {
	if n < MinParallel {
		return MinParallel
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}
