package model

import "testing"

func TestTaskStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusRunning, true},
		{TaskStatusCancelling, true},
		{TaskStatusCancelled, false},
		{TaskStatusCompleted, false},
		{TaskStatusNoCaptions, false},
		{TaskStatusError, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusRunning, false},
		{TaskStatusCancelling, false},
		{TaskStatusCancelled, true},
		{TaskStatusCompleted, true},
		{TaskStatusNoCaptions, true},
		{TaskStatusError, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_String(t *testing.T) {
	status := TaskStatusNoCaptions
	expected := "NoCaptions"
	result := status.String()

	if result != expected {
		t.Errorf("TaskStatus.String() = %s, expected %s", result, expected)
	}
}

func TestVideoStatusFromTask(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected VideoStatus
	}{
		{TaskStatusPending, VideoStatusPending},
		{TaskStatusRunning, VideoStatusDownloading},
		{TaskStatusCompleted, VideoStatusCompleted},
		{TaskStatusNoCaptions, VideoStatusNoCaptions},
		{TaskStatusCancelled, VideoStatusSkipped},
		{TaskStatusError, VideoStatusError},
	}

	for _, test := range tests {
		if got := VideoStatusFromTask(test.status); got != test.expected {
			t.Errorf("VideoStatusFromTask(%s) = %s, expected %s", test.status, got, test.expected)
		}
	}
}
