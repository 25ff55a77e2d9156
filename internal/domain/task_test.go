package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTask() Task {
	return Task{
		ProjectID: "proj-1",
		Title:     "Write API",
		Priority:  PriorityNormal,
		Status:    TaskPending,
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(*Task) {}, false},
		{"missing project", func(t *Task) { t.ProjectID = "" }, true},
		{"blank title", func(t *Task) { t.Title = " " }, true},
		{"bad priority", func(t *Task) { t.Priority = "urgent" }, true},
		{"bad status", func(t *Task) { t.Status = "todo" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			tc.mutate(&task)
			if tc.wantErr {
				assert.Error(t, task.Validate())
			} else {
				assert.NoError(t, task.Validate())
			}
		})
	}
}

func TestTask_ToggledStatus(t *testing.T) {
	task := validTask()
	assert.Equal(t, TaskCompleted, task.ToggledStatus())

	task.Status = TaskInProgress
	assert.Equal(t, TaskCompleted, task.ToggledStatus())

	task.Status = TaskCompleted
	assert.Equal(t, TaskPending, task.ToggledStatus())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := validTask()
	assert.False(t, task.IsOverdue(now), "no due date")

	task.DueDate = &past
	assert.True(t, task.IsOverdue(now))

	task.Status = TaskCompleted
	assert.False(t, task.IsOverdue(now), "completed tasks are never overdue")

	task.Status = TaskPending
	task.DueDate = &future
	assert.False(t, task.IsOverdue(now))
}
