package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	done := true

	task, err := NewTask(owner, TaskFields{
		Title:       "  Write report ",
		Description: "quarterly",
		Deadline:    &deadline,
		Completed:   &done,
	})
	require.NoError(t, err)

	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "quarterly", task.Description)
	assert.False(t, task.Completed, "new tasks always start incomplete")
	require.NotNil(t, task.Deadline)
	assert.Equal(t, time.UTC, task.Deadline.Location())
	assert.True(t, deadline.Equal(*task.Deadline))
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		owner   uuid.UUID
		fields  TaskFields
		wantErr error
	}{
		{"missing owner", uuid.Nil, TaskFields{Title: "T1"}, ErrEmptyTaskOwner},
		{"blank title", uuid.New(), TaskFields{Title: "   "}, ErrEmptyTaskTitle},
		{"long title", uuid.New(), TaskFields{Title: strings.Repeat("t", 101)}, ErrTaskTitleTooLong},
		{"long description", uuid.New(), TaskFields{Title: "T1", Description: strings.Repeat("d", 501)}, ErrTaskDescriptionTooLong},
		{"multibyte title at limit", uuid.New(), TaskFields{Title: strings.Repeat("ж", 100)}, nil},
		{"multibyte title over limit", uuid.New(), TaskFields{Title: strings.Repeat("ж", 101)}, ErrTaskTitleTooLong},
		{"multibyte description at limit", uuid.New(), TaskFields{Title: "T1", Description: strings.Repeat("日", 500)}, nil},
		{"multibyte description over limit", uuid.New(), TaskFields{Title: "T1", Description: strings.Repeat("日", 501)}, ErrTaskDescriptionTooLong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTask(tc.owner, tc.fields)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskApply(t *testing.T) {
	t.Parallel()

	deadline := time.Now().Add(time.Hour)
	task, err := NewTask(uuid.New(), TaskFields{Title: "T1", Description: "first", Deadline: &deadline})
	require.NoError(t, err)
	task.ID = 7

	t.Run("overwrites fields and clears deadline", func(t *testing.T) {
		t.Parallel()
		cp := *task
		require.NoError(t, cp.Apply(TaskFields{Title: "T1 v2", Description: "second"}))
		assert.Equal(t, int64(7), cp.ID)
		assert.Equal(t, "T1 v2", cp.Title)
		assert.Equal(t, "second", cp.Description)
		assert.Nil(t, cp.Deadline)
		assert.False(t, cp.Completed)
	})

	t.Run("sets completed when provided", func(t *testing.T) {
		t.Parallel()
		cp := *task
		done := true
		require.NoError(t, cp.Apply(TaskFields{Title: "T1", Completed: &done}))
		assert.True(t, cp.Completed)
	})

	t.Run("invalid update leaves task untouched", func(t *testing.T) {
		t.Parallel()
		cp := *task
		err := cp.Apply(TaskFields{Title: ""})
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)
		assert.Equal(t, "T1", cp.Title)
		assert.Equal(t, "first", cp.Description)
	})
}
