package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits enforced on tasks.
const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
)

// Task validation errors
var (
	ErrEmptyTaskOwner         = validationError("task owner cannot be empty")
	ErrEmptyTaskTitle         = validationError("task title cannot be empty")
	ErrTaskTitleTooLong       = validationError("task title must be at most 100 characters long")
	ErrTaskDescriptionTooLong = validationError("task description must be at most 500 characters long")
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	UserID      uuid.UUID  `json:"user_id"`
	Deadline    *time.Time `json:"deadline"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
}

// TaskFields carries the client-editable part of a task.
// A nil Completed leaves the flag untouched on update.
type TaskFields struct {
	Title       string
	Description string
	Deadline    *time.Time
	Completed   *bool
}

// NewTask builds an incomplete task for owner. The ID is assigned by the store.
func NewTask(owner uuid.UUID, fields TaskFields) (*Task, error) {
	task := &Task{UserID: owner}
	task.assign(fields)
	task.Completed = false

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Apply overwrites title, description and deadline with fields, and the
// completed flag when fields.Completed is set. The task is left unchanged
// if the result would be invalid.
func (t *Task) Apply(fields TaskFields) error {
	next := *t
	next.assign(fields)
	if fields.Completed != nil {
		next.Completed = *fields.Completed
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

func (t *Task) assign(fields TaskFields) {
	t.Title = strings.TrimSpace(fields.Title)
	t.Description = fields.Description
	t.Deadline = nil
	if fields.Deadline != nil {
		d := fields.Deadline.UTC()
		t.Deadline = &d
	}
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}
	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	return nil
}
