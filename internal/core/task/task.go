// Copyright (c) 2026 Taskora. All rights reserved.

package task

import "time"

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Task represents a single item of work owned by one member.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"` // implicit from the authenticated principal
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Filter holds the parameters for a task listing.
type Filter struct {
	Status Status // empty means all statuses
}

// Global field names for validation
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldDueAt       = "due_at"
	FieldTaskID      = "task_id"
)
