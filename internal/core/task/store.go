// Copyright (c) 2026 Taskora. All rights reserved.

package task

import "context"

// Repository scopes every operation to an owner. A task that exists but
// belongs to someone else is indistinguishable from one that does not exist.
type Repository interface {
	ListTasks(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Task, int, error)
	GetTask(context context.Context, ownerID, id string) (*Task, error)
	CreateTask(context context.Context, t *Task) error
	UpdateTask(context context.Context, t *Task) error
	DeleteTask(context context.Context, ownerID, id string) error
}
