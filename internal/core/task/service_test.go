// Copyright (c) 2026 Taskora. All rights reserved.

package task_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/core/task"
	"github.com/taskora/taskora/internal/platform/apperr"
)

type memoryRepo struct {
	tasks map[string]*task.Task
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: make(map[string]*task.Task)}
}

func (repo *memoryRepo) ListTasks(_ context.Context, ownerID string, f task.Filter, limit, offset int) ([]*task.Task, int, error) {
	var owned []*task.Task
	for _, t := range repo.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		owned = append(owned, t)
	}
	total := len(owned)
	if offset > len(owned) {
		offset = len(owned)
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (repo *memoryRepo) GetTask(_ context.Context, ownerID, id string) (*task.Task, error) {
	t, found := repo.tasks[id]
	if !found || t.OwnerID != ownerID {
		return nil, apperr.NotFound("Resource")
	}
	return t, nil
}

func (repo *memoryRepo) CreateTask(_ context.Context, t *task.Task) error {
	repo.tasks[t.ID] = t
	return nil
}

func (repo *memoryRepo) UpdateTask(_ context.Context, t *task.Task) error {
	existing, found := repo.tasks[t.ID]
	if !found || existing.OwnerID != t.OwnerID {
		return apperr.NotFound("Resource")
	}
	repo.tasks[t.ID] = t
	return nil
}

func (repo *memoryRepo) DeleteTask(_ context.Context, ownerID, id string) error {
	existing, found := repo.tasks[id]
	if !found || existing.OwnerID != ownerID {
		return apperr.NotFound("Resource")
	}
	delete(repo.tasks, id)
	return nil
}

func newTestService(repo task.Repository) *task.Service {
	return task.NewService(repo, slog.Default())
}

func TestService_CreateTask(t *testing.T) {
	t.Run("defaults_and_normalization", func(t *testing.T) {
		repo := newMemoryRepo()
		service := newTestService(repo)

		created := &task.Task{OwnerID: "acct-1", Title: "  Ship the release  "}
		err := service.CreateTask(context.Background(), created)
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Ship the release", created.Title)
		assert.Equal(t, task.StatusTodo, created.Status)
		assert.Contains(t, repo.tasks, created.ID)
	})

	t.Run("rejects_missing_title", func(t *testing.T) {
		service := newTestService(newMemoryRepo())

		err := service.CreateTask(context.Background(), &task.Task{OwnerID: "acct-1"})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("rejects_bad_status", func(t *testing.T) {
		service := newTestService(newMemoryRepo())

		err := service.CreateTask(context.Background(), &task.Task{
			OwnerID: "acct-1",
			Title:   "Valid title",
			Status:  "archived",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("rejects_injection_payload", func(t *testing.T) {
		service := newTestService(newMemoryRepo())

		err := service.CreateTask(context.Background(), &task.Task{
			OwnerID: "acct-1",
			Title:   "x' UNION SELECT email FROM users",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})
}

func TestService_OwnershipScoping(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo)

	owned := &task.Task{OwnerID: "acct-owner", Title: "Private task"}
	require.NoError(t, service.CreateTask(context.Background(), owned))

	_, err := service.GetTask(context.Background(), "acct-other", owned.ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code, "someone else's task looks like a missing task")

	err = service.DeleteTask(context.Background(), "acct-other", owned.ID)
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
	assert.Contains(t, repo.tasks, owned.ID, "the task survives a foreign delete")
}

func TestService_ListTasks_StatusFilter(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo)

	for _, status := range []task.Status{task.StatusTodo, task.StatusDone, task.StatusDone} {
		created := &task.Task{OwnerID: "acct-1", Title: "Task", Status: status}
		require.NoError(t, service.CreateTask(context.Background(), created))
	}

	done, total, err := service.ListTasks(context.Background(), "acct-1", task.Filter{Status: task.StatusDone}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, done, 2)

	all, total, err := service.ListTasks(context.Background(), "acct-1", task.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
}
