// Copyright (c) 2026 Taskora. All rights reserved.

package task

import (
	"context"
	"log/slog"

	"github.com/taskora/taskora/internal/platform/validate"
	"github.com/taskora/taskora/pkg/textnorm"
	"github.com/taskora/taskora/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListTasks(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Task, int, error) {
	return service.repo.ListTasks(context, ownerID, filter, limit, offset)
}

func (service *Service) GetTask(context context.Context, ownerID, id string) (*Task, error) {
	return service.repo.GetTask(context, ownerID, id)
}

func (service *Service) CreateTask(context context.Context, task *Task) error {
	textnorm.CleanAll(&task.Title, &task.Description)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, task.Title).
		MaxLen(FieldTitle, task.Title, 200).
		MaxLen(FieldDescription, task.Description, 2000).
		Safe(FieldTitle, task.Title).
		Safe(FieldDescription, task.Description)

	if task.Status == "" {
		task.Status = StatusTodo
	}
	validator.OneOf(FieldStatus, string(task.Status), string(StatusTodo), string(StatusInProgress), string(StatusDone))

	if err := validator.Err(); err != nil {
		return err
	}

	task.ID = uuid.New()
	if err := service.repo.CreateTask(context, task); err != nil {
		return err
	}

	service.logger.Info("task_created", slog.String("task_id", task.ID), slog.String("owner_id", task.OwnerID))
	return nil
}

func (service *Service) UpdateTask(context context.Context, ownerID, id string, task *Task) error {
	task.ID = id
	task.OwnerID = ownerID
	textnorm.CleanAll(&task.Title, &task.Description)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, task.Title).
		MaxLen(FieldTitle, task.Title, 200).
		MaxLen(FieldDescription, task.Description, 2000).
		OneOf(FieldStatus, string(task.Status), string(StatusTodo), string(StatusInProgress), string(StatusDone)).
		Safe(FieldTitle, task.Title).
		Safe(FieldDescription, task.Description)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateTask(context, task); err != nil {
		return err
	}

	service.logger.Info("task_updated", slog.String("task_id", task.ID))
	return nil
}

func (service *Service) DeleteTask(context context.Context, ownerID, id string) error {
	if err := service.repo.DeleteTask(context, ownerID, id); err != nil {
		return err
	}

	service.logger.Info("task_deleted", slog.String("task_id", id))
	return nil
}
