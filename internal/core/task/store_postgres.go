// Copyright (c) 2026 Taskora. All rights reserved.

package task

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskora/taskora/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, ownerid, title, description, status, dueat, createdat, updatedat`

func (repository *PostgresRepository) ListTasks(context context.Context, ownerID string, f Filter, limit, offset int) ([]*Task, int, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM core.task
		WHERE ownerid = $1`
	countQuery := `SELECT count(*) FROM core.task WHERE ownerid = $1`

	args := []any{ownerID}
	countArgs := []any{ownerID}

	if f.Status != "" {
		query += ` AND status = $2`
		countQuery += ` AND status = $2`
		args = append(args, f.Status)
		countArgs = append(countArgs, f.Status)
	}

	if f.Status != "" {
		query += ` ORDER BY createdat DESC LIMIT $3 OFFSET $4`
	} else {
		query += ` ORDER BY createdat DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err)
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t := &Task{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.DueAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err)
		}
		tasks = append(tasks, t)
	}

	return tasks, total, nil
}

func (repository *PostgresRepository) GetTask(context context.Context, ownerID, id string) (*Task, error) {
	// The ownerid predicate makes someone else's task look nonexistent.
	query := `
		SELECT ` + taskColumns + `
		FROM core.task
		WHERE id = $1 AND ownerid = $2`

	t := &Task{}
	err := repository.db.QueryRow(context, query, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.DueAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return t, nil
}

func (repository *PostgresRepository) CreateTask(context context.Context, t *Task) error {
	query := `
		INSERT INTO core.task (id, ownerid, title, description, status, dueat, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING createdat, updatedat`

	err := repository.db.QueryRow(context, query,
		t.ID, t.OwnerID, t.Title, t.Description, t.Status, t.DueAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return dberr.Wrap(err)
}

func (repository *PostgresRepository) UpdateTask(context context.Context, t *Task) error {
	query := `
		UPDATE core.task
		SET title = $3, description = $4, status = $5, dueat = $6, updatedat = NOW()
		WHERE id = $1 AND ownerid = $2
		RETURNING updatedat`

	err := repository.db.QueryRow(context, query,
		t.ID, t.OwnerID, t.Title, t.Description, t.Status, t.DueAt,
	).Scan(&t.UpdatedAt)

	return dberr.Wrap(err)
}

func (repository *PostgresRepository) DeleteTask(context context.Context, ownerID, id string) error {
	query := `DELETE FROM core.task WHERE id = $1 AND ownerid = $2`

	cmd, err := repository.db.Exec(context, query, id, ownerID)
	if err != nil {
		return dberr.Wrap(err)
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
