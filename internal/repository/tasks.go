package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tasktracker/internal/models"
)

// ErrTaskNotFound is returned when a task does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable so a
// caller cannot probe for other users' task ids.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepo persists tasks. Every operation takes the owner id explicitly
// and touches only that owner's rows.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create inserts a task for the owner. Id and created_at are assigned
// here; an empty status falls back to "pending".
func (r *TaskRepo) Create(ctx context.Context, ownerID int, title, description, status string) (models.Task, error) {
	if status == "" {
		status = "pending"
	}
	// created_at is truncated to what the timestamp column keeps, so the
	// value read back later matches the one returned here.
	task := models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		OwnerID:     ownerID,
	}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO tasks (title, description, status, created_at, owner_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		task.Title, task.Description, task.Status, task.CreatedAt, task.OwnerID,
	).Scan(&task.ID)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ListByOwner returns the owner's tasks in insertion order. A non-empty
// status narrows the result by exact string match, no case folding.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID int, status string) ([]models.Task, error) {
	var rows *sql.Rows
	var err error

	if status == "" {
		rows, err = r.db.QueryContext(ctx,
			"SELECT id, title, description, status, created_at, owner_id FROM tasks WHERE owner_id = $1 ORDER BY id",
			ownerID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			"SELECT id, title, description, status, created_at, owner_id FROM tasks WHERE owner_id = $1 AND status = $2 ORDER BY id",
			ownerID, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatedAt, &task.OwnerID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies the patch to the owner's task inside a transaction: the
// current row is read, the supplied fields are merged onto a copy and the
// copy is written back. Concurrent requests never observe a partial write.
func (r *TaskRepo) Update(ctx context.Context, ownerID, taskID int, patch models.TaskPatch) (models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer tx.Rollback()

	var task models.Task
	err = tx.QueryRowContext(ctx,
		"SELECT id, title, description, status, created_at, owner_id FROM tasks WHERE id = $1 AND owner_id = $2 FOR UPDATE",
		taskID, ownerID,
	).Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatedAt, &task.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	updated := patch.Apply(task)
	_, err = tx.ExecContext(ctx,
		"UPDATE tasks SET title = $1, description = $2, status = $3 WHERE id = $4 AND owner_id = $5",
		updated.Title, updated.Description, updated.Status, taskID, ownerID,
	)
	if err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// Delete removes the owner's task. Rows owned by someone else are treated
// the same as missing rows.
func (r *TaskRepo) Delete(ctx context.Context, ownerID, taskID int) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND owner_id = $2",
		taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
