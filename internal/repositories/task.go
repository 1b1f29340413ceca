package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

// DeleteMode selects the deletion strategy of the task write repository.
type DeleteMode string

const (
	// DeleteModeSoft marks rows with deleted_at instead of removing them.
	DeleteModeSoft DeleteMode = "soft"
	// DeleteModeHard physically removes rows.
	DeleteModeHard DeleteMode = "hard"
)

// ParseDeleteMode parses a delete mode string. Empty input defaults to soft.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch s {
	case "", string(DeleteModeSoft):
		return DeleteModeSoft, nil
	case string(DeleteModeHard):
		return DeleteModeHard, nil
	}
	return "", fmt.Errorf("unknown delete mode %q", s)
}

const taskColumns = `task_id, user_id, title, description, completed, created_at, updated_at, deleted_at`

// TaskWriteRepository handles task write operations. Writes run inside
// the request transaction when one is present in the context.
type TaskWriteRepository struct {
	db         *sqlx.DB
	txGetter   func(ctx context.Context) *sqlx.Tx
	deleteMode DeleteMode
}

func NewTaskWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx, deleteMode DeleteMode) *TaskWriteRepository {
	return &TaskWriteRepository{db: db, txGetter: txGetter, deleteMode: deleteMode}
}

func (r *TaskWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new task owned by userID and returns the stored row.
func (r *TaskWriteRepository) Save(ctx context.Context, userID uuid.UUID, title, description string) (*models.TaskDB, error) {
	const query = `
		INSERT INTO tasks (task_id, user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING ` + taskColumns

	var task models.TaskDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &task, query, uuid.New(), userID, title, description)

	logger.Log.Infow("task insert",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies the supplied fields to a task in a single statement,
// leaving nil fields untouched and refreshing updated_at. A nil ownerID
// skips the owner predicate (administrative override). Returns nil when
// the task does not exist, is deleted, or belongs to someone else.
func (r *TaskWriteRepository) Update(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID, title, description *string, completed *bool) (*models.TaskDB, error) {
	const query = `
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    completed   = COALESCE($5, completed),
		    updated_at  = NOW()
		WHERE task_id = $1
		  AND ($2::UUID IS NULL OR user_id = $2)
		  AND deleted_at IS NULL
		RETURNING ` + taskColumns

	var task models.TaskDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &task, query, taskID, ownerID, title, description, completed)

	logger.Log.Infow("task update",
		"query", strings.Join(strings.Fields(query), " "),
		"task_id", taskID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// Delete removes a task according to the configured delete mode.
// Soft deletion of an already deleted task reports false: the row is
// already invisible.
func (r *TaskWriteRepository) Delete(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID) (bool, error) {
	query := `
		UPDATE tasks
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE task_id = $1
		  AND ($2::UUID IS NULL OR user_id = $2)
		  AND deleted_at IS NULL
	`
	if r.deleteMode == DeleteModeHard {
		query = `
			DELETE FROM tasks
			WHERE task_id = $1
			  AND ($2::UUID IS NULL OR user_id = $2)
		`
	}

	res, err := r.executor(ctx).ExecContext(ctx, query, taskID, ownerID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("task delete",
		"query", strings.Join(strings.Fields(query), " "),
		"task_id", taskID,
		"mode", r.deleteMode,
		"rows_affected", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// TaskReadRepository handles task read operations. Soft-deleted rows
// are invisible to every query.
type TaskReadRepository struct {
	db *sqlx.DB
}

func NewTaskReadRepository(db *sqlx.DB) *TaskReadRepository {
	return &TaskReadRepository{db: db}
}

// Get fetches a single task. A nil ownerID skips the owner predicate.
// Returns nil without an error when nothing matches.
func (r *TaskReadRepository) Get(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID) (*models.TaskDB, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE task_id = $1
		  AND ($2::UUID IS NULL OR user_id = $2)
		  AND deleted_at IS NULL
		LIMIT 1
	`

	var task models.TaskDB
	err := r.db.GetContext(ctx, &task, query, taskID, ownerID)

	logger.Log.Infow("task get",
		"query", strings.Join(strings.Fields(query), " "),
		"task_id", taskID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// List returns a page of the owner's tasks, newest first.
func (r *TaskReadRepository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TaskDB, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		  AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	tasks := []models.TaskDB{}
	err := r.db.SelectContext(ctx, &tasks, query, ownerID, limit, offset)

	logger.Log.Infow("task list",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", ownerID,
		"limit", limit,
		"offset", offset,
		"error", err,
	)

	return tasks, err
}

// Count returns the size of the owner's un-paged matching set.
func (r *TaskReadRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM tasks
		WHERE user_id = $1
		  AND deleted_at IS NULL
	`

	var total int64
	err := r.db.GetContext(ctx, &total, query, ownerID)

	logger.Log.Infow("task count",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", ownerID,
		"total", total,
		"error", err,
	)

	return total, err
}

// Filter returns the owner's tasks matching every supplied predicate,
// newest first. Nil predicates are skipped.
func (r *TaskReadRepository) Filter(ctx context.Context, ownerID uuid.UUID, completed *bool, createdAfter, createdBefore *time.Time) ([]models.TaskDB, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		  AND deleted_at IS NULL
		  AND ($2::BOOLEAN IS NULL OR completed = $2)
		  AND ($3::TIMESTAMP IS NULL OR created_at > $3)
		  AND ($4::TIMESTAMP IS NULL OR created_at < $4)
		ORDER BY created_at DESC
	`

	tasks := []models.TaskDB{}
	err := r.db.SelectContext(ctx, &tasks, query, ownerID, completed, createdAfter, createdBefore)

	logger.Log.Infow("task filter",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", ownerID,
		"error", err,
	)

	return tasks, err
}
