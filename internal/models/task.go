package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskDB represents a task record in the database.
// A non-nil DeletedAt means the task is logically deleted and
// invisible to every query.
type TaskDB struct {
	TaskID      uuid.UUID  `json:"id" db:"task_id"`            // Primary key
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`       // Owner, immutable after creation
	Title       string     `json:"title" db:"title"`           // Non-empty title
	Description string     `json:"description" db:"description"`
	Completed   bool       `json:"completed" db:"completed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // Set once at creation
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"` // Refreshed on every mutation
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`          // Soft-delete marker
}

// TaskPage is a page of tasks together with pagination metadata
// computed over the un-paged matching set.
type TaskPage struct {
	Tasks      []TaskDB `json:"tasks"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	Total      int64    `json:"total"`
	TotalPages int      `json:"total_pages"`
	HasNext    bool     `json:"has_next"`
	HasPrev    bool     `json:"has_prev"`
}
