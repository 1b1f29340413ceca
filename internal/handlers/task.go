package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

// TaskResponse represents a task in API responses
// swagger:model TaskResponse
type TaskResponse struct {
	// Task ID
	ID uuid.UUID `json:"id"`

	// Owner user ID
	UserID uuid.UUID `json:"user_id"`

	// Title
	// example: Buy groceries
	Title string `json:"title"`

	// Description
	// example: Milk, eggs, bread
	Description string `json:"description"`

	// Completion flag
	Completed bool `json:"completed"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last mutation timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskErrorResponse represents an error response for task operations
// swagger:model TaskErrorResponse
type TaskErrorResponse struct {
	// Error message
	// example: Task not found
	Error string `json:"error"`
}

func newTaskResponse(task *models.TaskDB) TaskResponse {
	return TaskResponse{
		ID:          task.TaskID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newTaskResponses(tasks []models.TaskDB) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResponse(&tasks[i]))
	}
	return out
}
