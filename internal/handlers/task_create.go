package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/middlewares"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
	"github.com/sbilibin2017/gw-task-manager/internal/services"
)

// TaskCreator defines the interface that the service must implement.
type TaskCreator interface {
	Create(ctx context.Context, claims *jwt.Claims, title, description string) (*models.TaskDB, error)
}

// CreateTaskRequest represents the JSON body for task creation
// swagger:model CreateTaskRequest
type CreateTaskRequest struct {
	// Title
	// required: true
	// example: Buy groceries
	Title string `json:"title"`

	// Description
	// example: Milk, eggs, bread
	Description string `json:"description"`
}

// NewCreateTaskHandler returns an HTTP handler for task creation.
// @Summary Create a new task
// @Description Creates a task owned by the authenticated user. Title must be non-empty.
// @Tags tasks
// @Accept json
// @Produce json
// @Param createTaskRequest body handlers.CreateTaskRequest true "Task creation request"
// @Success 201 {object} handlers.TaskResponse "Task created"
// @Failure 400 {object} handlers.TaskErrorResponse "Title is required"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Router /tasks [post]
// @Security BearerAuth
func NewCreateTaskHandler(svc TaskCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Unauthorized"})
			return
		}

		var req CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "invalid request body"})
			return
		}

		task, err := svc.Create(r.Context(), claims, req.Title, req.Description)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyTitle):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Title is required"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(newTaskResponse(task))
	}
}
