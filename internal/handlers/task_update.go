package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/middlewares"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
	"github.com/sbilibin2017/gw-task-manager/internal/services"
)

// TaskUpdater defines the interface that the service must implement.
type TaskUpdater interface {
	Update(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID, title, description *string, completed *bool) (*models.TaskDB, error)
}

// UpdateTaskRequest represents the JSON body for a partial task update.
// Absent fields are left untouched.
// swagger:model UpdateTaskRequest
type UpdateTaskRequest struct {
	// Title
	// example: Buy groceries
	Title *string `json:"title"`

	// Description
	// example: Milk, eggs, bread
	Description *string `json:"description"`

	// Completion flag
	Completed *bool `json:"completed"`
}

// NewUpdateTaskHandler returns an HTTP handler for partial task updates.
// @Summary Update a task
// @Description Applies the supplied fields to a task owned by the authenticated user.
// @Tags tasks
// @Accept json
// @Produce json
// @Param taskID path string true "Task ID"
// @Param updateTaskRequest body handlers.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} handlers.TaskResponse "Updated task"
// @Failure 400 {object} handlers.TaskErrorResponse "No fields provided"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TaskErrorResponse "Task not found"
// @Router /tasks/{taskID} [put]
// @Security BearerAuth
func NewUpdateTaskHandler(svc TaskUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Unauthorized"})
			return
		}

		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Task not found"})
			return
		}

		var req UpdateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "invalid request body"})
			return
		}

		task, err := svc.Update(r.Context(), claims, taskID, req.Title, req.Description, req.Completed)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoFieldsProvided):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "No fields provided"})
			case errors.Is(err, services.ErrEmptyTitle):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Title is required"})
			case errors.Is(err, services.ErrTaskNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Task not found"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(newTaskResponse(task))
	}
}
