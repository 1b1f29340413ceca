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
	"github.com/sbilibin2017/gw-task-manager/internal/services"
)

// TaskDeleter defines the interface that the service must implement.
type TaskDeleter interface {
	Delete(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID) error
}

// DeleteTaskResponse represents a successful deletion response
// swagger:model DeleteTaskResponse
type DeleteTaskResponse struct {
	// Success message
	// example: Task deleted
	Message string `json:"message"`
}

// NewDeleteTaskHandler returns an HTTP handler for task deletion.
// @Summary Delete a task
// @Description Deletes a task owned by the authenticated user.
// @Tags tasks
// @Produce json
// @Param taskID path string true "Task ID"
// @Success 200 {object} handlers.DeleteTaskResponse "Task deleted"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TaskErrorResponse "Task not found"
// @Router /tasks/{taskID} [delete]
// @Security BearerAuth
func NewDeleteTaskHandler(svc TaskDeleter) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), claims, taskID); err != nil {
			switch {
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
		json.NewEncoder(w).Encode(DeleteTaskResponse{
			Message: "Task deleted",
		})
	}
}
