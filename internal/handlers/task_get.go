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

// TaskGetter defines the interface that the service must implement.
type TaskGetter interface {
	Get(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID) (*models.TaskDB, error)
}

// NewGetTaskHandler returns an HTTP handler for fetching a single task.
// Missing, deleted and foreign tasks all answer 404.
// @Summary Get a single task
// @Tags tasks
// @Produce json
// @Param taskID path string true "Task ID"
// @Success 200 {object} handlers.TaskResponse "Task details"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TaskErrorResponse "Task not found"
// @Router /tasks/{taskID} [get]
// @Security BearerAuth
func NewGetTaskHandler(svc TaskGetter) http.HandlerFunc {
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

		task, err := svc.Get(r.Context(), claims, taskID)
		if err != nil {
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
		json.NewEncoder(w).Encode(newTaskResponse(task))
	}
}
