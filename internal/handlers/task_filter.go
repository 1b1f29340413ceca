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

// TaskFilterer defines the interface that the service must implement.
type TaskFilterer interface {
	Filter(ctx context.Context, claims *jwt.Claims, completed *bool, createdAfter, createdBefore *string) ([]models.TaskDB, error)
}

// FilterTasksRequest represents the JSON body for task filtering.
// Absent predicates are skipped; dates are strict YYYY-MM-DD.
// swagger:model FilterTasksRequest
type FilterTasksRequest struct {
	// Completion flag
	Completed *bool `json:"completed"`

	// Only tasks created after this date
	// example: 2025-01-01
	CreatedAfter *string `json:"created_after"`

	// Only tasks created before this date
	// example: 2025-12-31
	CreatedBefore *string `json:"created_before"`
}

// NewFilterTasksHandler returns an HTTP handler for filtering the
// caller's tasks.
// @Summary Filter tasks
// @Description Returns the authenticated user's tasks matching every supplied predicate, newest first.
// @Tags tasks
// @Accept json
// @Produce json
// @Param filterTasksRequest body handlers.FilterTasksRequest true "Filter predicates"
// @Success 200 {array} handlers.TaskResponse "Matching tasks"
// @Failure 400 {object} handlers.TaskErrorResponse "Invalid date format"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Router /tasks/filter [post]
// @Security BearerAuth
func NewFilterTasksHandler(svc TaskFilterer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Unauthorized"})
			return
		}

		var req FilterTasksRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "invalid request body"})
			return
		}

		tasks, err := svc.Filter(r.Context(), claims, req.Completed, req.CreatedAfter, req.CreatedBefore)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDateFormat):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD."})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(newTaskResponses(tasks))
	}
}
