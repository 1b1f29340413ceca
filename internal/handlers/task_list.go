package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/middlewares"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

// TaskLister defines the interface that the service must implement.
type TaskLister interface {
	List(ctx context.Context, claims *jwt.Claims, page, pageSize int) (*models.TaskPage, error)
}

// ListTasksResponse represents a page of tasks
// swagger:model ListTasksResponse
type ListTasksResponse struct {
	// Tasks on this page
	Tasks []TaskResponse `json:"tasks"`

	// Page number, 1-indexed
	Page int `json:"page"`

	// Page size
	PageSize int `json:"page_size"`

	// Total matching tasks
	Total int64 `json:"total"`

	// Total pages
	TotalPages int `json:"total_pages"`

	// Whether a next page exists
	HasNext bool `json:"has_next"`

	// Whether a previous page exists
	HasPrev bool `json:"has_prev"`
}

// NewListTasksHandler returns an HTTP handler for listing the caller's
// tasks, newest first.
// @Summary List tasks
// @Description Returns a page of the authenticated user's tasks ordered by creation time descending.
// @Tags tasks
// @Produce json
// @Param page query int false "Page number, 1-indexed"
// @Param page_size query int false "Page size, default 10, max 100"
// @Success 200 {object} handlers.ListTasksResponse "Page of tasks"
// @Failure 401 {object} handlers.TaskErrorResponse "Unauthorized"
// @Router /tasks [get]
// @Security BearerAuth
func NewListTasksHandler(svc TaskLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Unauthorized"})
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		taskPage, err := svc.List(r.Context(), claims, page, pageSize)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(TaskErrorResponse{Error: "Internal server error"})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ListTasksResponse{
			Tasks:      newTaskResponses(taskPage.Tasks),
			Page:       taskPage.Page,
			PageSize:   taskPage.PageSize,
			Total:      taskPage.Total,
			TotalPages: taskPage.TotalPages,
			HasNext:    taskPage.HasNext,
			HasPrev:    taskPage.HasPrev,
		})
	}
}
