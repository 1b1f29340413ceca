package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
	"github.com/sbilibin2017/gw-task-manager/internal/services"
)

func TestDeleteTaskHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	taskID := uuid.New()
	claims := &jwt.Claims{UserID: userID, Role: models.RoleUser}

	tests := []struct {
		name         string
		claims       *jwt.Claims
		taskID       string
		mockSetup    func(m *MockTaskDeleter)
		expectedCode int
		expectedBody map[string]string
	}{
		{
			name:   "success",
			claims: claims,
			taskID: taskID.String(),
			mockSetup: func(m *MockTaskDeleter) {
				m.EXPECT().
					Delete(gomock.Any(), claims, taskID).
					Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: map[string]string{"message": "Task deleted"},
		},
		{
			name:         "no claims",
			claims:       nil,
			taskID:       taskID.String(),
			expectedCode: http.StatusUnauthorized,
			expectedBody: map[string]string{"error": "Unauthorized"},
		},
		{
			name:         "malformed id",
			claims:       claims,
			taskID:       "not-a-uuid",
			expectedCode: http.StatusNotFound,
			expectedBody: map[string]string{"error": "Task not found"},
		},
		{
			name:   "not found",
			claims: claims,
			taskID: taskID.String(),
			mockSetup: func(m *MockTaskDeleter) {
				m.EXPECT().
					Delete(gomock.Any(), claims, taskID).
					Return(services.ErrTaskNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: map[string]string{"error": "Task not found"},
		},
		{
			name:   "internal server error",
			claims: claims,
			taskID: taskID.String(),
			mockSetup: func(m *MockTaskDeleter) {
				m.EXPECT().
					Delete(gomock.Any(), claims, taskID).
					Return(errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: map[string]string{"error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockTaskDeleter(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewDeleteTaskHandler(mockSvc)

			req := newAuthedRequest(http.MethodDelete, "/tasks/"+tt.taskID, tt.claims, nil)
			req = withURLParam(req, "taskID", tt.taskID)

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			var resp map[string]string
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}
