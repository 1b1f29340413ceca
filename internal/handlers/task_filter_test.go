package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
	"github.com/sbilibin2017/gw-task-manager/internal/services"
)

func TestFilterTasksHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	claims := &jwt.Claims{UserID: userID, Role: models.RoleUser}

	matched := []models.TaskDB{
		{TaskID: uuid.New(), UserID: userID, Title: "done", Completed: true, CreatedAt: time.Now().UTC()},
	}

	tests := []struct {
		name         string
		claims       *jwt.Claims
		body         string
		mockSetup    func(m *MockTaskFilterer)
		expectedCode int
	}{
		{
			name:   "success",
			claims: claims,
			body:   `{"completed":true,"created_after":"2025-01-01"}`,
			mockSetup: func(m *MockTaskFilterer) {
				m.EXPECT().
					Filter(gomock.Any(), claims, gomock.Any(), gomock.Any(), gomock.Nil()).
					Return(matched, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "empty body filters nothing",
			claims: claims,
			body:   `{}`,
			mockSetup: func(m *MockTaskFilterer) {
				m.EXPECT().
					Filter(gomock.Any(), claims, gomock.Nil(), gomock.Nil(), gomock.Nil()).
					Return([]models.TaskDB{}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "no claims",
			claims:       nil,
			body:         `{}`,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "invalid json",
			claims:       claims,
			body:         "{invalid json}",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "invalid date format",
			claims: claims,
			body:   `{"created_after":"01-01-2025"}`,
			mockSetup: func(m *MockTaskFilterer) {
				m.EXPECT().
					Filter(gomock.Any(), claims, gomock.Nil(), gomock.Any(), gomock.Nil()).
					Return(nil, services.ErrInvalidDateFormat)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "internal server error",
			claims: claims,
			body:   `{}`,
			mockSetup: func(m *MockTaskFilterer) {
				m.EXPECT().
					Filter(gomock.Any(), claims, gomock.Nil(), gomock.Nil(), gomock.Nil()).
					Return(nil, errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockTaskFilterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewFilterTasksHandler(mockSvc)

			req := newAuthedRequest(http.MethodPost, "/tasks/filter", tt.claims, bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.name == "success" {
				var resp []TaskResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Len(t, resp, 1)
				assert.True(t, resp[0].Completed)
			}
		})
	}
}
