package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

func userClaims(userID uuid.UUID) *jwt.Claims {
	return &jwt.Claims{UserID: userID, Role: models.RoleUser}
}

func adminClaims(userID uuid.UUID) *jwt.Claims {
	return &jwt.Claims{UserID: userID, Role: models.RoleAdmin}
}

func TestTaskService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	claims := userClaims(userID)

	t.Run("success publishes created event", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		kafkaWriter := NewMockKafkaWriter(ctrl)

		task := &models.TaskDB{TaskID: uuid.New(), UserID: userID, Title: "Buy groceries"}

		writer.EXPECT().
			Save(gomock.Any(), userID, "Buy groceries", "Milk").
			Return(task, nil)
		kafkaWriter.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(nil)

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, kafkaWriter, false)

		got, err := svc.Create(context.Background(), claims, "  Buy groceries  ", "Milk")
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})

	t.Run("empty title", func(t *testing.T) {
		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), nil, nil, false)

		got, err := svc.Create(context.Background(), claims, "   ", "")
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.Nil(t, got)
	})

	t.Run("repository failure", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		writer.EXPECT().
			Save(gomock.Any(), userID, "Buy groceries", "").
			Return(nil, errors.New("database failure"))

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, nil, false)

		got, err := svc.Create(context.Background(), claims, "Buy groceries", "")
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("kafka failure does not fail the create", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		kafkaWriter := NewMockKafkaWriter(ctrl)

		task := &models.TaskDB{TaskID: uuid.New(), UserID: userID, Title: "Buy groceries"}

		writer.EXPECT().
			Save(gomock.Any(), userID, "Buy groceries", "").
			Return(task, nil)
		kafkaWriter.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(errors.New("broker down"))

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, kafkaWriter, false)

		got, err := svc.Create(context.Background(), claims, "Buy groceries", "")
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})
}

func TestTaskService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	taskID := uuid.New()
	claims := userClaims(userID)

	task := &models.TaskDB{TaskID: taskID, UserID: userID, Title: "Buy groceries"}

	t.Run("cache hit", func(t *testing.T) {
		cache := NewMockTaskCache(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), taskID).
			Return(task, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), cache, nil, false)

		got, err := svc.Get(context.Background(), claims, taskID)
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})

	t.Run("cache hit on foreign task answers not found", func(t *testing.T) {
		cache := NewMockTaskCache(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), taskID).
			Return(&models.TaskDB{TaskID: taskID, UserID: uuid.New()}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), cache, nil, false)

		got, err := svc.Get(context.Background(), claims, taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.Nil(t, got)
	})

	t.Run("cache miss falls back to repository and caches", func(t *testing.T) {
		cache := NewMockTaskCache(ctrl)
		reader := NewMockTaskReader(ctrl)

		cache.EXPECT().
			Get(gomock.Any(), taskID).
			Return(nil, errors.New("cache miss"))
		reader.EXPECT().
			Get(gomock.Any(), taskID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, ownerID *uuid.UUID) (*models.TaskDB, error) {
				assert.NotNil(t, ownerID)
				assert.Equal(t, userID, *ownerID)
				return task, nil
			})
		cache.EXPECT().
			Set(gomock.Any(), task).
			Return(nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, cache, nil, false)

		got, err := svc.Get(context.Background(), claims, taskID)
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})

	t.Run("not found", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Get(gomock.Any(), taskID, gomock.Any()).
			Return(nil, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		got, err := svc.Get(context.Background(), claims, taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.Nil(t, got)
	})

	t.Run("admin reads without owner scope", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Get(gomock.Any(), taskID, gomock.Nil()).
			Return(task, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		got, err := svc.Get(context.Background(), adminClaims(uuid.New()), taskID)
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})

	t.Run("public read drops the owner scope", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Get(gomock.Any(), taskID, gomock.Nil()).
			Return(task, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, true)

		got, err := svc.Get(context.Background(), userClaims(uuid.New()), taskID)
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	})
}

func TestTaskService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	taskID := uuid.New()
	claims := userClaims(userID)

	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("success trims title and invalidates cache", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		cache := NewMockTaskCache(ctrl)
		kafkaWriter := NewMockKafkaWriter(ctrl)

		updated := &models.TaskDB{TaskID: taskID, UserID: userID, Title: "Renamed", Completed: true}

		writer.EXPECT().
			Update(gomock.Any(), taskID, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, ownerID *uuid.UUID, title, description *string, completed *bool) (*models.TaskDB, error) {
				assert.NotNil(t, ownerID)
				assert.Equal(t, userID, *ownerID)
				assert.Equal(t, "Renamed", *title)
				assert.True(t, *completed)
				return updated, nil
			})
		cache.EXPECT().
			Delete(gomock.Any(), taskID).
			Return(nil)
		kafkaWriter.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(nil)

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), cache, kafkaWriter, false)

		got, err := svc.Update(context.Background(), claims, taskID, strPtr("  Renamed  "), nil, boolPtr(true))
		assert.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("no fields provided", func(t *testing.T) {
		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), nil, nil, false)

		got, err := svc.Update(context.Background(), claims, taskID, nil, nil, nil)
		assert.ErrorIs(t, err, ErrNoFieldsProvided)
		assert.Nil(t, got)
	})

	t.Run("blank title", func(t *testing.T) {
		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), nil, nil, false)

		got, err := svc.Update(context.Background(), claims, taskID, strPtr("   "), nil, nil)
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.Nil(t, got)
	})

	t.Run("not found", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		writer.EXPECT().
			Update(gomock.Any(), taskID, gomock.Any(), gomock.Nil(), gomock.Nil(), gomock.Any()).
			Return(nil, nil)

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, nil, false)

		got, err := svc.Update(context.Background(), claims, taskID, nil, nil, boolPtr(true))
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.Nil(t, got)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	taskID := uuid.New()
	claims := userClaims(userID)

	t.Run("success invalidates cache and publishes", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		cache := NewMockTaskCache(ctrl)
		kafkaWriter := NewMockKafkaWriter(ctrl)

		writer.EXPECT().
			Delete(gomock.Any(), taskID, gomock.Any()).
			Return(true, nil)
		cache.EXPECT().
			Delete(gomock.Any(), taskID).
			Return(nil)
		kafkaWriter.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(nil)

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), cache, kafkaWriter, false)

		assert.NoError(t, svc.Delete(context.Background(), claims, taskID))
	})

	t.Run("not found", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		writer.EXPECT().
			Delete(gomock.Any(), taskID, gomock.Any()).
			Return(false, nil)

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, nil, false)

		assert.ErrorIs(t, svc.Delete(context.Background(), claims, taskID), ErrTaskNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		writer := NewMockTaskWriter(ctrl)
		writer.EXPECT().
			Delete(gomock.Any(), taskID, gomock.Any()).
			Return(false, errors.New("database failure"))

		svc := NewTaskService(writer, NewMockTaskReader(ctrl), nil, nil, false)

		assert.Error(t, svc.Delete(context.Background(), claims, taskID))
	})
}

func TestTaskService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	claims := userClaims(userID)

	t.Run("second page of seven tasks", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Count(gomock.Any(), userID).
			Return(int64(7), nil)
		reader.EXPECT().
			List(gomock.Any(), userID, 5, 5).
			Return([]models.TaskDB{{TaskID: uuid.New()}, {TaskID: uuid.New()}}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		page, err := svc.List(context.Background(), claims, 2, 5)
		assert.NoError(t, err)
		assert.Len(t, page.Tasks, 2)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.PageSize)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})

	t.Run("defaults apply for zero paging params", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Count(gomock.Any(), userID).
			Return(int64(3), nil)
		reader.EXPECT().
			List(gomock.Any(), userID, 10, 0).
			Return([]models.TaskDB{{}, {}, {}}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		page, err := svc.List(context.Background(), claims, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasNext)
		assert.False(t, page.HasPrev)
	})

	t.Run("page size is capped", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Count(gomock.Any(), userID).
			Return(int64(0), nil)
		reader.EXPECT().
			List(gomock.Any(), userID, 100, 0).
			Return([]models.TaskDB{}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		page, err := svc.List(context.Background(), claims, 1, 500)
		assert.NoError(t, err)
		assert.Equal(t, 100, page.PageSize)
		assert.Equal(t, 0, page.TotalPages)
	})

	t.Run("out of range page returns empty with totals", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Count(gomock.Any(), userID).
			Return(int64(7), nil)
		reader.EXPECT().
			List(gomock.Any(), userID, 5, 45).
			Return([]models.TaskDB{}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		page, err := svc.List(context.Background(), claims, 10, 5)
		assert.NoError(t, err)
		assert.Empty(t, page.Tasks)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})

	t.Run("count failure", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Count(gomock.Any(), userID).
			Return(int64(0), errors.New("database failure"))

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		page, err := svc.List(context.Background(), claims, 1, 10)
		assert.Error(t, err)
		assert.Nil(t, page)
	})
}

func TestTaskService_Filter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	claims := userClaims(userID)

	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("success parses date bounds", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Filter(gomock.Any(), userID, gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, completed *bool, after, before *time.Time) ([]models.TaskDB, error) {
				assert.True(t, *completed)
				assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *after)
				assert.Nil(t, before)
				return []models.TaskDB{{TaskID: uuid.New(), Completed: true}}, nil
			})

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		tasks, err := svc.Filter(context.Background(), claims, boolPtr(true), strPtr("2025-01-01"), nil)
		assert.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("no predicates pass through as nil", func(t *testing.T) {
		reader := NewMockTaskReader(ctrl)
		reader.EXPECT().
			Filter(gomock.Any(), userID, gomock.Nil(), gomock.Nil(), gomock.Nil()).
			Return([]models.TaskDB{}, nil)

		svc := NewTaskService(NewMockTaskWriter(ctrl), reader, nil, nil, false)

		tasks, err := svc.Filter(context.Background(), claims, nil, nil, nil)
		assert.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("invalid created_after", func(t *testing.T) {
		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), nil, nil, false)

		tasks, err := svc.Filter(context.Background(), claims, nil, strPtr("01-01-2025"), nil)
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
		assert.Nil(t, tasks)
	})

	t.Run("invalid created_before", func(t *testing.T) {
		svc := NewTaskService(NewMockTaskWriter(ctrl), NewMockTaskReader(ctrl), nil, nil, false)

		tasks, err := svc.Filter(context.Background(), claims, nil, nil, strPtr("2025-13-40"))
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
		assert.Nil(t, tasks)
	})
}
