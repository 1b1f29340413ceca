package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-task-manager/internal/jwt"
	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

// Error variables
var (
	ErrEmptyTitle        = errors.New("title must not be empty")
	ErrTaskNotFound      = errors.New("task not found")
	ErrNoFieldsProvided  = errors.New("no fields provided")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	dateLayout = "2006-01-02"
)

// TaskWriter defines write operations for tasks.
type TaskWriter interface {
	Save(ctx context.Context, userID uuid.UUID, title, description string) (*models.TaskDB, error)
	Update(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID, title, description *string, completed *bool) (*models.TaskDB, error)
	Delete(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID) (bool, error)
}

// TaskReader defines read operations for tasks.
type TaskReader interface {
	Get(ctx context.Context, taskID uuid.UUID, ownerID *uuid.UUID) (*models.TaskDB, error)
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TaskDB, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Filter(ctx context.Context, ownerID uuid.UUID, completed *bool, createdAfter, createdBefore *time.Time) ([]models.TaskDB, error)
}

// TaskCache caches single tasks.
type TaskCache interface {
	Get(ctx context.Context, taskID uuid.UUID) (*models.TaskDB, error)
	Set(ctx context.Context, task *models.TaskDB) error
	Delete(ctx context.Context, taskID uuid.UUID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TaskService handles the task lifecycle: creation, owner-scoped reads,
// partial updates, deletion, pagination and filtering.
type TaskService struct {
	writeRepo   TaskWriter
	readRepo    TaskReader
	cacheRepo   TaskCache
	kafkaWriter KafkaWriter
	publicRead  bool
}

// NewTaskService creates a new TaskService. cacheRepo and kafkaWriter
// may be nil; publicRead relaxes single-task reads to any authenticated
// caller.
func NewTaskService(
	writeRepo TaskWriter,
	readRepo TaskReader,
	cacheRepo TaskCache,
	kafkaWriter KafkaWriter,
	publicRead bool,
) *TaskService {
	return &TaskService{
		writeRepo:   writeRepo,
		readRepo:    readRepo,
		cacheRepo:   cacheRepo,
		kafkaWriter: kafkaWriter,
		publicRead:  publicRead,
	}
}

// ownerScope returns the owner predicate for the caller.
// Admins are unscoped and see every task.
func ownerScope(claims *jwt.Claims) *uuid.UUID {
	if claims.Role == models.RoleAdmin {
		return nil
	}
	id := claims.UserID
	return &id
}

// publishEvent publishes a task lifecycle event to Kafka.
func (s *TaskService) publishEvent(ctx context.Context, taskID, userID uuid.UUID, operation string) {
	if s.kafkaWriter == nil {
		return
	}

	ev := models.TaskEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		TaskID:    taskID.String(),
		UserID:    userID.String(),
		Operation: operation,
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Errorw("failed to marshal task event", "event_id", ev.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(ev.TaskID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish task event", "event_id", ev.EventID, "error", err)
	} else {
		logger.Log.Infow("task event published", "event_id", ev.EventID, "operation", operation)
	}
}

// invalidate drops a task from the cache after a mutation.
func (s *TaskService) invalidate(ctx context.Context, taskID uuid.UUID) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(ctx, taskID); err != nil {
		logger.Log.Errorw("failed to invalidate task cache", "task_id", taskID, "error", err)
	}
}

// Create stores a new task owned by the caller. The title is trimmed
// and must not be empty; the description defaults to an empty string.
func (s *TaskService) Create(ctx context.Context, claims *jwt.Claims, title, description string) (*models.TaskDB, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	task, err := s.writeRepo.Save(ctx, claims.UserID, title, description)
	if err != nil {
		logger.Log.Errorw("failed to save task", "user_id", claims.UserID, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, task.TaskID, claims.UserID, "created")

	return task, nil
}

// Get returns a single task visible to the caller. Missing, deleted and
// foreign tasks are indistinguishable: all surface as ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID) (*models.TaskDB, error) {
	scope := ownerScope(claims)
	if s.publicRead {
		scope = nil
	}

	if s.cacheRepo != nil {
		if task, err := s.cacheRepo.Get(ctx, taskID); err == nil {
			if scope != nil && task.UserID != *scope {
				return nil, ErrTaskNotFound
			}
			return task, nil
		}
	}

	task, err := s.readRepo.Get(ctx, taskID, scope)
	if err != nil {
		logger.Log.Errorw("failed to get task", "task_id", taskID, "error", err)
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set(ctx, task); err != nil {
			logger.Log.Errorw("failed to cache task", "task_id", taskID, "error", err)
		}
	}

	return task, nil
}

// Update applies a partial update: only supplied fields change and
// updated_at is refreshed. Supplying zero fields is an error and the
// task is left untouched.
func (s *TaskService) Update(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID, title, description *string, completed *bool) (*models.TaskDB, error) {
	if title == nil && description == nil && completed == nil {
		return nil, ErrNoFieldsProvided
	}

	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, ErrEmptyTitle
		}
		title = &trimmed
	}

	task, err := s.writeRepo.Update(ctx, taskID, ownerScope(claims), title, description, completed)
	if err != nil {
		logger.Log.Errorw("failed to update task", "task_id", taskID, "error", err)
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	s.invalidate(ctx, taskID)
	s.publishEvent(ctx, taskID, claims.UserID, "updated")

	return task, nil
}

// Delete removes a task using the repository's delete mode.
func (s *TaskService) Delete(ctx context.Context, claims *jwt.Claims, taskID uuid.UUID) error {
	deleted, err := s.writeRepo.Delete(ctx, taskID, ownerScope(claims))
	if err != nil {
		logger.Log.Errorw("failed to delete task", "task_id", taskID, "error", err)
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}

	s.invalidate(ctx, taskID)
	s.publishEvent(ctx, taskID, claims.UserID, "deleted")

	return nil
}

// List returns a 1-indexed page of the caller's tasks, newest first,
// with totals computed over the un-paged matching set. Out-of-range
// pages return an empty item list with accurate totals.
func (s *TaskService) List(ctx context.Context, claims *jwt.Claims, page, pageSize int) (*models.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.readRepo.Count(ctx, claims.UserID)
	if err != nil {
		logger.Log.Errorw("failed to count tasks", "user_id", claims.UserID, "error", err)
		return nil, err
	}

	tasks, err := s.readRepo.List(ctx, claims.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		logger.Log.Errorw("failed to list tasks", "user_id", claims.UserID, "error", err)
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.TaskPage{
		Tasks:      tasks,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Filter returns the caller's tasks matching every supplied predicate,
// newest first, without pagination. Date strings must be strict
// YYYY-MM-DD: created_after compares with >, created_before with <.
func (s *TaskService) Filter(ctx context.Context, claims *jwt.Claims, completed *bool, createdAfter, createdBefore *string) ([]models.TaskDB, error) {
	after, err := parseDate(createdAfter)
	if err != nil {
		return nil, err
	}
	before, err := parseDate(createdBefore)
	if err != nil {
		return nil, err
	}

	tasks, err := s.readRepo.Filter(ctx, claims.UserID, completed, after, before)
	if err != nil {
		logger.Log.Errorw("failed to filter tasks", "user_id", claims.UserID, "error", err)
		return nil, err
	}

	return tasks, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	return &t, nil
}
