package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-task-manager/internal/logger"
	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

// TaskCacheRepository caches single tasks in Redis.
type TaskCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached tasks
}

// NewTaskCacheRepository creates a new cache repository with the given TTL.
func NewTaskCacheRepository(client *redis.Client, expiration time.Duration) *TaskCacheRepository {
	return &TaskCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func taskCacheKey(taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s", taskID)
}

// Get fetches a cached task by ID.
func (r *TaskCacheRepository) Get(ctx context.Context, taskID uuid.UUID) (*models.TaskDB, error) {
	key := taskCacheKey(taskID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow("task cache get",
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return nil, fmt.Errorf("task %s not found in cache", taskID)
		}
		return nil, err
	}

	var task models.TaskDB
	if err := json.Unmarshal([]byte(val), &task); err != nil {
		logger.Log.Infow("task cache get",
			"key", key,
			"value", val,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow("task cache get",
		"key", key,
		"error", nil,
	)

	return &task, nil
}

// Set caches a task with the repository's expiration.
func (r *TaskCacheRepository) Set(ctx context.Context, task *models.TaskDB) error {
	key := taskCacheKey(task.TaskID)

	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow("task cache set",
		"key", key,
		"error", err,
	)

	return err
}

// Delete drops a task from the cache. Used to invalidate on mutation.
func (r *TaskCacheRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	key := taskCacheKey(taskID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow("task cache delete",
		"key", key,
		"error", err,
	)

	return err
}
