package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/gw-task-manager/internal/models"
)

func TestTaskCacheRepository(t *testing.T) {
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	assert.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	assert.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	err = rdb.Ping(ctx).Err()
	assert.NoError(t, err)

	repo := NewTaskCacheRepository(rdb, 2*time.Second)

	newTask := func() *models.TaskDB {
		now := time.Now().UTC().Truncate(time.Second)
		return &models.TaskDB{
			TaskID:      uuid.New(),
			UserID:      uuid.New(),
			Title:       "Buy groceries",
			Description: "Milk, eggs, bread",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("Set and Get task", func(t *testing.T) {
		task := newTask()

		err := repo.Set(ctx, task)
		assert.NoError(t, err)

		got, err := repo.Get(ctx, task.TaskID)
		assert.NoError(t, err)
		assert.Equal(t, task.TaskID, got.TaskID)
		assert.Equal(t, task.UserID, got.UserID)
		assert.Equal(t, task.Title, got.Title)
	})

	t.Run("Get missing key returns error", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found in cache")
	})

	t.Run("Delete invalidates the entry", func(t *testing.T) {
		task := newTask()

		assert.NoError(t, repo.Set(ctx, task))
		assert.NoError(t, repo.Delete(ctx, task.TaskID))

		_, err := repo.Get(ctx, task.TaskID)
		assert.Error(t, err)
	})

	t.Run("Cached task expires", func(t *testing.T) {
		task := newTask()

		assert.NoError(t, repo.Set(ctx, task))
		time.Sleep(3 * time.Second)

		_, err := repo.Get(ctx, task.TaskID)
		assert.Error(t, err)
	})
}
