package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/todo-tracker/internal/models"
)

const (
	listCacheKey = "todos:list"
	listGenKey   = "todos:list:gen"
)

// CachedTodoRepository wraps a TodoRepository with a Redis copy of the List
// result. Writes go to the backing repository first and then evict. Every
// eviction bumps a generation counter; a List result is only stored if the
// generation it was read under is still current.
type CachedTodoRepository struct {
	base   TodoRepository
	redis  *redis.Client
	ttl    time.Duration
	logger log.FieldLogger
}

// NewCachedTodoRepository creates a caching wrapper using the provided Redis client and TTL.
func NewCachedTodoRepository(base TodoRepository, client *redis.Client, ttl time.Duration, logger log.FieldLogger) *CachedTodoRepository {
	if base == nil {
		panic("repository.NewCachedTodoRepository: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &CachedTodoRepository{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedTodoRepository) List(ctx context.Context) ([]models.Todo, error) {
	if todos, ok := c.load(ctx); ok {
		return todos, nil
	}

	gen, genErr := c.generation(ctx)
	todos, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		c.store(ctx, gen, todos)
	}
	return todos, nil
}

func (c *CachedTodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	return c.base.FindByID(ctx, id)
}

func (c *CachedTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := c.base.Create(ctx, todo); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *CachedTodoRepository) Update(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error) {
	todo, err := c.base.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.evict(ctx)
	return todo, nil
}

func (c *CachedTodoRepository) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *CachedTodoRepository) load(ctx context.Context) ([]models.Todo, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Fall back to the backing repository without failing.
			c.logger.WithError(err).Warn("failed to read todo list cache")
		}
		return nil, false
	}

	var entries []cachedTodo
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.WithError(err).Warn("discarding undecodable todo list cache entry")
		_ = c.redis.Del(ctx, listCacheKey).Err()
		return nil, false
	}

	todos := make([]models.Todo, 0, len(entries))
	for _, e := range entries {
		todos = append(todos, e.toModel())
	}
	return todos, true
}

func (c *CachedTodoRepository) generation(ctx context.Context) (int64, error) {
	if c.redis == nil {
		return 0, nil
	}
	gen, err := c.redis.Get(ctx, listGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.WithError(err).Warn("failed to read todo list cache generation")
	}
	return gen, err
}

func (c *CachedTodoRepository) store(ctx context.Context, gen int64, todos []models.Todo) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	entries := make([]cachedTodo, 0, len(todos))
	for _, t := range todos {
		entries = append(entries, newCachedTodo(t))
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.WithError(err).Error("failed to marshal todo list cache payload")
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, listGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleList
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listCacheKey, data, c.ttl)
			return nil
		})
		return err
	}, listGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleList), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("skipping todo list cache store after concurrent write")
	default:
		c.logger.WithError(err).Warn("failed to store todo list cache entry")
	}
}

var errStaleList = errors.New("todo list changed while loading")

func (c *CachedTodoRepository) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, listGenKey)
		pipe.Del(ctx, listCacheKey)
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Error("failed to evict todo list cache entry")
	}
}

// cachedTodo keeps the creation time that models.Todo hides from JSON.
type cachedTodo struct {
	models.Todo
	CreatedAt time.Time `json:"createdAt"`
}

func newCachedTodo(t models.Todo) cachedTodo {
	return cachedTodo{Todo: t, CreatedAt: t.CreatedAt}
}

func (c cachedTodo) toModel() models.Todo {
	t := c.Todo
	t.CreatedAt = c.CreatedAt
	return t
}
