package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/repository"
	"github.com/yukikurage/todo-tracker/internal/schema"
)

var (
	ErrTodoNotFound    = errors.New("todo not found")
	ErrTextRequired    = errors.New("text is required")
	ErrInvalidPriority = errors.New("priority must be one of Low, Medium, High")
	ErrInvalidTodo     = errors.New("todo does not satisfy the storage schema")
)

// TodoService handles todo business logic
type TodoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(repo repository.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// CreateTodoInput represents input for creating a todo. Empty optional
// fields receive their defaults.
type CreateTodoInput struct {
	Text     string
	Priority models.Priority
	DueDate  *time.Time
	Category string
}

// UpdateTodoInput represents the allow-listed fields an update may overwrite.
// Nil pointers leave the stored value unchanged.
type UpdateTodoInput struct {
	Text         *string
	Completed    *bool
	Priority     *models.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Category     *string
}

// ListTodos returns every stored todo
func (s *TodoService) ListTodos(ctx context.Context) ([]models.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// CreateTodo applies defaults, validates and persists a new todo
func (s *TodoService) CreateTodo(ctx context.Context, input CreateTodoInput) (*models.Todo, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.Category == "" {
		input.Category = models.DefaultCategory
	}

	todo := &models.Todo{
		Text:      input.Text,
		Completed: false,
		Priority:  input.Priority,
		DueDate:   input.DueDate,
		Category:  input.Category,
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, mapWriteError("failed to create todo", err)
	}
	return todo, nil
}

// UpdateTodo validates the existing todo merged with the input, then writes
// only the provided fields.
func (s *TodoService) UpdateTodo(ctx context.Context, id string, input UpdateTodoInput) (*models.Todo, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if input.Text != nil && strings.TrimSpace(*input.Text) == "" {
		return nil, ErrTextRequired
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	patch := repository.TodoPatch{
		Text:         input.Text,
		Completed:    input.Completed,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		ClearDueDate: input.ClearDueDate,
		Category:     input.Category,
	}
	merged := *current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, mapWriteError("failed to update todo", err)
	}

	todo, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, mapWriteError("failed to update todo", err)
	}
	return todo, nil
}

// DeleteTodo permanently removes a todo
func (s *TodoService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// mapWriteError turns schema rejections from the storage layer into a
// client-facing validation error and wraps everything else.
func mapWriteError(op string, err error) error {
	if errors.Is(err, schema.ErrInvalidDocument) {
		return fmt.Errorf("%w: %w", ErrInvalidTodo, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
