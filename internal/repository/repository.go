package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/todo-tracker/internal/models"
)

// ErrNotFound is returned when no todo has the requested identifier.
var ErrNotFound = errors.New("todo not found")

// TodoPatch lists the fields an update writes. Nil fields keep their stored value.
type TodoPatch struct {
	Text         *string
	Completed    *bool
	Priority     *models.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Category     *string
}

// Empty reports whether the patch writes nothing.
func (p TodoPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Category == nil
}

// Apply copies the patched fields onto todo.
func (p TodoPatch) Apply(todo *models.Todo) {
	if p.Text != nil {
		todo.Text = *p.Text
	}
	if p.Completed != nil {
		todo.Completed = *p.Completed
	}
	if p.Priority != nil {
		todo.Priority = *p.Priority
	}
	if p.ClearDueDate {
		todo.DueDate = nil
	} else if p.DueDate != nil {
		todo.DueDate = p.DueDate
	}
	if p.Category != nil {
		todo.Category = *p.Category
	}
}

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// List returns every todo in the backend's natural order
	List(ctx context.Context) ([]models.Todo, error)

	// FindByID finds a todo by its identifier
	FindByID(ctx context.Context, id string) (*models.Todo, error)

	// Create persists a new todo and assigns its identifier
	Create(ctx context.Context, todo *models.Todo) error

	// Update writes only the patched fields in one atomic operation and
	// returns the stored todo afterwards
	Update(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error)

	// Delete permanently removes a todo
	Delete(ctx context.Context, id string) error
}
