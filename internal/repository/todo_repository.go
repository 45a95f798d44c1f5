package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/todo-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository backed by a SQL database
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// List retrieves all todos in insertion order
func (r *GormTodoRepository) List(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// FindByID finds a todo by ID
func (r *GormTodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.WithContext(ctx).First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// Create creates a new todo
func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// Update sets only the patched columns. Save is avoided because it falls
// back to an insert when no row matches.
func (r *GormTodoRepository) Update(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Todo{}).Where("id = ?", id).Updates(patchColumns(patch))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&todo, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func patchColumns(patch TodoPatch) map[string]any {
	columns := map[string]any{"updated_at": time.Now()}
	if patch.Text != nil {
		columns["text"] = *patch.Text
	}
	if patch.Completed != nil {
		columns["completed"] = *patch.Completed
	}
	if patch.Priority != nil {
		columns["priority"] = string(*patch.Priority)
	}
	if patch.ClearDueDate {
		columns["due_date"] = nil
	} else if patch.DueDate != nil {
		columns["due_date"] = *patch.DueDate
	}
	if patch.Category != nil {
		columns["category"] = *patch.Category
	}
	return columns
}

// Delete hard deletes a todo
func (r *GormTodoRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
