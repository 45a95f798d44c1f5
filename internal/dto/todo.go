package dto

import (
	"time"

	"github.com/yukikurage/todo-tracker/internal/models"
)

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID        string          `json:"_id"`
	Text      string          `json:"text"`
	Completed bool            `json:"completed"`
	Priority  models.Priority `json:"priority"`
	DueDate   *time.Time      `json:"dueDate"`
	Category  string          `json:"category"`
}

// CreateTodoRequest is the body of POST /todos
type CreateTodoRequest struct {
	Text     string  `json:"text"`
	Priority string  `json:"priority,omitempty"`
	DueDate  *string `json:"dueDate,omitempty"`
	Category string  `json:"category,omitempty"`
}

// UpdateTodoRequest is the body of PUT /todos/:id as sent by clients. The
// server reads the raw object instead so it can tell absent keys from nulls.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// SuggestTodosRequest is the body of POST /todos/suggestions
type SuggestTodosRequest struct {
	Text string `json:"text"`
}

// SuggestedTodoDTO is a draft todo that has not been persisted
type SuggestedTodoDTO struct {
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority"`
	DueDate  *time.Time      `json:"dueDate"`
	Category string          `json:"category"`
}

// SuggestTodosResponse wraps the drafts returned by the suggestion endpoint
type SuggestTodosResponse struct {
	Todos []SuggestedTodoDTO `json:"todos"`
}

// Conversion functions

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:        todo.ID,
		Text:      todo.Text,
		Completed: todo.Completed,
		Priority:  todo.Priority,
		DueDate:   todo.DueDate,
		Category:  todo.Category,
	}
}

// ToTodoDTOs converts a slice of todos, never returning nil
func ToTodoDTOs(todos []models.Todo) []TodoDTO {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}
	return items
}
