package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukikurage/todo-tracker/internal/dto"
)

const requestTimeout = 10 * time.Second

// TodoAPI is the subset of the HTTP client the UI needs.
type TodoAPI interface {
	ListTodos(ctx context.Context) ([]dto.TodoDTO, error)
	CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoDTO, error)
	UpdateTodo(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoDTO, error)
	DeleteTodo(ctx context.Context, id string) error
}

type todosLoadedMsg struct {
	todos []dto.TodoDTO
	err   error
}

type todoCreatedMsg struct {
	todo *dto.TodoDTO
	err  error
}

type todoUpdatedMsg struct {
	todo *dto.TodoDTO
	err  error
}

type todoDeletedMsg struct {
	id  string
	err error
}

func loadTodos(api TodoAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		todos, err := api.ListTodos(ctx)
		return todosLoadedMsg{todos: todos, err: err}
	}
}

func createTodo(api TodoAPI, req dto.CreateTodoRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		todo, err := api.CreateTodo(ctx, req)
		return todoCreatedMsg{todo: todo, err: err}
	}
}

func setCompleted(api TodoAPI, id string, completed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		todo, err := api.UpdateTodo(ctx, id, dto.UpdateTodoRequest{Completed: &completed})
		return todoUpdatedMsg{todo: todo, err: err}
	}
}

func deleteTodo(api TodoAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return todoDeletedMsg{id: id, err: api.DeleteTodo(ctx, id)}
	}
}
