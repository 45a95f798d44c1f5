// Package tui is the terminal client for the todo API.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukikurage/todo-tracker/internal/dto"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

// Model holds the local copy of the todo list. Every change to todos comes
// from a server response.
type Model struct {
	api     TodoAPI
	todos   []dto.TodoDTO
	cursor  int
	mode    mode
	form    todoForm
	loading bool
	err     error
	formErr string
}

// New creates a Model backed by api.
func New(api TodoAPI) *Model {
	return &Model{
		api:     api,
		form:    newTodoForm(),
		loading: true,
	}
}

// Run starts the UI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, api TodoAPI) error {
	program := tea.NewProgram(New(api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return loadTodos(m.api)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeForm {
			return m, m.updateForm(msg)
		}
		return m, m.updateList(msg)

	case todosLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.todos = msg.todos
		m.clampCursor()

	case todoCreatedMsg:
		if msg.err != nil {
			m.formErr = msg.err.Error()
			return m, nil
		}
		m.todos = append(m.todos, *msg.todo)
		m.cursor = len(m.todos) - 1
		m.form.reset()
		m.formErr = ""
		m.err = nil
		m.mode = modeList

	case todoUpdatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		for i := range m.todos {
			if m.todos[i].ID == msg.todo.ID {
				m.todos[i] = *msg.todo
				break
			}
		}

	case todoDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		for i := range m.todos {
			if m.todos[i].ID == msg.id {
				m.todos = append(m.todos[:i], m.todos[i+1:]...)
				break
			}
		}
		m.clampCursor()

	default:
		if m.mode == modeForm {
			return m, m.form.update(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
	case "enter", " ":
		if todo, ok := m.selected(); ok {
			return setCompleted(m.api, todo.ID, !todo.Completed)
		}
	case "d":
		if todo, ok := m.selected(); ok {
			return deleteTodo(m.api, todo.ID)
		}
	case "a", "n":
		m.mode = modeForm
		m.formErr = ""
		return m.form.setFocus(fieldText)
	case "r":
		m.loading = true
		return loadTodos(m.api)
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.formErr = ""
		return nil
	case "tab", "down":
		return m.form.setFocus(m.form.focus + 1)
	case "shift+tab", "up":
		return m.form.setFocus(m.form.focus - 1)
	case "enter":
		req, problem := m.form.request()
		if problem != "" {
			m.formErr = problem
			return nil
		}
		m.formErr = ""
		return createTodo(m.api, req)
	}

	if m.form.focus == fieldPriority {
		switch msg.String() {
		case "left", "h":
			m.form.cyclePriority(-1)
		case "right", "l", " ":
			m.form.cyclePriority(1)
		}
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) selected() (dto.TodoDTO, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return dto.TodoDTO{}, false
	}
	return m.todos[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
