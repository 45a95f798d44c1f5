package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukikurage/todo-tracker/internal/dto"
	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/utils"
)

type formField int

const (
	fieldText formField = iota
	fieldPriority
	fieldDueDate
	fieldCategory
	fieldCount
)

const (
	errTextRequired = "Please enter a task description"
	errBadDueDate   = "Due date must be YYYY-MM-DD"
)

type todoForm struct {
	text     textinput.Model
	dueDate  textinput.Model
	category textinput.Model
	priority models.Priority
	focus    formField
}

func newTodoForm() todoForm {
	text := textinput.New()
	text.Placeholder = "What needs to be done?"
	text.Prompt = ""

	dueDate := textinput.New()
	dueDate.Placeholder = utils.DateLayout
	dueDate.CharLimit = len("2006-01-02T15:04:05Z07:00")
	dueDate.Prompt = ""

	category := textinput.New()
	category.Placeholder = models.DefaultCategory
	category.Prompt = ""

	f := todoForm{text: text, dueDate: dueDate, category: category}
	f.reset()
	return f
}

// reset restores the defaults: Medium priority, General category, no due date.
func (f *todoForm) reset() {
	f.text.Reset()
	f.dueDate.Reset()
	f.category.SetValue(models.DefaultCategory)
	f.priority = models.PriorityMedium
	f.setFocus(fieldText)
}

func (f *todoForm) setFocus(field formField) tea.Cmd {
	f.focus = (field + fieldCount) % fieldCount
	f.text.Blur()
	f.dueDate.Blur()
	f.category.Blur()
	switch f.focus {
	case fieldText:
		return f.text.Focus()
	case fieldDueDate:
		return f.dueDate.Focus()
	case fieldCategory:
		return f.category.Focus()
	}
	return nil
}

func (f *todoForm) cyclePriority(step int) {
	idx := 0
	for i, p := range models.Priorities {
		if p == f.priority {
			idx = i
		}
	}
	n := len(models.Priorities)
	f.priority = models.Priorities[((idx+step)%n+n)%n]
}

func (f *todoForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldText:
		f.text, cmd = f.text.Update(msg)
	case fieldDueDate:
		f.dueDate, cmd = f.dueDate.Update(msg)
	case fieldCategory:
		f.category, cmd = f.category.Update(msg)
	}
	return cmd
}

// request validates the form and builds the create payload. A non-empty
// string return is a message for the user and no request should be sent.
func (f *todoForm) request() (dto.CreateTodoRequest, string) {
	text := strings.TrimSpace(f.text.Value())
	if text == "" {
		return dto.CreateTodoRequest{}, errTextRequired
	}

	req := dto.CreateTodoRequest{
		Text:     text,
		Priority: string(f.priority),
		Category: strings.TrimSpace(f.category.Value()),
	}
	if due := strings.TrimSpace(f.dueDate.Value()); due != "" {
		if _, err := utils.ParseDueDate(due); err != nil {
			return dto.CreateTodoRequest{}, errBadDueDate
		}
		req.DueDate = &due
	}
	return req, ""
}
