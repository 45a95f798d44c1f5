package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yukikurage/todo-tracker/internal/dto"
	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/utils"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	categoryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")).Padding(0, 1)
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle     = lipgloss.NewStyle().Width(10)
	focusedLabel   = labelStyle.Foreground(lipgloss.Color("13")).Bold(true)
	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todo List") + "\n\n")

	if m.mode == modeForm {
		m.writeForm(&b)
		return b.String()
	}

	switch {
	case m.loading && m.todos == nil:
		b.WriteString("Loading...\n\n")
	case len(m.todos) == 0:
		b.WriteString("  No todos yet. Press a to add one.\n\n")
	default:
		for i, todo := range m.todos {
			b.WriteString(renderTodo(todo, i == m.cursor))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	b.WriteString(helpStyle.Render("j/k move • enter toggle • a add • d delete • r refresh • q quit") + "\n")
	return b.String()
}

func renderTodo(todo dto.TodoDTO, selected bool) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}

	check := "[ ]"
	text := todo.Text
	if todo.Completed {
		check = "[x]"
		text = doneStyle.Render(text)
	}

	parts := []string{cursor + check, text, renderPriority(todo.Priority)}
	if todo.Category != "" {
		parts = append(parts, categoryStyle.Render(todo.Category))
	}
	if due := utils.FormatDueDate(todo.DueDate); due != "" {
		parts = append(parts, dueStyle.Render("Due: "+due))
	}
	return strings.Join(parts, " ")
}

func renderPriority(p models.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(fmt.Sprintf("[%s]", p))
}

func (m *Model) writeForm(b *strings.Builder) {
	f := &m.form
	label := func(field formField, name string) string {
		if f.focus == field {
			return focusedLabel.Render(name)
		}
		return labelStyle.Render(name)
	}

	b.WriteString(label(fieldText, "Task") + f.text.View() + "\n")
	b.WriteString(label(fieldPriority, "Priority") + "< " + renderPriority(f.priority) + " >\n")
	b.WriteString(label(fieldDueDate, "Due") + f.dueDate.View() + "\n")
	b.WriteString(label(fieldCategory, "Category") + f.category.View() + "\n\n")

	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr) + "\n\n")
	}
	b.WriteString(helpStyle.Render("tab next field • ←/→ priority • enter add • esc cancel") + "\n")
}
