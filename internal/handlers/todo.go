package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/todo-tracker/internal/dto"
	apierrors "github.com/yukikurage/todo-tracker/internal/errors"
	"github.com/yukikurage/todo-tracker/internal/middleware"
	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/schema"
	"github.com/yukikurage/todo-tracker/internal/services"
	"github.com/yukikurage/todo-tracker/internal/utils"
)

type TodoHandler struct {
	service *services.TodoService
	logger  log.FieldLogger
}

func NewTodoHandler(service *services.TodoService, logger log.FieldLogger) *TodoHandler {
	return &TodoHandler{
		service: service,
		logger:  logger,
	}
}

// ListTodos returns every todo
func (h *TodoHandler) ListTodos(c *gin.Context) {
	todos, err := h.service.ListTodos(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching todos")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTOs(todos))
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTodoInput{
		Text:     req.Text,
		Priority: models.Priority(req.Priority),
		Category: req.Category,
	}
	if req.DueDate != nil {
		due, err := utils.ParseDueDate(*req.DueDate)
		if err != nil {
			apierrors.InvalidFormat(c, "dueDate", err.Error())
			return
		}
		input.DueDate = due
	}

	todo, err := h.service.CreateTodo(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, "Error creating todo")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// UpdateTodo overwrites the allow-listed fields present in the body
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, field, err := parseUpdateTodoInput(rawReq)
	if err != nil {
		apierrors.InvalidFormat(c, field, err.Error())
		return
	}

	todo, err := h.service.UpdateTodo(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err, "Error updating todo")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo permanently deletes a todo
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	if err := h.service.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Error deleting todo")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Todo deleted successfully"})
}

var (
	errNotString = errors.New("must be a string")
	errNotBool   = errors.New("must be a boolean")
)

// parseUpdateTodoInput reads only the updatable fields. Identifiers and
// unknown keys in the body are ignored.
func parseUpdateTodoInput(raw map[string]any) (services.UpdateTodoInput, string, error) {
	var input services.UpdateTodoInput

	if v, ok := raw["text"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "text", errNotString
		}
		input.Text = &s
	}
	if v, ok := raw["completed"]; ok {
		b, ok := v.(bool)
		if !ok {
			return input, "completed", errNotBool
		}
		input.Completed = &b
	}
	if v, ok := raw["priority"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "priority", errNotString
		}
		p := models.Priority(s)
		input.Priority = &p
	}
	if v, ok := raw["dueDate"]; ok {
		// dueDate was provided (might be null)
		if v == nil {
			input.ClearDueDate = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, "dueDate", errNotString
			}
			due, err := utils.ParseDueDate(s)
			if err != nil {
				return input, "dueDate", err
			}
			if due == nil {
				input.ClearDueDate = true
			}
			input.DueDate = due
		}
	}
	if v, ok := raw["category"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "category", errNotString
		}
		input.Category = &s
	}

	return input, "", nil
}

func (h *TodoHandler) respondError(c *gin.Context, err error, fallback string) {
	var schemaErr *schema.ValidationError
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, "Todo not found")
	case errors.Is(err, services.ErrTextRequired):
		apierrors.MissingField(c, "text")
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.InvalidFormat(c, "priority", err.Error())
	case errors.As(err, &schemaErr):
		apierrors.BadRequestWithDetails(c, "Todo does not match the storage schema", schemaErr.Violations)
	default:
		_ = c.Error(err)
		middleware.GetLogger(c, h.logger).WithError(err).Error(fallback)
		apierrors.InternalError(c, fallback)
	}
}
