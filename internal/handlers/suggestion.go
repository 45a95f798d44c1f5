package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/todo-tracker/internal/dto"
	apierrors "github.com/yukikurage/todo-tracker/internal/errors"
	"github.com/yukikurage/todo-tracker/internal/middleware"
	"github.com/yukikurage/todo-tracker/internal/services"
)

type SuggestionHandler struct {
	service *services.SuggestionService
	logger  log.FieldLogger
}

// NewSuggestionHandler accepts a nil service; requests then get a 503.
func NewSuggestionHandler(service *services.SuggestionService, logger log.FieldLogger) *SuggestionHandler {
	return &SuggestionHandler{
		service: service,
		logger:  logger,
	}
}

// SuggestTodos drafts todos from free text without persisting them
func (h *SuggestionHandler) SuggestTodos(c *gin.Context) {
	if h.service == nil {
		apierrors.ServiceUnavailable(c, "Suggestions are not configured. Set OPENAI_API_KEY to enable them.")
		return
	}

	var req dto.SuggestTodosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.service.SuggestTodos(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTextRequired):
			apierrors.MissingField(c, "text")
		case errors.Is(err, services.ErrSuggestionsNotConfigured):
			apierrors.ServiceUnavailable(c, "")
		case errors.Is(err, services.ErrNoSuggestions):
			c.JSON(http.StatusOK, dto.SuggestTodosResponse{Todos: []dto.SuggestedTodoDTO{}})
		default:
			middleware.GetLogger(c, h.logger).WithError(err).Error("failed to generate suggestions")
			apierrors.BadGateway(c, "Failed to generate suggestions")
		}
		return
	}

	items := make([]dto.SuggestedTodoDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = dto.SuggestedTodoDTO{
			Text:     s.Text,
			Priority: s.Priority,
			DueDate:  s.DueDate,
			Category: s.Category,
		}
	}
	c.JSON(http.StatusOK, dto.SuggestTodosResponse{Todos: items})
}
