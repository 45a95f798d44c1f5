package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/utils"
)

// MaxSuggestedTodos caps how many drafts a single request may return.
const MaxSuggestedTodos = 10

var (
	ErrSuggestionsNotConfigured = errors.New("suggestion service is not configured")
	ErrNoSuggestions            = errors.New("no todos could be extracted from the text")
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SuggestionService drafts todos from free text using an OpenAI chat model
type SuggestionService struct {
	client chatCompleter
	model  string
	now    func() time.Time
}

// SuggestedTodo is a draft todo; it is never persisted by the service.
type SuggestedTodo struct {
	Text     string
	Priority models.Priority
	DueDate  *time.Time
	Category string
}

// NewSuggestionService returns nil when no API key is configured.
func NewSuggestionService(apiKey, model string) *SuggestionService {
	if apiKey == "" {
		return nil
	}
	return newSuggestionService(openai.NewClient(apiKey), model)
}

func newSuggestionService(client chatCompleter, model string) *SuggestionService {
	if model == "" {
		model = openai.GPT4o
	}
	return &SuggestionService{
		client: client,
		model:  model,
		now:    time.Now,
	}
}

// SuggestTodos asks the model to extract todos from text
func (s *SuggestionService) SuggestTodos(ctx context.Context, text string) ([]SuggestedTodo, error) {
	if s == nil || s.client == nil {
		return nil, ErrSuggestionsNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	prompt := fmt.Sprintf(`You extract personal to-do items from text.

Today is %s.

Text:
%s

Reply with only a JSON array, no prose:
[
  {
    "text": "short imperative description",
    "priority": "Low" | "Medium" | "High",
    "dueDate": "YYYY-MM-DD" or null,
    "category": "one or two word category"
  }
]

Rules:
- Return [] when there is nothing to do
- Resolve relative dates ("tomorrow", "next week") against today
- Use "General" when no category fits`, s.now().Format(utils.DateLayout), text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	todos, err := parseSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return nil, ErrNoSuggestions
	}
	return todos, nil
}

type rawSuggestion struct {
	Text     string  `json:"text"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"dueDate"`
	Category string  `json:"category"`
}

// parseSuggestions decodes the model output, drops unusable entries and
// normalises the rest to values the todo schema accepts.
func parseSuggestions(content string) ([]SuggestedTodo, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw []rawSuggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	todos := make([]SuggestedTodo, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}

		priority := models.Priority(r.Priority)
		if !priority.Valid() {
			priority = models.PriorityMedium
		}

		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = models.DefaultCategory
		}

		var due *time.Time
		if r.DueDate != nil {
			// An unparseable date is dropped rather than failing the draft.
			due, _ = utils.ParseDueDate(*r.DueDate)
		}

		todos = append(todos, SuggestedTodo{
			Text:     text,
			Priority: priority,
			DueDate:  due,
			Category: category,
		})
		if len(todos) == MaxSuggestedTodos {
			break
		}
	}
	return todos, nil
}
