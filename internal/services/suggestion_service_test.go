package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/todo-tracker/internal/models"
)

type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

func TestNewSuggestionService_RequiresKey(t *testing.T) {
	var s *SuggestionService = NewSuggestionService("", "")
	assert.Nil(t, s)

	_, err := s.SuggestTodos(context.Background(), "buy milk")
	assert.ErrorIs(t, err, ErrSuggestionsNotConfigured)
}

func TestSuggestTodos(t *testing.T) {
	fake := &fakeCompleter{content: "```json\n" + `[
		{"text": "Buy milk", "priority": "High", "dueDate": "2025-03-15", "category": "Errands"},
		{"text": "  ", "priority": "Low"},
		{"text": "Call mom", "priority": "whenever", "dueDate": "someday", "category": ""}
	]` + "\n```"}
	service := newSuggestionService(fake, "")
	service.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }

	todos, err := service.SuggestTodos(context.Background(), "buy milk tomorrow, call mom")
	require.NoError(t, err)
	require.Len(t, todos, 2)

	assert.Equal(t, "Buy milk", todos[0].Text)
	assert.Equal(t, models.PriorityHigh, todos[0].Priority)
	require.NotNil(t, todos[0].DueDate)
	assert.Equal(t, "2025-03-15", todos[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "Errands", todos[0].Category)

	assert.Equal(t, models.PriorityMedium, todos[1].Priority)
	assert.Nil(t, todos[1].DueDate)
	assert.Equal(t, models.DefaultCategory, todos[1].Category)

	assert.Equal(t, openai.GPT4o, fake.lastReq.Model)
	require.Len(t, fake.lastReq.Messages, 1)
	assert.Contains(t, fake.lastReq.Messages[0].Content, "Today is 2025-03-14")
}

func TestSuggestTodos_Empty(t *testing.T) {
	service := newSuggestionService(&fakeCompleter{content: "[]"}, "gpt-4o-mini")

	_, err := service.SuggestTodos(context.Background(), "nothing to do")
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestSuggestTodos_BlankText(t *testing.T) {
	service := newSuggestionService(&fakeCompleter{content: "[]"}, "")

	_, err := service.SuggestTodos(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestSuggestTodos_UpstreamError(t *testing.T) {
	upstream := errors.New("rate limited")
	service := newSuggestionService(&fakeCompleter{err: upstream}, "")

	_, err := service.SuggestTodos(context.Background(), "buy milk")
	assert.ErrorIs(t, err, upstream)
}

func TestParseSuggestions_Malformed(t *testing.T) {
	_, err := parseSuggestions("Sure! Here are your tasks.")
	assert.Error(t, err)
}

func TestParseSuggestions_Caps(t *testing.T) {
	content := "["
	for i := 0; i < MaxSuggestedTodos+5; i++ {
		if i > 0 {
			content += ","
		}
		content += `{"text": "task"}`
	}
	content += "]"

	todos, err := parseSuggestions(content)
	require.NoError(t, err)
	assert.Len(t, todos, MaxSuggestedTodos)
}
