// Package client is a typed HTTP client for the todo API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yukikurage/todo-tracker/internal/dto"
	apierrors "github.com/yukikurage/todo-tracker/internal/errors"
)

// Error is returned for any non-2xx response.
type Error struct {
	StatusCode int
	apierrors.APIError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("todo api: %s (%d)", e.Message, e.StatusCode)
}

// Client wraps http.Client with helpers for the /todos endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListTodos fetches every todo.
func (c *Client) ListTodos(ctx context.Context) ([]dto.TodoDTO, error) {
	var todos []dto.TodoDTO
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []dto.TodoDTO{}
	}
	return todos, nil
}

// CreateTodo creates a todo and returns the stored copy.
func (c *Client) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoDTO, error) {
	var todo dto.TodoDTO
	if err := c.do(ctx, http.MethodPost, "/todos", req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo overwrites the non-nil fields of req.
func (c *Client) UpdateTodo(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoDTO, error) {
	var todo dto.TodoDTO
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	var resp dto.MessageResponse
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		// Bodies that are not APIError JSON still yield a status-only error.
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.APIError)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
