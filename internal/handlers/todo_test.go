package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-tracker/internal/dto"
	apierrors "github.com/yukikurage/todo-tracker/internal/errors"
	"github.com/yukikurage/todo-tracker/internal/models"
	"github.com/yukikurage/todo-tracker/internal/repository"
	"github.com/yukikurage/todo-tracker/internal/schema"
	"github.com/yukikurage/todo-tracker/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TodoHandlerTestSuite defines the test suite for TodoHandler
type TodoHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    repository.TodoRepository
	handler *TodoHandler
	router  *gin.Engine
}

// SetupTest runs before each test
func (suite *TodoHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&models.Todo{}))

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	logger, _ := test.NewNullLogger()
	suite.repo = repository.NewTodoRepository(suite.db)
	suite.handler = NewTodoHandler(services.NewTodoService(suite.repo), logger)

	gin.SetMode(gin.TestMode)
	suite.router = NewRouter(suite.handler, NewSuggestionHandler(nil, logger), logger)
}

// TearDownTest runs after each test
func (suite *TodoHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TodoHandlerTestSuite) createTestTodo(text string) *models.Todo {
	todo := &models.Todo{
		Text:     text,
		Priority: models.PriorityMedium,
		Category: models.DefaultCategory,
	}
	suite.Require().NoError(suite.repo.Create(context.Background(), todo))
	return todo
}

func (suite *TodoHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		var payload []byte
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			var err error
			payload, err = json.Marshal(b)
			suite.Require().NoError(err)
		}
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TodoHandlerTestSuite) listTodos() []dto.TodoDTO {
	w := suite.do(http.MethodGet, "/todos", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var todos []dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &todos))
	return todos
}

func (suite *TodoHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) apierrors.APIError {
	var apiErr apierrors.APIError
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

// TestListTodos_Empty returns a JSON array even when nothing is stored
func (suite *TodoHandlerTestSuite) TestListTodos_Empty() {
	w := suite.do(http.MethodGet, "/todos", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), "[]", w.Body.String())
}

// TestListTodos_Success calls the handler directly with a test context
func (suite *TodoHandlerTestSuite) TestListTodos_Success() {
	todo := suite.createTestTodo("Test Todo")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/todos", nil)

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response, 1)
	assert.Equal(suite.T(), todo.ID, response[0]["_id"])
	assert.Equal(suite.T(), "Test Todo", response[0]["text"])
	assert.Contains(suite.T(), response[0], "dueDate")
	assert.Nil(suite.T(), response[0]["dueDate"])
}

// TestCreateTodo_Defaults tests creation with only text
func (suite *TodoHandlerTestSuite) TestCreateTodo_Defaults() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk"})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(suite.T(), response.ID)
	assert.Equal(suite.T(), "Buy milk", response.Text)
	assert.False(suite.T(), response.Completed)
	assert.Equal(suite.T(), models.PriorityMedium, response.Priority)
	assert.Equal(suite.T(), "General", response.Category)
	assert.Nil(suite.T(), response.DueDate)
}

// TestCreateTodo_AllFields accepts the form values the client sends
func (suite *TodoHandlerTestSuite) TestCreateTodo_AllFields() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{
		"text":     "File taxes",
		"priority": "High",
		"dueDate":  "2025-04-15",
		"category": "Finance",
	})

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.PriorityHigh, response.Priority)
	assert.Equal(suite.T(), "Finance", response.Category)
	suite.Require().NotNil(response.DueDate)
	assert.Equal(suite.T(), "2025-04-15", response.DueDate.Format("2006-01-02"))
}

// TestCreateTodo_EmptyDueDate treats "" as no due date
func (suite *TodoHandlerTestSuite) TestCreateTodo_EmptyDueDate() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk", "dueDate": ""})

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(suite.T(), response.DueDate)
}

// TestCreateTodo_MissingText rejects and persists nothing
func (suite *TodoHandlerTestSuite) TestCreateTodo_MissingText() {
	bodies := []any{
		map[string]any{},
		map[string]any{"text": ""},
		map[string]any{"text": "   "},
		map[string]any{"text": 42},
		"not json",
	}

	for _, body := range bodies {
		w := suite.do(http.MethodPost, "/todos", body)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, "body %v", body)
	}

	assert.Empty(suite.T(), suite.listTodos())
}

// TestCreateTodo_InvalidPriority rejects values outside the enumeration
func (suite *TodoHandlerTestSuite) TestCreateTodo_InvalidPriority() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk", "priority": "Urgent"})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidFormat, suite.decodeError(w).Code)
	assert.Empty(suite.T(), suite.listTodos())
}

// TestCreateTodo_InvalidDueDate rejects unparseable dates
func (suite *TodoHandlerTestSuite) TestCreateTodo_InvalidDueDate() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk", "dueDate": "tomorrow"})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Empty(suite.T(), suite.listTodos())
}

// TestUpdateTodo_CompletedOnly leaves every other field unchanged
func (suite *TodoHandlerTestSuite) TestUpdateTodo_CompletedOnly() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{
		"text":     "File taxes",
		"priority": "Low",
		"dueDate":  "2025-04-15",
		"category": "Finance",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.do(http.MethodPut, "/todos/"+created.ID, map[string]any{"completed": true})
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(suite.T(), updated.Completed)
	assert.Equal(suite.T(), created.ID, updated.ID)
	assert.Equal(suite.T(), created.Text, updated.Text)
	assert.Equal(suite.T(), created.Priority, updated.Priority)
	assert.Equal(suite.T(), created.Category, updated.Category)
	suite.Require().NotNil(updated.DueDate)
	assert.True(suite.T(), created.DueDate.Equal(*updated.DueDate))
}

// TestUpdateTodo_IgnoresServerManagedFields keeps the identifier immutable
func (suite *TodoHandlerTestSuite) TestUpdateTodo_IgnoresServerManagedFields() {
	todo := suite.createTestTodo("Buy milk")

	w := suite.do(http.MethodPut, "/todos/"+todo.ID, map[string]any{
		"_id":       "hijacked",
		"createdAt": "1999-01-01T00:00:00Z",
		"category":  "Groceries",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	todos := suite.listTodos()
	suite.Require().Len(todos, 1)
	assert.Equal(suite.T(), todo.ID, todos[0].ID)
	assert.Equal(suite.T(), "Groceries", todos[0].Category)
}

// TestUpdateTodo_ClearDueDate accepts null
func (suite *TodoHandlerTestSuite) TestUpdateTodo_ClearDueDate() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk", "dueDate": "2025-04-15"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.do(http.MethodPut, "/todos/"+created.ID, `{"dueDate": null}`)
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TodoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(suite.T(), updated.DueDate)
}

// TestUpdateTodo_InvalidPriority leaves the stored record unchanged
func (suite *TodoHandlerTestSuite) TestUpdateTodo_InvalidPriority() {
	todo := suite.createTestTodo("Buy milk")

	w := suite.do(http.MethodPut, "/todos/"+todo.ID, map[string]any{"priority": "Critical", "completed": true})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	todos := suite.listTodos()
	suite.Require().Len(todos, 1)
	assert.Equal(suite.T(), models.PriorityMedium, todos[0].Priority)
	assert.False(suite.T(), todos[0].Completed)
}

// TestUpdateTodo_WrongType rejects fields of the wrong JSON type
func (suite *TodoHandlerTestSuite) TestUpdateTodo_WrongType() {
	todo := suite.createTestTodo("Buy milk")

	w := suite.do(http.MethodPut, "/todos/"+todo.ID, map[string]any{"completed": "yes"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	apiErr := suite.decodeError(w)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidFormat, apiErr.Code)
	assert.Equal(suite.T(), map[string]interface{}{"field": "completed"}, apiErr.Details)
}

// TestUpdateTodo_NotFound tests updating an unknown id
func (suite *TodoHandlerTestSuite) TestUpdateTodo_NotFound() {
	w := suite.do(http.MethodPut, "/todos/does-not-exist", map[string]any{"completed": true})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeNotFound, suite.decodeError(w).Code)
}

// TestDeleteTodo_Success tests deletion
func (suite *TodoHandlerTestSuite) TestDeleteTodo_Success() {
	todo := suite.createTestTodo("Buy milk")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/todos/"+todo.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: todo.ID}}

	suite.handler.DeleteTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Todo deleted successfully")
	assert.Empty(suite.T(), suite.listTodos())
}

// TestDeleteTodo_NotFound leaves the collection count unchanged
func (suite *TodoHandlerTestSuite) TestDeleteTodo_NotFound() {
	suite.createTestTodo("Buy milk")

	w := suite.do(http.MethodDelete, "/todos/does-not-exist", nil)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Len(suite.T(), suite.listTodos(), 1)
}

// TestEndToEnd walks the create, list, complete, delete lifecycle
func (suite *TodoHandlerTestSuite) TestEndToEnd() {
	w := suite.do(http.MethodPost, "/todos", map[string]any{"text": "Buy milk"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(suite.T(), "Buy milk", created["text"])
	assert.Equal(suite.T(), false, created["completed"])
	assert.Equal(suite.T(), "Medium", created["priority"])
	assert.Equal(suite.T(), "General", created["category"])
	id, ok := created["_id"].(string)
	suite.Require().True(ok)

	todos := suite.listTodos()
	suite.Require().Len(todos, 1)
	assert.Equal(suite.T(), id, todos[0].ID)

	w = suite.do(http.MethodPut, "/todos/"+id, map[string]any{"completed": true})
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(suite.T(), id, updated["_id"])
	assert.Equal(suite.T(), true, updated["completed"])
	assert.Equal(suite.T(), "Buy milk", updated["text"])

	w = suite.do(http.MethodDelete, "/todos/"+id, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	assert.Empty(suite.T(), suite.listTodos())
}

// TestHealth reports the service as running
func (suite *TodoHandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"status":"ok"`)
}

// TestSuggestTodos_NotConfigured returns 503 without an API key
func (suite *TodoHandlerTestSuite) TestSuggestTodos_NotConfigured() {
	w := suite.do(http.MethodPost, "/todos/suggestions", map[string]any{"text": "buy milk tomorrow"})

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeServiceUnavailable, suite.decodeError(w).Code)
}

// TestTodoHandlerTestSuite runs the test suite
func TestTodoHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TodoHandlerTestSuite))
}

type unavailableRepository struct{}

var errUnavailable = errors.New("dial tcp 127.0.0.1:27017: connect: connection refused")

func (unavailableRepository) List(ctx context.Context) ([]models.Todo, error) {
	return nil, errUnavailable
}
func (unavailableRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	return nil, errUnavailable
}
func (unavailableRepository) Create(ctx context.Context, todo *models.Todo) error { return errUnavailable }
func (unavailableRepository) Update(ctx context.Context, id string, patch repository.TodoPatch) (*models.Todo, error) {
	return nil, errUnavailable
}
func (unavailableRepository) Delete(ctx context.Context, id string) error { return errUnavailable }

func TestTodoHandler_StorageUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	handler := NewTodoHandler(services.NewTodoService(unavailableRepository{}), logger)
	router := NewRouter(handler, NewSuggestionHandler(nil, logger), logger)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/todos", nil),
		httptest.NewRequest(http.MethodPost, "/todos", bytes.NewReader([]byte(`{"text":"Buy milk"}`))),
		httptest.NewRequest(http.MethodPut, "/todos/abc", bytes.NewReader([]byte(`{"completed":true}`))),
		httptest.NewRequest(http.MethodDelete, "/todos/abc", nil),
	}
	for _, req := range requests {
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", req.Method, req.URL.Path)
		var apiErr apierrors.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, apierrors.ErrCodeInternalError, apiErr.Code)
		assert.NotContains(t, apiErr.Message, "27017")
	}

	assert.NotEmpty(t, hook.AllEntries())
}

// schemaRejectingRepository fails every create with a schema violation.
type schemaRejectingRepository struct {
	unavailableRepository
}

func (schemaRejectingRepository) Create(ctx context.Context, todo *models.Todo) error {
	return schema.ValidateTodo(map[string]any{"text": todo.Text, "completed": false, "priority": "Someday", "category": "General"})
}

func TestTodoHandler_SchemaRejectionIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	handler := NewTodoHandler(services.NewTodoService(schemaRejectingRepository{}), logger)
	router := NewRouter(handler, NewSuggestionHandler(nil, logger), logger)

	req := httptest.NewRequest(http.MethodPost, "/todos", bytes.NewReader([]byte(`{"text":"Buy milk"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Code    string             `json:"code"`
		Details []schema.Violation `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeInvalidInput, body.Code)
	require.NotEmpty(t, body.Details)
	assert.Contains(t, body.Details[0].Field, "priority")

	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, "Error creating todo", entry.Message)
	}
}
