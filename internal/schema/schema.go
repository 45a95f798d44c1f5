// Package schema enforces the shape of todo documents before they reach a
// storage backend. Every backend validates against the same JSON Schema.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const todoSchemaURL = "todo.schema.json"

const todoSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Todo",
  "type": "object",
  "required": ["text", "completed", "priority", "category"],
  "properties": {
    "_id": {"type": "string"},
    "text": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "completed": {"type": "boolean"},
    "priority": {"enum": ["Low", "Medium", "High"]},
    "dueDate": {
      "oneOf": [
        {"type": "null"},
        {"type": "string", "format": "date-time"}
      ]
    },
    "category": {"type": "string"}
  }
}`

// ErrInvalidDocument is matched by every error returned from ValidateTodo.
var ErrInvalidDocument = errors.New("document does not match todo schema")

// Violation is a single schema failure at a JSON pointer path.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the violations found in one document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDocument.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

var todoSchema = mustCompile()

func mustCompile() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(todoSchemaURL, strings.NewReader(todoSchemaJSON)); err != nil {
		panic(fmt.Sprintf("schema: add todo schema: %v", err))
	}
	s, err := compiler.Compile(todoSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("schema: compile todo schema: %v", err))
	}
	return s
}

// ValidateTodo marshals doc to JSON and validates it against the todo schema.
func ValidateTodo(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("schema: marshal document: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("schema: decode document: %w", err)
	}

	if err := todoSchema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("schema: %w", err)
		}
		result := &ValidationError{}
		collectViolations(result, ve)
		return result
	}
	return nil
}

func collectViolations(result *ValidationError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Violations = append(result.Violations, Violation{
			Field:   pointerToField(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(result, cause)
	}
}

func pointerToField(pointer string) string {
	field := strings.TrimPrefix(pointer, "/")
	if field == "" {
		return "(root)"
	}
	return strings.ReplaceAll(field, "/", ".")
}
