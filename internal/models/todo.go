package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/todo-tracker/internal/schema"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// DefaultCategory is assigned when a todo is created without a category.
const DefaultCategory = "General"

// Priorities lists the accepted priority values in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Todo struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	Priority  Priority   `gorm:"type:varchar(10);not null;default:'Medium';check:priority IN ('Low','Medium','High')" json:"priority"`
	DueDate   *time.Time `json:"dueDate"`
	Category  string     `gorm:"type:varchar(255);not null;default:'General'" json:"category"`
	CreatedAt time.Time  `gorm:"index" json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// Validate checks the todo against the document schema shared by every
// storage backend.
func (t *Todo) Validate() error {
	return schema.ValidateTodo(t)
}

// BeforeCreate rejects documents that violate the schema and allocates the
// identifier. Updates are column patches and are validated by the caller.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
