package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{name: "date only", input: "2025-03-14", want: ptr(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", input: "2025-03-14T09:30:00Z", want: ptr(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))},
		{name: "offset normalised", input: "2025-03-14T09:30:00+02:00", want: ptr(time.Date(2025, 3, 14, 7, 30, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.input)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDueDate_Invalid(t *testing.T) {
	for _, input := range []string{"tomorrow", "14/03/2025", "2025-13-01"} {
		_, err := ParseDueDate(input)
		assert.ErrorIs(t, err, ErrInvalidDate, input)
	}
}

func TestFormatDueDate(t *testing.T) {
	assert.Equal(t, "", FormatDueDate(nil))
	assert.Equal(t, "Mar 14, 2025", FormatDueDate(ptr(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))))
}

func ptr(t time.Time) *time.Time {
	return &t
}
