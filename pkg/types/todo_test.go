package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTodoStartsUndone(t *testing.T) {
	for _, name := range []string{"a", "Buy milk", strings.Repeat("x", MaxNameLength)} {
		todo := NewTodo(1, name, "")
		assert.False(t, todo.IsDone(), "new todo %q should not be done", name)
		assert.Equal(t, "", todo.Description)
	}
}

func TestTodoMarkDoneRoundTrip(t *testing.T) {
	todo := NewTodo(0, "Walk dog", "around the block")

	todo.MarkDone()
	assert.True(t, todo.IsDone())
	todo.MarkDone()
	assert.True(t, todo.IsDone(), "MarkDone is idempotent")

	todo.MarkUndone()
	assert.False(t, todo.IsDone())
	todo.MarkUndone()
	assert.False(t, todo.IsDone(), "MarkUndone is idempotent")
}

func TestTodoEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Todo
		equal bool
	}{
		{
			name:  "same fields different ids",
			a:     NewTodo(1, "A", "desc"),
			b:     NewTodo(2, "A", "desc"),
			equal: true,
		},
		{
			name:  "different name",
			a:     NewTodo(1, "A", ""),
			b:     NewTodo(1, "B", ""),
			equal: false,
		},
		{
			name:  "different description",
			a:     NewTodo(1, "A", "x"),
			b:     NewTodo(1, "A", "y"),
			equal: false,
		},
		{
			name:  "different done flag",
			a:     &Todo{ID: 1, Name: "A", Done: true},
			b:     &Todo{ID: 1, Name: "A"},
			equal: false,
		},
		{
			name:  "nil against todo",
			a:     nil,
			b:     NewTodo(1, "A", ""),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestTodoString(t *testing.T) {
	todo := NewTodo(3, "Buy milk", "")
	assert.Equal(t, "[ ] Buy milk", todo.String())

	todo.MarkDone()
	assert.Equal(t, "[X] Buy milk", todo.String())
}
