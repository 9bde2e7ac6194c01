package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestList builds a list named "Home" whose todos take ids 0..n-1 and the
// given done flags.
func newTestList(t *testing.T, done ...bool) *TodoList {
	t.Helper()
	seq := NewSequence(0)
	list := NewTodoList(0, "Home")
	for i, d := range done {
		todo := NewTodo(seq.Next(), string(rune('a'+i)), "")
		todo.Done = d
		require.NoError(t, list.Add(todo))
	}
	return list
}

func TestTodoListAdd(t *testing.T) {
	t.Run("stores todo under its id", func(t *testing.T) {
		list := NewTodoList(0, "Home")
		todo := NewTodo(7, "Buy milk", "")
		require.NoError(t, list.Add(todo))

		got, err := list.ItemAt(7)
		require.NoError(t, err)
		assert.Same(t, todo, got)
		assert.Equal(t, 1, list.Size())
	})

	t.Run("nil todo is a type mismatch", func(t *testing.T) {
		list := newTestList(t, false)
		err := list.Add(nil)
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.Equal(t, 1, list.Size(), "size must not change")
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		list := newTestList(t, false)
		err := list.Add(NewTodo(0, "again", ""))
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Equal(t, 1, list.Size(), "size must not change")
	})

	t.Run("zero value list accepts todos", func(t *testing.T) {
		var list TodoList
		require.NoError(t, list.Add(NewTodo(1, "x", "")))
		assert.Equal(t, 1, list.Size())
	})
}

func TestTodoListIsDone(t *testing.T) {
	tests := []struct {
		name string
		done []bool
		want bool
	}{
		{name: "empty list is not done", done: nil, want: false},
		{name: "single undone", done: []bool{false}, want: false},
		{name: "one undone among done", done: []bool{true, false, true}, want: false},
		{name: "all done", done: []bool{true, true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := newTestList(t, tt.done...)
			assert.Equal(t, tt.want, list.IsDone())
		})
	}
}

func TestTodoListItemAtUnknownID(t *testing.T) {
	list := newTestList(t, false, false)

	for _, id := range []int{-1, 2, 100} {
		got, err := list.ItemAt(id)
		assert.ErrorIs(t, err, ErrNotFound, "id %d", id)
		assert.Nil(t, got)
	}

	assert.ErrorIs(t, list.MarkDoneAt(42), ErrNotFound)
	assert.ErrorIs(t, list.MarkUndoneAt(42), ErrNotFound)
	_, err := list.RemoveAt(42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, list.Size())
}

func TestTodoListMarkAt(t *testing.T) {
	list := newTestList(t, false, false)

	require.NoError(t, list.MarkDoneAt(1))
	first, _ := list.ItemAt(0)
	second, _ := list.ItemAt(1)
	assert.False(t, first.IsDone())
	assert.True(t, second.IsDone())

	require.NoError(t, list.MarkUndoneAt(1))
	assert.False(t, second.IsDone())
}

func TestTodoListRemoveAtKeepsIDs(t *testing.T) {
	list := newTestList(t, false, true, false)

	removed, err := list.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Name)
	assert.Equal(t, 2, list.Size())

	third, err := list.ItemAt(2)
	require.NoError(t, err, "remaining ids must be stable")
	assert.Equal(t, "c", third.Name)

	var ids []int
	for id := range list.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []int{0, 2}, ids)
}

func TestTodoListFindByName(t *testing.T) {
	list := newTestList(t, false, false)
	require.NoError(t, list.Add(NewTodo(10, "a", "duplicate name")))

	got, ok := list.FindByName("a")
	require.True(t, ok)
	assert.Equal(t, 0, got.ID, "first match wins")

	_, ok = list.FindByName("A")
	assert.False(t, ok, "match is case-sensitive")

	_, ok = list.FindByName("missing")
	assert.False(t, ok)
}

func TestTodoListFilters(t *testing.T) {
	list := newTestList(t, true, false, true)

	done := list.AllDone()
	require.Len(t, done, 2)
	assert.Equal(t, []string{"a", "c"}, names(done))

	notDone := list.AllNotDone()
	require.Len(t, notDone, 1)
	assert.Equal(t, "b", notDone[0].Name)

	// Filtered todos are the list's own instances.
	notDone[0].MarkDone()
	assert.True(t, list.IsDone())
}

func TestTodoListPartition(t *testing.T) {
	list := newTestList(t, true, false, true)

	undone, done := list.Partition(func(t *Todo) bool { return !t.IsDone() })
	assert.Equal(t, []string{"b"}, names(undone))
	assert.Equal(t, []string{"a", "c"}, names(done))
}

func TestTodoListMarkAll(t *testing.T) {
	t.Run("empty list stays not done", func(t *testing.T) {
		list := NewTodoList(0, "Empty")
		list.MarkAllDone()
		assert.False(t, list.IsDone())
		assert.True(t, list.IsEmpty())
	})

	t.Run("mark all done and undone", func(t *testing.T) {
		list := newTestList(t, false, true, false)
		list.MarkAllDone()
		assert.True(t, list.IsDone())
		assert.Len(t, list.AllDone(), 3)

		list.MarkAllUndone()
		assert.Len(t, list.AllNotDone(), 3)
		assert.False(t, list.IsDone())
	})
}

func TestTodoListIteration(t *testing.T) {
	list := newTestList(t, false, false, false)

	t.Run("restartable", func(t *testing.T) {
		first := names(list.ToSlice())
		second := names(list.ToSlice())
		assert.Equal(t, []string{"a", "b", "c"}, first)
		assert.Equal(t, first, second)
	})

	t.Run("indexed yields positions", func(t *testing.T) {
		var positions []int
		for i, todo := range list.Indexed() {
			positions = append(positions, i)
			assert.NotNil(t, todo)
		}
		assert.Equal(t, []int{0, 1, 2}, positions)
	})

	t.Run("early break", func(t *testing.T) {
		count := 0
		for range list.Todos() {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("removal during iteration", func(t *testing.T) {
		l := newTestList(t, false, false, false)
		var seen []string
		for id, todo := range l.All() {
			seen = append(seen, todo.Name)
			if id == 0 {
				_, err := l.RemoveAt(1)
				require.NoError(t, err)
			}
		}
		assert.Equal(t, []string{"a", "c"}, seen)
		assert.Equal(t, 2, l.Size())
	})
}

func TestTodoListFirstLastShiftPop(t *testing.T) {
	list := newTestList(t, false, false, false)

	first, ok := list.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.Name)

	last, ok := list.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last.Name)

	shifted, ok := list.Shift()
	require.True(t, ok)
	assert.Equal(t, "a", shifted.Name)

	popped, ok := list.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", popped.Name)

	assert.Equal(t, []string{"b"}, names(list.ToSlice()))

	empty := NewTodoList(1, "Empty")
	_, ok = empty.First()
	assert.False(t, ok)
	_, ok = empty.Pop()
	assert.False(t, ok)
}

func TestTodoListString(t *testing.T) {
	list := newTestList(t, true, false)
	assert.Equal(t, "Home: [X] a, [ ] b", list.String())
	assert.Equal(t, "Empty: ", NewTodoList(1, "Empty").String())
}

func TestScenarioBuyMilk(t *testing.T) {
	seq := NewSequence(0)
	list := NewTodoList(0, "Home")
	todo := NewTodo(seq.Next(), "Buy milk", "")
	require.NoError(t, list.Add(todo))

	assert.Equal(t, 1, list.Size())
	assert.False(t, list.IsDone())

	require.NoError(t, list.MarkDoneAt(todo.ID))
	assert.True(t, list.IsDone())
}

func names(todos []*Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.Name)
	}
	return out
}
