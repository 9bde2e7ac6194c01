package types

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// TodoList is a named collection of todos keyed by todo ID. Insertion order
// is kept for iteration and rendering. A TodoList exclusively owns its todos.
//
// TodoList is not safe for concurrent use; the HTTP layer serializes access
// per session.
type TodoList struct {
	ID   int
	Name string

	todos map[int]*Todo
	order []int
}

// NewTodoList returns an empty list with the given id and name.
func NewTodoList(id int, name string) *TodoList {
	return &TodoList{
		ID:    id,
		Name:  name,
		todos: make(map[int]*Todo),
	}
}

// Add stores todo under its ID. It returns ErrTypeMismatch for a nil todo
// and ErrDuplicateID if a member with the same ID exists. The list is left
// unchanged on error.
func (l *TodoList) Add(todo *Todo) error {
	if todo == nil {
		return fmt.Errorf("add to list %d: %w", l.ID, ErrTypeMismatch)
	}
	if l.todos == nil {
		l.todos = make(map[int]*Todo)
	}
	if _, ok := l.todos[todo.ID]; ok {
		return fmt.Errorf("add todo %d to list %d: %w", todo.ID, l.ID, ErrDuplicateID)
	}
	l.todos[todo.ID] = todo
	l.order = append(l.order, todo.ID)
	return nil
}

// Rename replaces the list name. The caller validates the name first.
func (l *TodoList) Rename(name string) {
	l.Name = name
}

// Size returns the number of todos in the list.
func (l *TodoList) Size() int {
	return len(l.order)
}

// IsEmpty reports whether the list has no todos.
func (l *TodoList) IsEmpty() bool {
	return l.Size() == 0
}

// IsDone reports whether the list is non-empty and every todo is done.
func (l *TodoList) IsDone() bool {
	if l.IsEmpty() {
		return false
	}
	for _, id := range l.order {
		if !l.todos[id].Done {
			return false
		}
	}
	return true
}

// ItemAt returns the todo with the given ID, or an error wrapping
// ErrNotFound when the ID is not a member.
func (l *TodoList) ItemAt(id int) (*Todo, error) {
	todo, ok := l.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo %d in list %d: %w", id, l.ID, ErrNotFound)
	}
	return todo, nil
}

// MarkDoneAt marks the todo with the given ID as done.
func (l *TodoList) MarkDoneAt(id int) error {
	todo, err := l.ItemAt(id)
	if err != nil {
		return err
	}
	todo.MarkDone()
	return nil
}

// MarkUndoneAt marks the todo with the given ID as not done.
func (l *TodoList) MarkUndoneAt(id int) error {
	todo, err := l.ItemAt(id)
	if err != nil {
		return err
	}
	todo.MarkUndone()
	return nil
}

// RemoveAt removes and returns the todo with the given ID. IDs of the
// remaining todos do not change.
func (l *TodoList) RemoveAt(id int) (*Todo, error) {
	todo, err := l.ItemAt(id)
	if err != nil {
		return nil, err
	}
	delete(l.todos, id)
	l.order = slices.DeleteFunc(l.order, func(v int) bool { return v == id })
	return todo, nil
}

// First returns the earliest inserted todo.
func (l *TodoList) First() (*Todo, bool) {
	if l.IsEmpty() {
		return nil, false
	}
	return l.todos[l.order[0]], true
}

// Last returns the most recently inserted todo.
func (l *TodoList) Last() (*Todo, bool) {
	if l.IsEmpty() {
		return nil, false
	}
	return l.todos[l.order[len(l.order)-1]], true
}

// Shift removes and returns the first todo.
func (l *TodoList) Shift() (*Todo, bool) {
	first, ok := l.First()
	if !ok {
		return nil, false
	}
	_, _ = l.RemoveAt(first.ID)
	return first, true
}

// Pop removes and returns the last todo.
func (l *TodoList) Pop() (*Todo, bool) {
	last, ok := l.Last()
	if !ok {
		return nil, false
	}
	_, _ = l.RemoveAt(last.ID)
	return last, true
}

// FindByName returns the first todo whose name equals name exactly.
func (l *TodoList) FindByName(name string) (*Todo, bool) {
	for todo := range l.Todos() {
		if todo.Name == name {
			return todo, true
		}
	}
	return nil, false
}

// Select returns the todos for which keep returns true, in list order.
// The returned todos are the list's own instances, not copies.
func (l *TodoList) Select(keep func(*Todo) bool) []*Todo {
	var out []*Todo
	for todo := range l.Todos() {
		if keep(todo) {
			out = append(out, todo)
		}
	}
	return out
}

// AllDone returns the done todos in list order.
func (l *TodoList) AllDone() []*Todo {
	return l.Select((*Todo).IsDone)
}

// AllNotDone returns the todos that are not done, in list order.
func (l *TodoList) AllNotDone() []*Todo {
	return l.Select(func(t *Todo) bool { return !t.Done })
}

// MarkAllDone marks every todo done. An empty list stays not done.
func (l *TodoList) MarkAllDone() {
	for todo := range l.Todos() {
		todo.MarkDone()
	}
}

// MarkAllUndone marks every todo not done.
func (l *TodoList) MarkAllUndone() {
	for todo := range l.Todos() {
		todo.MarkUndone()
	}
}

// Partition splits the todos into those matching pred and the rest, both in
// list order.
func (l *TodoList) Partition(pred func(*Todo) bool) (matching, rest []*Todo) {
	for todo := range l.Todos() {
		if pred(todo) {
			matching = append(matching, todo)
		} else {
			rest = append(rest, todo)
		}
	}
	return matching, rest
}

// ToSlice returns the todos in list order.
func (l *TodoList) ToSlice() []*Todo {
	return slices.Collect(l.Todos())
}

// All yields (id, todo) pairs in list order. Iteration works on a snapshot
// of the order, so the body may add or remove todos; removed todos that
// have not been reached yet are skipped.
func (l *TodoList) All() iter.Seq2[int, *Todo] {
	return func(yield func(int, *Todo) bool) {
		for _, id := range slices.Clone(l.order) {
			todo, ok := l.todos[id]
			if !ok {
				continue
			}
			if !yield(id, todo) {
				return
			}
		}
	}
}

// Todos yields the todos in list order.
func (l *TodoList) Todos() iter.Seq[*Todo] {
	return func(yield func(*Todo) bool) {
		for _, todo := range l.All() {
			if !yield(todo) {
				return
			}
		}
	}
}

// Indexed yields (position, todo) pairs. Positions change after removals;
// use IDs to address todos across requests.
func (l *TodoList) Indexed() iter.Seq2[int, *Todo] {
	return func(yield func(int, *Todo) bool) {
		i := 0
		for todo := range l.Todos() {
			if !yield(i, todo) {
				return
			}
			i++
		}
	}
}

// String renders "name: todo, todo, ...".
func (l *TodoList) String() string {
	parts := make([]string, 0, l.Size())
	for todo := range l.Todos() {
		parts = append(parts, todo.String())
	}
	return l.Name + ": " + strings.Join(parts, ", ")
}
