package types

import (
	"fmt"
	"slices"
	"time"
)

// Session is the per-visitor state: the visitor's todo lists, the queue of
// pending flash messages, and the id sequences for lists and todos. The
// core never touches storage; a SessionStore loads and saves sessions.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	lists    map[int]*TodoList
	order    []int
	messages []Message
	listSeq  Sequence
	todoSeq  Sequence
}

// NewSession returns an empty session with the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		lists:     make(map[int]*TodoList),
	}
}

// NewList creates a list with the next list id. It is not added to the
// session; call AddList.
func (s *Session) NewList(name string) *TodoList {
	return NewTodoList(s.listSeq.Next(), name)
}

// NewTodo creates a todo with the next todo id.
func (s *Session) NewTodo(name, description string) *Todo {
	return NewTodo(s.todoSeq.Next(), name, description)
}

// AddList stores list under its ID. It returns ErrTypeMismatch for a nil
// list and ErrDuplicateID if the ID is taken.
func (s *Session) AddList(list *TodoList) error {
	if list == nil {
		return fmt.Errorf("add list: %w", ErrTypeMismatch)
	}
	if s.lists == nil {
		s.lists = make(map[int]*TodoList)
	}
	if _, ok := s.lists[list.ID]; ok {
		return fmt.Errorf("add list %d: %w", list.ID, ErrDuplicateID)
	}
	s.lists[list.ID] = list
	s.order = append(s.order, list.ID)
	s.listSeq.Observe(list.ID)
	for id := range list.All() {
		s.todoSeq.Observe(id)
	}
	return nil
}

// List returns the list with the given ID or an error wrapping ErrNotFound.
func (s *Session) List(id int) (*TodoList, error) {
	list, ok := s.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %d: %w", id, ErrNotFound)
	}
	return list, nil
}

// RemoveList deletes the list with the given ID and returns it.
func (s *Session) RemoveList(id int) (*TodoList, error) {
	list, err := s.List(id)
	if err != nil {
		return nil, err
	}
	delete(s.lists, id)
	s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })
	return list, nil
}

// Lists returns the lists in creation order.
func (s *Session) Lists() []*TodoList {
	out := make([]*TodoList, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lists[id])
	}
	return out
}

// ListCount returns the number of lists.
func (s *Session) ListCount() int {
	return len(s.order)
}

// ListNames returns the names of all lists except the one with skipID.
// Pass a negative skipID to include every list.
func (s *Session) ListNames(skipID int) []string {
	names := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if id == skipID {
			continue
		}
		names = append(names, s.lists[id].Name)
	}
	return names
}

// Flash queues msg for display on the next render. Zero messages are
// ignored.
func (s *Session) Flash(msg Message) {
	if msg.IsZero() {
		return
	}
	s.messages = append(s.messages, msg)
}

// Messages returns the pending messages without clearing them.
func (s *Session) Messages() []Message {
	return slices.Clone(s.messages)
}

// TakeMessages returns the pending messages and clears the queue, so each
// message is shown exactly once.
func (s *Session) TakeMessages() []Message {
	msgs := s.messages
	s.messages = nil
	return msgs
}

// Touch records a modification.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
