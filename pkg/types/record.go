package types

import (
	"fmt"
	"time"
)

// SessionRecord is the serializable form of a Session. Stores persist it as
// JSON and rebuild the Session with SessionFromRecord on the next request.
type SessionRecord struct {
	SessionID  string       `json:"session_id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	NextListID int          `json:"next_list_id"`
	NextTodoID int          `json:"next_todo_id"`
	Lists      []ListRecord `json:"lists"`
	Messages   []Message    `json:"messages,omitempty"`
}

// ListRecord is the serializable form of a TodoList. Todos keep list order.
type ListRecord struct {
	ListID int          `json:"list_id"`
	Name   string       `json:"name"`
	Todos  []TodoRecord `json:"todos"`
}

// TodoRecord is the serializable form of a Todo.
type TodoRecord struct {
	TodoID      int    `json:"todo_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Done        bool   `json:"done"`
}

// Record returns the serializable form of the list.
func (l *TodoList) Record() ListRecord {
	rec := ListRecord{
		ListID: l.ID,
		Name:   l.Name,
		Todos:  make([]TodoRecord, 0, l.Size()),
	}
	for todo := range l.Todos() {
		rec.Todos = append(rec.Todos, TodoRecord{
			TodoID:      todo.ID,
			Name:        todo.Name,
			Description: todo.Description,
			Done:        todo.Done,
		})
	}
	return rec
}

// Record returns the serializable form of the session. The record shares
// no memory with s.
func (s *Session) Record() SessionRecord {
	rec := SessionRecord{
		SessionID:  s.ID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		NextListID: s.listSeq.Peek(),
		NextTodoID: s.todoSeq.Peek(),
		Lists:      make([]ListRecord, 0, len(s.order)),
		Messages:   s.Messages(),
	}
	for _, list := range s.Lists() {
		rec.Lists = append(rec.Lists, list.Record())
	}
	return rec
}

// ListFromRecord rebuilds a TodoList. Duplicate todo ids are rejected.
func ListFromRecord(rec ListRecord) (*TodoList, error) {
	list := NewTodoList(rec.ListID, rec.Name)
	for _, tr := range rec.Todos {
		todo := NewTodo(tr.TodoID, tr.Name, tr.Description)
		todo.Done = tr.Done
		if err := list.Add(todo); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	}
	return list, nil
}

// SessionFromRecord rebuilds a Session. Sequences resume from the recorded
// next ids, or past the highest id seen if the record is behind.
func SessionFromRecord(rec SessionRecord) (*Session, error) {
	if rec.SessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidRecord)
	}
	s := &Session{
		ID:        rec.SessionID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		lists:     make(map[int]*TodoList, len(rec.Lists)),
		listSeq:   Sequence{next: rec.NextListID},
		todoSeq:   Sequence{next: rec.NextTodoID},
	}
	for _, lr := range rec.Lists {
		list, err := ListFromRecord(lr)
		if err != nil {
			return nil, err
		}
		if err := s.AddList(list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	}
	for _, m := range rec.Messages {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: message kind %q", ErrInvalidRecord, m.Kind)
		}
		s.Flash(m)
	}
	return s, nil
}
