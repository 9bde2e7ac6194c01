package types

// Todo is a single actionable item. A Todo belongs to exactly one TodoList;
// it is mutated only through MarkDone and MarkUndone.
type Todo struct {
	ID          int    // Assigned by the owning Session's todo sequence.
	Name        string // 1 to 100 characters; checked by ValidateTodoName.
	Description string // Optional.
	Done        bool
}

// NewTodo returns an undone todo with the given id. The name is not
// validated here; callers run ValidateTodoName first.
func NewTodo(id int, name, description string) *Todo {
	return &Todo{
		ID:          id,
		Name:        name,
		Description: description,
	}
}

// MarkDone sets the done flag. Idempotent.
func (t *Todo) MarkDone() {
	t.Done = true
}

// MarkUndone clears the done flag. Idempotent.
func (t *Todo) MarkUndone() {
	t.Done = false
}

// IsDone reports whether the todo is done.
func (t *Todo) IsDone() bool {
	return t.Done
}

// Equal reports whether t and other carry the same name, description and
// done flag. IDs are not compared.
func (t *Todo) Equal(other *Todo) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name &&
		t.Description == other.Description &&
		t.Done == other.Done
}

// String renders the todo as "[X] name" when done and "[ ] name" otherwise.
func (t *Todo) String() string {
	marker := " "
	if t.Done {
		marker = "X"
	}
	return "[" + marker + "] " + t.Name
}
