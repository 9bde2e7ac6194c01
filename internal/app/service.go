// Package app implements the todo-list operations a request performs on a
// session. Each operation returns its outcome as an explicit types.Message;
// the HTTP layer decides whether to queue it for display.
package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Texts of the messages returned by Service operations.
const (
	TextListCreated   = "The list has been created."
	TextListUpdated   = "The list has been updated."
	TextListDeleted   = "The list has been deleted."
	TextListNotFound  = "List does not exist."
	TextTodoAdded     = "The todo has been added."
	TextTodoUpdated   = "The todo has been updated."
	TextTodoDeleted   = "The todo has been deleted."
	TextTodoNotFound  = "The todo does not exist."
	TextNoTodos       = "No todos in list."
	TextAllCompleted  = "All todos have been completed."
	TextUnexpectedErr = "Something went wrong."
)

// Service runs operations against a single session. It is not safe for
// concurrent use; callers hold the session lock.
type Service struct {
	session *types.Session
}

// New returns a Service bound to s.
func New(s *types.Session) *Service {
	return &Service{session: s}
}

// Session returns the bound session.
func (svc *Service) Session() *types.Session {
	return svc.session
}

// ParseID converts a path or form value into a list or todo id. Only the
// canonical decimal form is accepted, so "+5" and "05" do not alias 5.
// Malformed input cannot name a member, so it maps to ErrNotFound.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 || strconv.Itoa(id) != raw {
		return 0, fmt.Errorf("id %q: %w", raw, types.ErrNotFound)
	}
	return id, nil
}

// MessageFor maps an operation error to the message shown to the user.
func MessageFor(err error) types.Message {
	var verr *types.ValidationError
	switch {
	case err == nil:
		return types.Message{}
	case errors.As(err, &verr):
		return verr.Message()
	case errors.Is(err, types.ErrNotFound):
		return types.ErrorMessage(TextListNotFound)
	default:
		return types.ErrorMessage(TextUnexpectedErr)
	}
}

// CreateList validates name and adds a new list.
func (svc *Service) CreateList(name string) (*types.TodoList, types.Message, error) {
	if err := types.ValidateListName(name, svc.session.ListNames(-1)); err != nil {
		return nil, MessageFor(err), err
	}
	list := svc.session.NewList(name)
	if err := svc.session.AddList(list); err != nil {
		return nil, MessageFor(err), err
	}
	svc.session.Touch()
	return list, types.SuccessMessage(TextListCreated), nil
}

// RenameList validates name against the other lists and renames the list.
// Keeping a list's current name is allowed.
func (svc *Service) RenameList(listID int, name string) (*types.TodoList, types.Message, error) {
	list, err := svc.session.List(listID)
	if err != nil {
		return nil, types.ErrorMessage(TextListNotFound), err
	}
	if err := types.ValidateListName(name, svc.session.ListNames(listID)); err != nil {
		return list, MessageFor(err), err
	}
	list.Rename(name)
	svc.session.Touch()
	return list, types.SuccessMessage(TextListUpdated), nil
}

// DeleteList removes a list and its todos.
func (svc *Service) DeleteList(listID int) (types.Message, error) {
	if _, err := svc.session.RemoveList(listID); err != nil {
		return types.ErrorMessage(TextListNotFound), err
	}
	svc.session.Touch()
	return types.SuccessMessage(TextListDeleted), nil
}

// AddTodo validates name and appends a new todo to the list.
func (svc *Service) AddTodo(listID int, name string) (*types.Todo, types.Message, error) {
	list, err := svc.session.List(listID)
	if err != nil {
		return nil, types.ErrorMessage(TextListNotFound), err
	}
	if err := types.ValidateTodoName(name); err != nil {
		return nil, MessageFor(err), err
	}
	todo := svc.session.NewTodo(name, "")
	if err := list.Add(todo); err != nil {
		return nil, MessageFor(err), err
	}
	svc.session.Touch()
	return todo, types.SuccessMessage(TextTodoAdded), nil
}

// SetTodoDone marks a todo done or not done.
func (svc *Service) SetTodoDone(listID, todoID int, done bool) (types.Message, error) {
	list, err := svc.session.List(listID)
	if err != nil {
		return types.ErrorMessage(TextListNotFound), err
	}
	if done {
		err = list.MarkDoneAt(todoID)
	} else {
		err = list.MarkUndoneAt(todoID)
	}
	if err != nil {
		return types.ErrorMessage(TextTodoNotFound), err
	}
	svc.session.Touch()
	return types.SuccessMessage(TextTodoUpdated), nil
}

// DeleteTodo removes a todo from the list.
func (svc *Service) DeleteTodo(listID, todoID int) (types.Message, error) {
	list, err := svc.session.List(listID)
	if err != nil {
		return types.ErrorMessage(TextListNotFound), err
	}
	if _, err := list.RemoveAt(todoID); err != nil {
		return types.ErrorMessage(TextTodoNotFound), err
	}
	svc.session.Touch()
	return types.SuccessMessage(TextTodoDeleted), nil
}

// CompleteAll marks every todo in the list done. An empty list is reported
// as an error message and left unchanged.
func (svc *Service) CompleteAll(listID int) (types.Message, error) {
	list, err := svc.session.List(listID)
	if err != nil {
		return types.ErrorMessage(TextListNotFound), err
	}
	if list.IsEmpty() {
		return types.ErrorMessage(TextNoTodos), nil
	}
	list.MarkAllDone()
	svc.session.Touch()
	return types.SuccessMessage(TextAllCompleted), nil
}
