package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/todos/internal/app"
	"github.com/mesh-intelligence/todos/pkg/types"
)

func listURL(id int) string {
	return fmt.Sprintf("/lists/%d", id)
}

func isXHR(req *request) bool {
	return req.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func formValue(req *request, key string) string {
	return strings.TrimSpace(req.PostFormValue(key))
}

// findList resolves the {id} route variable. When the list does not exist
// the error is flashed and the returned response redirects to the index.
func findList(req *request) (*types.TodoList, response) {
	id, err := app.ParseID(mux.Vars(req.Request)["id"])
	if err == nil {
		var list *types.TodoList
		if list, err = req.session.List(id); err == nil {
			return list, nil
		}
	}
	req.flash(types.ErrorMessage(app.TextListNotFound))
	return nil, redirect("/lists")
}

func (s *Server) index(req *request) response {
	return s.render(req, viewLists, page{Title: "Todo Lists", Lists: summaries(req.session)})
}

func (s *Server) newList(req *request) response {
	return s.render(req, viewNewList, page{Title: "New List"})
}

func (s *Server) createList(req *request) response {
	name := formValue(req, "list_name")
	_, msg, err := req.svc.CreateList(name)
	req.flash(msg)
	if errors.Is(err, types.ErrValidation) {
		return s.render(req, viewNewList, page{Title: "New List", ListName: name})
	}
	return redirect("/lists")
}

func (s *Server) showList(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	return s.render(req, viewList, page{Title: list.Name, List: detail(list)})
}

func (s *Server) editList(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	return s.render(req, viewEditList, page{Title: "Edit " + list.Name, List: detail(list), ListName: list.Name})
}

func (s *Server) updateList(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	name := formValue(req, "list_name")
	_, msg, err := req.svc.RenameList(list.ID, name)
	req.flash(msg)
	if err != nil {
		return s.render(req, viewEditList, page{Title: "Edit " + list.Name, List: detail(list), ListName: name})
	}
	return redirect(listURL(list.ID))
}

// destroyList deletes the list. Script callers get the index path to
// navigate to; form posts get a flash and a redirect.
func (s *Server) destroyList(req *request) response {
	id, err := app.ParseID(mux.Vars(req.Request)["id"])
	msg := types.ErrorMessage(app.TextListNotFound)
	if err == nil {
		msg, _ = req.svc.DeleteList(id)
	}
	if isXHR(req) {
		return plainText("/lists")
	}
	req.flash(msg)
	return redirect("/lists")
}

func (s *Server) addTodo(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	name := formValue(req, "todo")
	_, msg, err := req.svc.AddTodo(list.ID, name)
	req.flash(msg)
	if err != nil {
		return s.render(req, viewList, page{Title: list.Name, List: detail(list), TodoName: name})
	}
	return redirect(listURL(list.ID))
}

func (s *Server) updateTodo(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	msg := types.ErrorMessage(app.TextTodoNotFound)
	if todoID, err := app.ParseID(mux.Vars(req.Request)["todo_id"]); err == nil {
		done := formValue(req, "completed") == "true"
		msg, _ = req.svc.SetTodoDone(list.ID, todoID, done)
	}
	req.flash(msg)
	return redirect(listURL(list.ID))
}

// destroyTodo removes a todo. Script callers get 204 No Content.
func (s *Server) destroyTodo(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	msg := types.ErrorMessage(app.TextTodoNotFound)
	if todoID, err := app.ParseID(mux.Vars(req.Request)["todo_id"]); err == nil {
		msg, _ = req.svc.DeleteTodo(list.ID, todoID)
	}
	if isXHR(req) {
		return noContent()
	}
	req.flash(msg)
	return redirect(listURL(list.ID))
}

func (s *Server) completeAll(req *request) response {
	list, resp := findList(req)
	if resp != nil {
		return resp
	}
	msg, _ := req.svc.CompleteAll(list.ID)
	req.flash(msg)
	return redirect(listURL(list.ID))
}
