package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"github.com/mesh-intelligence/todos/internal/app"
	"github.com/mesh-intelligence/todos/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names; each is parsed together with the layout.
const (
	viewLists    = "lists"
	viewNewList  = "new_list"
	viewList     = "list"
	viewEditList = "edit_list"
)

type views struct {
	pages map[string]*template.Template
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template)}
	for _, name := range []string{viewLists, viewNewList, viewList, viewEditList} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// page is the data every view renders.
type page struct {
	Title    string
	Messages []types.Message
	Lists    []listView
	List     *listView
	// ListName and TodoName echo rejected form input back to the user.
	ListName string
	TodoName string
}

type listView struct {
	ID        int
	Name      string
	Done      bool
	Remaining int
	Total     int
	Todos     []*types.Todo
}

func summarize(l *types.TodoList) listView {
	return listView{
		ID:        l.ID,
		Name:      l.Name,
		Done:      l.IsDone(),
		Remaining: len(l.AllNotDone()),
		Total:     l.Size(),
	}
}

// detail adds the todos, undone first.
func detail(l *types.TodoList) *listView {
	v := summarize(l)
	undone, done := l.Partition(func(t *types.Todo) bool { return !t.IsDone() })
	v.Todos = append(undone, done...)
	return &v
}

// summaries lists every list of the session, done lists last.
func summaries(s *types.Session) []listView {
	out := make([]listView, 0, s.ListCount())
	for _, l := range s.Lists() {
		out = append(out, summarize(l))
	}
	slices.SortStableFunc(out, func(a, b listView) int {
		switch {
		case a.Done == b.Done:
			return 0
		case a.Done:
			return 1
		default:
			return -1
		}
	})
	return out
}

// render executes a view immediately, consuming the session's queued
// messages, and returns a response that writes the result.
func (s *Server) render(req *request, name string, p page) response {
	t, ok := s.views.pages[name]
	if !ok {
		return s.failure(fmt.Errorf("unknown view %q", name))
	}
	p.Messages = req.session.TakeMessages()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return s.failure(fmt.Errorf("rendering %s: %w", name, err))
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.Error("writing response", "view", name, "err", err)
		}
	}
}

func (s *Server) failure(err error) response {
	s.logger.Error("request failed", "err", err)
	return func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, app.TextUnexpectedErr, http.StatusInternalServerError)
	}
}

// redirect answers with 303 after a non-GET request on HTTP/1.1 and 302
// otherwise.
func redirect(url string) response {
	return func(w http.ResponseWriter, r *http.Request) {
		code := http.StatusFound
		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.ProtoAtLeast(1, 1) {
			code = http.StatusSeeOther
		}
		http.Redirect(w, r, url, code)
	}
}

func noContent() response {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func plainText(body string) response {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}
