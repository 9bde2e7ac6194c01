// Package web serves the todo-list application over HTTP. Every request is
// bound to a session identified by a cookie; the session is loaded from a
// types.SessionStore, mutated under a per-session lock, and saved before the
// response is written.
package web

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// DefaultCookieName is the session cookie name when Options leaves it empty.
const DefaultCookieName = "todos_session"

// Options configures a Server.
type Options struct {
	Store        types.SessionStore
	Logger       *slog.Logger
	CookieName   string
	CookieSecure bool
	// Registry receives the server's collectors. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

// Server is the HTTP handler for the application.
type Server struct {
	store        types.SessionStore
	logger       *slog.Logger
	cookieName   string
	cookieSecure bool
	locks        *keyedMutex
	metrics      *metrics
	views        *views
	router       *mux.Router
}

var _ http.Handler = (*Server)(nil)

// NewServer builds the router and parses the embedded views.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: nil session store")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	v, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("parsing views: %w", err)
	}
	m, err := newMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	s := &Server{
		store:        opts.Store,
		logger:       opts.Logger,
		cookieName:   opts.CookieName,
		cookieSecure: opts.CookieSecure,
		locks:        newKeyedMutex(),
		metrics:      m,
		views:        v,
	}
	if err := s.routes(opts.Registry); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes(reg *prometheus.Registry) error {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	r := mux.NewRouter()
	r.Use(s.instrument)

	r.Methods(http.MethodGet).Path("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/lists", http.StatusFound)
	})
	r.Methods(http.MethodGet).Path("/lists").Handler(s.withSession("index", s.index))
	r.Methods(http.MethodGet).Path("/lists/new").Handler(s.withSession("new_list", s.newList))
	r.Methods(http.MethodPost).Path("/lists").Handler(s.withSession("create_list", s.createList))
	r.Methods(http.MethodGet).Path("/lists/{id}").Handler(s.withSession("show_list", s.showList))
	r.Methods(http.MethodGet).Path("/lists/{id}/edit").Handler(s.withSession("edit_list", s.editList))
	r.Methods(http.MethodPost).Path("/lists/{id}").Handler(s.withSession("update_list", s.updateList))
	r.Methods(http.MethodPost).Path("/lists/{id}/destroy").Handler(s.withSession("destroy_list", s.destroyList))
	r.Methods(http.MethodPost).Path("/lists/{id}/todos").Handler(s.withSession("add_todo", s.addTodo))
	r.Methods(http.MethodPost).Path("/lists/{id}/todos/{todo_id}").Handler(s.withSession("update_todo", s.updateTodo))
	r.Methods(http.MethodPost).Path("/lists/{id}/todos/{todo_id}/destroy").Handler(s.withSession("destroy_todo", s.destroyTodo))
	r.Methods(http.MethodPost).Path("/lists/{id}/complete_all").Handler(s.withSession("complete_all", s.completeAll))

	r.Methods(http.MethodGet).PathPrefix("/javascripts/").Handler(http.FileServerFS(static))
	r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.NotFoundHandler = s.instrument(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/lists", http.StatusFound)
	}))
	r.MethodNotAllowedHandler = r.NotFoundHandler

	s.router = r
	return nil
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// instrument logs one line per request and records request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		route := routeTemplate(r)
		s.metrics.observeRequest(route, r.Method, m.Code, m.Duration)
		s.logger.Info("handled",
			"method", r.Method,
			"url", r.URL,
			"route", route,
			"duration", m.Duration.Round(time.Microsecond),
			"status", m.Code,
		)
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
