package web

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/todos/internal/app"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// request is what a route handler sees: the HTTP request, the locked
// session, and a Service bound to it.
type request struct {
	*http.Request
	session *types.Session
	svc     *app.Service
	outcome types.MessageKind
}

// flash queues msg for display and records it as the request outcome.
func (r *request) flash(msg types.Message) {
	if msg.IsZero() {
		return
	}
	r.session.Flash(msg)
	r.outcome = msg.Kind
}

// response writes the outcome of a handler. Handlers build responses before
// the session is saved and the response runs after.
type response func(w http.ResponseWriter, r *http.Request)

type handlerFunc func(req *request) response

// withSession resolves the session cookie, serializes requests for the same
// session, and saves the session once the handler has decided its response.
func (s *Server) withSession(op string, h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, fresh := s.sessionID(r)

		unlock := s.locks.Lock(id)
		defer unlock()

		sess, err := s.store.Load(r.Context(), id)
		switch {
		case errors.Is(err, types.ErrNotFound):
			// Never adopt an id the client chose; an unknown id gets a
			// server-minted one.
			if !fresh {
				id = newSessionID()
			}
			sess = types.NewSession(id)
			fresh = true
		case err != nil:
			s.logger.Error("loading session", "session", id, "err", err)
			http.Error(w, app.TextUnexpectedErr, http.StatusInternalServerError)
			return
		}

		req := &request{Request: r, session: sess, svc: app.New(sess)}
		resp := h(req)
		s.metrics.observeOperation(op, req.outcome)

		// A fresh session the request left empty is not worth a row.
		if fresh && sess.ListCount() == 0 && len(sess.Messages()) == 0 {
			resp(w, r)
			return
		}

		sess.Touch()
		if err := s.store.Save(r.Context(), sess); err != nil {
			s.logger.Error("saving session", "session", id, "err", err)
			http.Error(w, app.TextUnexpectedErr, http.StatusInternalServerError)
			return
		}
		if fresh {
			s.metrics.sessionsCreated.Inc()
			http.SetCookie(w, s.cookie(id))
		}
		resp(w, r)
	})
}

// sessionID returns the id carried by the request cookie, or a new one when
// the cookie is missing or malformed.
func (s *Server) sessionID(r *http.Request) (string, bool) {
	if c, err := r.Cookie(s.cookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), false
		}
	}
	return newSessionID(), true
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func (s *Server) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// keyedMutex hands out one mutex per key and drops it when the last holder
// releases it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
