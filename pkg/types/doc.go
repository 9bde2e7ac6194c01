// Package types defines the todo collection model (Todo, TodoList), flash
// messages, the Session aggregate that owns them, the SessionStore interface
// implemented by storage backends, and the standard errors shared across the
// todos application.
package types
