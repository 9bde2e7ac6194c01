// Package storetest holds behavior tests shared by every SessionStore
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/mesh-intelligence/todos/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. The store is closed by the caller's
// cleanup, not by the tests.
type Factory func(t *testing.T) types.SessionStore

// Run exercises the SessionStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("load unknown session", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load(context.Background(), "missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		sess := sampleSession(t, "round-trip")
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Load(ctx, "round-trip")
		require.NoError(t, err)
		assert.Equal(t, sess.Record().Lists, got.Record().Lists)
		assert.Equal(t, sess.Messages(), got.Messages())
		assert.Equal(t, sess.NewTodo("probe", "").ID, got.NewTodo("probe", "").ID)
	})

	t.Run("loaded sessions do not alias stored state", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, sampleSession(t, "alias")))

		first, err := store.Load(ctx, "alias")
		require.NoError(t, err)
		home, err := first.List(0)
		require.NoError(t, err)
		home.MarkAllUndone()
		first.TakeMessages()

		second, err := store.Load(ctx, "alias")
		require.NoError(t, err)
		home2, err := second.List(0)
		require.NoError(t, err)
		assert.Len(t, home2.AllDone(), 1)
		assert.Len(t, second.Messages(), 1)
	})

	t.Run("save replaces", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		sess := sampleSession(t, "replace")
		require.NoError(t, store.Save(ctx, sess))

		_, err := sess.RemoveList(0)
		require.NoError(t, err)
		sess.TakeMessages()
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Load(ctx, "replace")
		require.NoError(t, err)
		assert.Equal(t, []string{"Work"}, got.ListNames(-1))
		assert.Empty(t, got.Messages())
	})

	t.Run("save rejects empty id", func(t *testing.T) {
		store := newStore(t)
		err := store.Save(context.Background(), types.NewSession(""))
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, sampleSession(t, "gone")))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, err := store.Load(ctx, "gone")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, store.Delete(ctx, "gone"), "delete is idempotent")
	})

	t.Run("list orders by last update", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		older := sampleSession(t, "older")
		older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
		newer := sampleSession(t, "newer")
		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "newer", infos[0].SessionID)
		assert.Equal(t, "older", infos[1].SessionID)
		assert.Equal(t, 2, infos[0].Lists)
	})

	t.Run("prune removes idle sessions", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		stale := sampleSession(t, "stale")
		stale.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
		fresh := sampleSession(t, "fresh")
		require.NoError(t, store.Save(ctx, stale))
		require.NoError(t, store.Save(ctx, fresh))

		n, err := store.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = store.Load(ctx, "stale")
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = store.Load(ctx, "fresh")
		assert.NoError(t, err)
	})

	t.Run("closed store rejects operations", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close(), "close is idempotent")

		_, err := store.Load(ctx, "x")
		assert.ErrorIs(t, err, types.ErrStoreClosed)
		assert.ErrorIs(t, store.Save(ctx, types.NewSession("x")), types.ErrStoreClosed)
		_, err = store.List(ctx)
		assert.ErrorIs(t, err, types.ErrStoreClosed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Load(ctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// sampleSession builds a session with two lists, one done todo, one undone
// todo and a pending success message.
func sampleSession(t *testing.T, id string) *types.Session {
	t.Helper()
	s := types.NewSession(id)
	home := s.NewList("Home")
	milk := s.NewTodo("Buy milk", "semi-skimmed")
	milk.MarkDone()
	require.NoError(t, home.Add(milk))
	require.NoError(t, home.Add(s.NewTodo("Walk dog", "")))
	require.NoError(t, s.AddList(home))
	require.NoError(t, s.AddList(s.NewList("Work")))
	s.Flash(types.SuccessMessage("The list has been created."))
	return s
}
