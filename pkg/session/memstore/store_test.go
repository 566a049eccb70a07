package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/pkg/session"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/memstore"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round trip returns a saved copy", func(t *testing.T) {
		t.Parallel()

		s := memstore.New()
		sess := session.New("s1", "tok1", time.Now().Add(time.Hour))
		sess.AddFlash("hello")
		require.NoError(t, s.Create(ctx, sess))

		got, err := s.Get(ctx, "tok1")
		require.NoError(t, err)
		require.False(t, got.IsNew())
		require.False(t, got.IsDirty())
		require.Equal(t, []string{"hello"}, got.Flashes())

		again, err := s.Get(ctx, "tok1")
		require.NoError(t, err)
		require.Equal(t, []string{"hello"}, again.PeekFlashes(), "reads do not share state")
	})

	t.Run("update follows a rotated token", func(t *testing.T) {
		t.Parallel()

		s := memstore.New()
		sess := session.New("s1", "old", time.Now().Add(time.Hour))
		require.NoError(t, s.Create(ctx, sess))

		sess.Token = "new"
		sess.SetUser(7)
		require.NoError(t, s.Update(ctx, sess))

		_, err := s.Get(ctx, "old")
		require.ErrorIs(t, err, session.ErrNotFound)

		got, err := s.Get(ctx, "new")
		require.NoError(t, err)
		require.True(t, got.IsAuthenticated())
		require.Equal(t, 1, s.Len())
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		s := memstore.New()
		require.NoError(t, s.Create(ctx, session.New("s", "t", time.Now().Add(-time.Second))))

		_, err := s.Get(ctx, "t")
		require.ErrorIs(t, err, session.ErrExpired)
	})

	t.Run("delete by user", func(t *testing.T) {
		t.Parallel()

		s := memstore.New()
		for _, id := range []string{"a", "b"} {
			sess := session.New(id, "tok-"+id, time.Now().Add(time.Hour))
			sess.SetUser(3)
			require.NoError(t, s.Create(ctx, sess))
		}
		require.NoError(t, s.Create(ctx, session.New("c", "tok-c", time.Now().Add(time.Hour))))

		require.NoError(t, s.DeleteByUserID(ctx, 3))
		require.Equal(t, 1, s.Len())

		require.NoError(t, s.Delete(ctx, "c"))
		require.NoError(t, s.Delete(ctx, "missing"))
		require.Zero(t, s.Len())
	})

	t.Run("touch", func(t *testing.T) {
		t.Parallel()

		s := memstore.New()
		require.NoError(t, s.Create(ctx, session.New("s", "t", time.Now().Add(time.Hour))))

		at := time.Now().Add(time.Minute).Truncate(time.Second)
		require.NoError(t, s.Touch(ctx, "s", at))

		got, err := s.Get(ctx, "t")
		require.NoError(t, err)
		require.True(t, at.Equal(got.LastActiveAt))
	})
}
