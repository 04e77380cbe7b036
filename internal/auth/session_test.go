package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client), mr
}

func TestNewSessionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.CSRFToken)
	assert.Empty(t, sess.UserID)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.CSRFToken, got.CSRFToken)
	assert.Equal(t, sess.Token, got.Token)
}

func TestGetUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginRotatesToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)
	sess.GuestID = "guest-1"
	require.NoError(t, store.Save(ctx, sess))

	logged, err := store.Login(ctx, sess, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, sess.Token, logged.Token)
	assert.Equal(t, "user-1", logged.UserID)
	// the guest reference and CSRF token survive the rotation
	assert.Equal(t, "guest-1", logged.GuestID)
	assert.Equal(t, sess.CSRFToken, logged.CSRFToken)

	// the old token is dead
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginInvalidatesPreviousUserSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.New(ctx)
	require.NoError(t, err)
	first, err = store.Login(ctx, first, "user-1")
	require.NoError(t, err)

	second, err := store.New(ctx)
	require.NoError(t, err)
	_, err = store.Login(ctx, second, "user-1")
	require.NoError(t, err)

	_, err = store.Get(ctx, first.Token)
	assert.ErrorIs(t, err, ErrNoSession, "second login must kill the first session")
}

func TestDestroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)
	sess, err = store.Login(ctx, sess, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess))

	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)

	mr.FastForward(SessionDuration + 1)

	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}
