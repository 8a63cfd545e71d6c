package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyReplayReturnsStoredID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint([]byte(`{"description":"rent"}`))

	_, replay, err := store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	require.False(t, replay)
	require.NoError(t, store.Complete(ctx, "abc", fp, 42))

	id, replay, err := store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	require.True(t, replay)
	require.Equal(t, int64(42), id)
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Begin(ctx, "abc", Fingerprint([]byte("a")))
	require.NoError(t, err)
	_, _, err = store.Begin(ctx, "abc", Fingerprint([]byte("b")))
	require.ErrorIs(t, err, ErrIdempotencyConflict)
}

func TestIdempotencyPendingIsInFlight(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint([]byte("a"))

	_, _, err := store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	_, _, err = store.Begin(ctx, "abc", fp)
	require.ErrorIs(t, err, ErrIdempotencyInFlight)
}

func TestIdempotencyReleaseAndExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint([]byte("a"))

	_, _, err := store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "abc"))
	_, replay, err := store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	require.False(t, replay)

	require.NoError(t, store.Complete(ctx, "abc", fp, 7))
	mr.FastForward(2 * time.Hour)
	_, replay, err = store.Begin(ctx, "abc", fp)
	require.NoError(t, err)
	require.False(t, replay)
}

func TestIdempotencyPendingExpiresBeforeDone(t *testing.T) {
	store, mr := newTestStore(t)
	store.WithPendingTTL(30 * time.Second)
	ctx := context.Background()
	fp := Fingerprint([]byte("a"))

	_, _, err := store.Begin(ctx, "stuck", fp)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, mr.TTL(idempotencyPrefix+"stuck"))
	mr.FastForward(31 * time.Second)
	_, replay, err := store.Begin(ctx, "stuck", fp)
	require.NoError(t, err)
	require.False(t, replay)

	require.NoError(t, store.Complete(ctx, "stuck", fp, 9))
	require.Equal(t, time.Hour, mr.TTL(idempotencyPrefix+"stuck"))
	mr.FastForward(time.Minute)
	id, replay, err := store.Begin(ctx, "stuck", fp)
	require.NoError(t, err)
	require.True(t, replay)
	require.Equal(t, int64(9), id)
}

func TestIdempotencyPendingTTLCappedByRecordTTL(t *testing.T) {
	store, _ := newTestStore(t)
	store.WithPendingTTL(2 * time.Hour)
	require.Equal(t, time.Hour, store.pendingTTL)
	store.WithPendingTTL(0)
	require.Equal(t, DefaultPendingTTL, store.pendingTTL)
}
