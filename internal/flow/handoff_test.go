package flow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisHandoffStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisHandoffStore(client, ttl), mr
}

func TestRedisHandoffLifecycle(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNoHandoff)

	require.NoError(t, store.Put(ctx, "session-1", testHandoff()))

	got, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "A1", got.AppointmentID)
	assert.Equal(t, "Dr. Sarah Johnson", got.Draft.DoctorName)
	assert.Equal(t, int64(150), got.Draft.ConsultationFee)

	require.NoError(t, store.Clear(ctx, "session-1"))
	_, err = store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestRedisHandoffExpires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testHandoff()))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestRedisHandoffSessionsAreIsolated(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testHandoff()))

	_, err := store.Get(ctx, "session-2")
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestMemoryHandoffLifecycle(t *testing.T) {
	store := NewMemoryHandoffStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNoHandoff)

	require.NoError(t, store.Put(ctx, "session-1", testHandoff()))
	got, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "A1", got.AppointmentID)

	// The store hands out copies; mutating one does not leak back.
	got.AppointmentID = "A2"
	again, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "A1", again.AppointmentID)

	require.NoError(t, store.Clear(ctx, "session-1"))
	_, err = store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNoHandoff)
}
