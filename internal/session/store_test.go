package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-review-api/internal/models"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.IncrementUsage(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Create(ctx, models.Session{ID: "s1", Username: "carol", Role: models.RoleStudent, LoggedIn: true}))

	session, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "carol", session.Username)
	require.True(t, session.LoggedIn)
	require.Zero(t, session.DailyUsage)

	usage, err := store.IncrementUsage(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, usage)
	usage, err = store.IncrementUsage(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, usage)

	session, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, session.DailyUsage)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestMemoryStoreExpiresSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create(context.Background(), models.Session{ID: "s1", Username: "dan"}))
	_, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	exerciseStore(t, NewRedisStore(client, "", time.Hour))
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := NewRedisStore(client, "test", time.Minute)
	require.NoError(t, store.Create(context.Background(), models.Session{ID: "s1", Username: "erin"}))

	require.Equal(t, time.Minute, mini.TTL("test:s1"))
	mini.FastForward(2 * time.Minute)

	_, err = store.Get(context.Background(), "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreIncrementDoesNotResurrectExpiredSession(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := NewRedisStore(client, "test", time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, models.Session{ID: "s1", Username: "erin"}))
	mini.FastForward(2 * time.Minute)

	_, err := store.IncrementUsage(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.False(t, mini.Exists("test:s1"))

	// A hash left without its session payload is not counted either.
	mini.HSet("test:s2", "usage", "3")
	_, err = store.IncrementUsage(ctx, "s2")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Equal(t, "3", mini.HGet("test:s2", "usage"))
}
