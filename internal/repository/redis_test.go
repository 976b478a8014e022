package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisStorage(client, "user")

	_, err := s.Load(ctx)
	require.True(t, errors.Is(err, ErrSlotEmpty))

	require.NoError(t, s.Store(ctx, []byte(`{"email":"a@b.com","token":"T1"}`)))
	stored, err := mr.Get("user")
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"a@b.com","token":"T1"}`, stored)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.JSONEq(t, stored, string(got))

	require.NoError(t, s.Delete(ctx))
	require.False(t, mr.Exists("user"))
	require.NoError(t, s.Delete(ctx))
}

func TestRedisStorage_ServerDown(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	s := NewRedisStorage(client, "user")
	mr.Close()

	_, err := s.Load(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrSlotEmpty))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisClient(context.Background(), "http://not-redis")
	require.Error(t, err)
}
