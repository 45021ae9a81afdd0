package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradedesk/gradedesk/internal/adapters/redis"
	"github.com/gradedesk/gradedesk/internal/workflows"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*backend.Client, *redis.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return client, redis.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := newTestStore(t)
	workflows.RunStoreContract(t, store)
}

func TestRedisStore_ListPrunesExpiredSessions(t *testing.T) {
	client, store := newTestStore(t, redis.WithTTL(time.Hour))
	ctx := context.Background()

	state := workflows.NewState("s-1", workflows.NewBubbleTest(nil))
	require.NoError(t, store.Save(ctx, "s-1", state))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s-1")

	// Backdate the index entry past its expiry; the next List prunes it.
	require.NoError(t, client.ZAdd(ctx, "gradedesk:session:index", backend.Z{
		Score:  1,
		Member: "s-1",
	}).Err())

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "s-1")
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	a := redis.NewFromClient(client, redis.WithPrefix("a:"))
	b := redis.NewFromClient(client, redis.WithPrefix("b:"))
	ctx := context.Background()

	state := workflows.NewState("shared", workflows.NewBubbleTest(nil))
	require.NoError(t, a.Save(ctx, "shared", state))

	_, err = b.Load(ctx, "shared")
	assert.ErrorIs(t, err, workflows.ErrSessionNotFound)
}
