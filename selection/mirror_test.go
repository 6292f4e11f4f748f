package selection

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestMirror_SaveAndLoad(t *testing.T) {
	client := setupRedis(t)
	mirror := NewMirror(client, time.Hour)
	ctx := context.Background()

	store := NewStore()
	require.NoError(t, store.Add(Selection{
		ID:          "a1",
		Name:        "Midland Funding",
		Reason:      "Account not mine",
		Instruction: "Remove from report",
	}))
	require.NoError(t, store.Add(Selection{
		ID:          "a2",
		Name:        "Capital One",
		Reason:      "Balance is incorrect",
		Instruction: "Validate with creditor",
	}))

	require.NoError(t, mirror.Save(ctx, "user-1", store))

	loaded, err := mirror.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, store.Items(), loaded.Items())
}

func TestMirror_LoadMissingYieldsEmptyStore(t *testing.T) {
	client := setupRedis(t)
	mirror := NewMirror(client, 0)

	loaded, err := mirror.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestMirror_ClearDropsSnapshot(t *testing.T) {
	client := setupRedis(t)
	mirror := NewMirror(client, time.Hour)
	ctx := context.Background()

	store := NewStore()
	require.NoError(t, store.Add(Selection{ID: "a1", Reason: "r", Instruction: "i"}))
	require.NoError(t, mirror.Save(ctx, "user-1", store))

	require.NoError(t, mirror.Clear(ctx, "user-1"))

	loaded, err := mirror.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestMirror_SnapshotsAreIsolatedPerUser(t *testing.T) {
	client := setupRedis(t)
	mirror := NewMirror(client, time.Hour)
	ctx := context.Background()

	a := NewStore()
	require.NoError(t, a.Add(Selection{ID: "a1", Reason: "r", Instruction: "i"}))
	require.NoError(t, mirror.Save(ctx, "user-a", a))

	loaded, err := mirror.Load(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
