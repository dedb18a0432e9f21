package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/item"
)

func setupTestRedis(t *testing.T) *RedisStorage {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := NewRedisStorage(mr.Addr(), logger)
	t.Cleanup(func() { _ = rs.Close() })
	return rs
}

func TestRedisStorage_Ping(t *testing.T) {
	rs := setupTestRedis(t)
	assert.NoError(t, rs.Ping(context.Background()))
}

func TestRedisStorage_PlayerRoundTrip(t *testing.T) {
	rs := setupTestRedis(t)
	ctx := context.Background()

	p := actor.NewPlayer("Ada", "adventurer", "town_square")
	p.AddItem(&item.Item{ID: "herb", Name: "herb", Stackable: true, Quantity: 3})
	p.Skill("alchemy").AddExperience(50)
	p.Reputation["emberton"] = 7

	require.NoError(t, rs.SavePlayer(ctx, p))

	loaded, err := rs.LoadPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, p.Location, loaded.Location)
	assert.Equal(t, 3, loaded.CountItem("herb"))
	assert.Equal(t, 50, loaded.Skill("alchemy").Experience)
	assert.Equal(t, 7, loaded.Reputation["emberton"])
	assert.NotNil(t, loaded.Equipment, "Normalize repairs nil maps on load")
}

func TestRedisStorage_LoadPlayer_NotFound(t *testing.T) {
	rs := setupTestRedis(t)
	p, err := rs.LoadPlayer(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRedisStorage_DeletePlayer(t *testing.T) {
	rs := setupTestRedis(t)
	ctx := context.Background()

	p := actor.NewPlayer("Ada", "", "town_square")
	require.NoError(t, rs.SavePlayer(ctx, p))
	require.NoError(t, rs.DeletePlayer(ctx, p.ID))

	loaded, err := rs.LoadPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_AccountRoundTrip(t *testing.T) {
	rs := setupTestRedis(t)
	ctx := context.Background()

	a := &Account{Name: "Ada", PasswordHash: "hash", PlayerID: "p1", CreatedAt: time.Now().UTC()}
	require.NoError(t, rs.SaveAccount(ctx, a))

	loaded, err := rs.LoadAccount(ctx, "ADA")
	require.NoError(t, err)
	require.NotNil(t, loaded, "account lookup is case-insensitive")
	assert.Equal(t, "p1", loaded.PlayerID)

	missing, err := rs.LoadAccount(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStorage_SameContract(t *testing.T) {
	ms := NewMemoryStorage()
	ctx := context.Background()

	p := actor.NewPlayer("Ada", "", "town_square")
	require.NoError(t, ms.SavePlayer(ctx, p))

	loaded, err := ms.LoadPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, p.Name, loaded.Name)

	// Mutating the loaded copy must not affect a later load.
	loaded.Gold = 9999
	again, err := ms.LoadPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, again.Gold)

	missing, err := ms.LoadPlayer(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, ms.SaveAccount(ctx, &Account{Name: "Ada"}))
	acct, err := ms.LoadAccount(ctx, " ada ")
	require.NoError(t, err)
	assert.NotNil(t, acct)
}
