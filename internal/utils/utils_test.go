package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.NoError(t, h.Compare(hash, "pw1"))
	assert.Error(t, h.Compare(hash, "pw2"))

	again, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewBcryptHasher_FallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u1", "alice", []string{"Admin"}, "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"Admin"}, claims.Roles)

	_, err = ParseJWT(token, "wrong")
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	c := NewCache(rdb)
	ctx := context.Background()

	var got []string
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []string{"a", "b"}, time.Minute))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Generation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	c := NewCache(rdb)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.Bump(ctx, "gen"))
	require.NoError(t, c.Bump(ctx, "gen"))
	gen, err = c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
	assert.Equal(t, "users:all:2", GenerationKey(UsersListKey, gen))
}

func TestCache_Disabled(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()
	assert.False(t, c.Enabled())

	var v int
	found, err := c.Get(ctx, "k", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, c.Bump(ctx, "gen"))
	gen, err := c.Generation(ctx, "gen")
	assert.NoError(t, err)
	assert.Zero(t, gen)
}
