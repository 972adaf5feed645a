package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/pathfinder-backend/testutil"
)

func TestTokenDenylist(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewTestRedis(t)
	d := NewTokenDenylist(rdb)
	require.True(t, d.Enabled())
	require.NoError(t, d.Ping(ctx))

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// token đã hết hạn thì không cần lưu
	require.NoError(t, d.Revoke(ctx, "jti-old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(denylistKey("jti-old")))

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylistDisabled(t *testing.T) {
	ctx := context.Background()
	d := NewTokenDenylist(nil)
	assert.False(t, d.Enabled())
	require.NoError(t, d.Revoke(ctx, "jti", time.Now().Add(time.Minute)))
	revoked, err := d.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylistRedisDown(t *testing.T) {
	rdb, mr := testutil.NewTestRedis(t)
	d := NewTokenDenylist(rdb)
	mr.Close()

	_, err := d.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
