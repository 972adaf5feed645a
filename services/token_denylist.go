package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist lưu jti của access token đã logout cho tới khi token hết hạn.
// Client nil thì mọi thao tác đều là no-op.
type TokenDenylist struct {
	rdb *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{rdb: rdb}
}

func (d *TokenDenylist) Enabled() bool {
	return d != nil && d.rdb != nil
}

func denylistKey(jti string) string {
	return "denylist:access:" + jti
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !d.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !d.Enabled() || jti == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *TokenDenylist) Ping(ctx context.Context) error {
	if !d.Enabled() {
		return nil
	}
	return d.rdb.Ping(ctx).Err()
}
