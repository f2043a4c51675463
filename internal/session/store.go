// Package session 保存浏览器会话对应的上游访问令牌。
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Store 会话令牌存储，ttl<=0 表示不过期
type Store interface {
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, token string, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}
