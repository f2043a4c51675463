package session

import (
	"context"
	"errors"
	"time"

	"toothquest_portal/internal/util"
)

// Context 绑定到单个会话 ID 的令牌访问入口，API 客户端只通过它读写令牌
type Context struct {
	ID          string
	store       Store
	fallbackTTL time.Duration
}

func NewContext(store Store, id string, fallbackTTL time.Duration) *Context {
	return &Context{ID: id, store: store, fallbackTTL: fallbackTTL}
}

// Token 未登录时返回空字符串
func (c *Context) Token(ctx context.Context) (string, error) {
	if c == nil || c.ID == "" {
		return "", nil
	}
	token, err := c.store.Get(ctx, c.ID)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	return token, err
}

func (c *Context) SetToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, c.ID, token, TTLFor(token, c.fallbackTTL, time.Now()))
}

func (c *Context) Clear(ctx context.Context) error {
	if c == nil || c.ID == "" {
		return nil
	}
	return c.store.Clear(ctx, c.ID)
}

// TTLFor 优先使用令牌 exp 声明的剩余时间，没有 exp 时使用配置的会话时长
func TTLFor(token string, fallback time.Duration, now time.Time) time.Duration {
	if exp, ok := util.TokenExpiry(token); ok {
		if ttl := exp.Sub(now); ttl > 0 {
			return ttl
		}
		return time.Second
	}
	return fallback
}
