package middleware

import (
	"net/http"
	"time"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/session"
	"toothquest_portal/internal/util"
	"toothquest_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionMiddleware 从请求头或 Cookie 取会话 ID，绑定到令牌存储
func SessionMiddleware(store session.Store, cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(util.HeaderSessionID)
		if id == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				id = cookie
			}
		}
		c.Set(util.ContextKeySession, session.NewContext(store, id, ttl))
		c.Next()
	}
}

// SessionFrom 未经过 SessionMiddleware 时返回 nil
func SessionFrom(c *gin.Context) *session.Context {
	v, ok := c.Get(util.ContextKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Context)
	return sess
}

// AuthMiddleware 要求会话持有未过期的令牌
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		token, err := sess.Token(c.Request.Context())
		if err != nil {
			logger.Log.Error("Failed to read session token", zap.Error(err))
			util.InternalServerError(c)
			c.Abort()
			return
		}

		if token == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if util.TokenExpired(token, time.Now()) {
			if err := sess.Clear(c.Request.Context()); err != nil {
				logger.Log.Error("Failed to clear expired session", zap.Error(err))
			}
			util.Error(c, http.StatusUnauthorized, util.ErrSessionExpired.Error())
			c.Abort()
			return
		}

		// 不透明令牌没有载荷，此时权限完全由上游判断
		if claims, err := util.ParseClaims(token); err == nil {
			c.Set(util.ContextKeyUser, claims)
		}
		c.Next()
	}
}

// RoleMiddleware 令牌载荷中带有角色时在本地提前拦截，上游仍会再次校验
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil || user.Role == "" {
			c.Next()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
