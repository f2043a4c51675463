package util

import (
	"errors"
	"time"
	"toothquest_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 上游签发的访问令牌载荷。签名由上游校验，这里只读取。
type Claims struct {
	UserID uint           `json:"user_id"`
	Role   model.UserRole `json:"role"`
	Email  string         `json:"email"`
	jwt.RegisteredClaims
}

var errNotJWT = errors.New("token is not a JWT")

// ParseClaims 解析令牌载荷但不校验签名
func ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, errors.Join(errNotJWT, err)
	}
	return claims, nil
}

// TokenExpiry 返回令牌的 exp，不是 JWT 或无 exp 时 ok 为 false
func TokenExpiry(tokenString string) (exp time.Time, ok bool) {
	claims, err := ParseClaims(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpired 令牌 exp 已过期时返回 true；无法判断时视为未过期，交给上游 401 处理
func TokenExpired(tokenString string, now time.Time) bool {
	exp, ok := TokenExpiry(tokenString)
	return ok && !now.Before(exp)
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
