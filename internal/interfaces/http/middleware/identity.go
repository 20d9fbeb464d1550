// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/interfaces/http/dto"
	apperrors "mudi-match-api/pkg/errors"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/utils"
)

const (
	// ClientIDHeader 安装 ID 头，没有令牌时用它识别调用方
	ClientIDHeader = "X-Client-ID"

	maxClientIDLen = 128
)

// TokenVerifier 令牌校验
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// IdentityConfig 身份中间件配置
type IdentityConfig struct {
	// Verifier 为 nil 时忽略 Authorization 头，只认 X-Client-ID
	Verifier  TokenVerifier
	SkipPaths []string
}

// Identity 解析调用方身份并写入 user_id
// 携带 Bearer 令牌时必须校验通过；否则退回 X-Client-ID
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range cfg.SkipPaths {
			if path == p || strings.HasPrefix(path, p+"/") {
				c.Next()
				return
			}
		}

		userID, err := resolveIdentity(c, cfg.Verifier)
		if err != nil {
			dto.Fail(c, err)
			return
		}

		c.Set("user_id", userID)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, verifier TokenVerifier) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" && verifier != nil {
		token, ok := utils.BearerToken(header)
		if !ok {
			return "", apperrors.ErrTokenInvalid.WithDetail("invalid authorization format")
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				return "", apperrors.ErrTokenExpired
			}
			return "", apperrors.ErrTokenInvalid.WithError(err)
		}
		return claims.UserID, nil
	}

	clientID := strings.TrimSpace(c.GetHeader(ClientIDHeader))
	if clientID == "" {
		return "", apperrors.ErrIdentityMissing
	}
	if len(clientID) > maxClientIDLen {
		return "", apperrors.NewValidation("X-Client-ID", "client id too long")
	}
	return clientID, nil
}
