// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/interfaces/http/dto"
	apperrors "mudi-match-api/pkg/errors"
	"mudi-match-api/pkg/logger"
)

// callerID 取身份中间件写入的调用方 ID，缺失时直接返回 401
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString("user_id")
	if id == "" {
		dto.Fail(c, apperrors.ErrIdentityMissing)
		return "", false
	}
	return id, true
}

// fail 输出错误，依赖类错误额外记录日志
func fail(c *gin.Context, msg string, err error) {
	if apperrors.CategoryOf(err) == apperrors.CategoryDependency || !apperrors.IsAppError(err) {
		logger.Error(c.Request.Context(), msg, err)
	}
	dto.Fail(c, err)
}
