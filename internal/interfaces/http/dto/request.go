package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "mudi-match-api/pkg/errors"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// BindPage 从 query 绑定分页参数，非法值取默认
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{
		Page:     parseIntWithDefault(c.Query("page"), 1),
		PageSize: parseIntWithDefault(c.Query("page_size"), 20),
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	return req
}

func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindFeedID 从 URI 绑定推荐流 ID
func BindFeedID(c *gin.Context) string {
	return c.Param("fid")
}

// BindMovieID 从 URI 绑定影片 ID
func BindMovieID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("mid"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidation("movie_id", "movie id must be a positive integer")
	}
	return id, nil
}

// ParseIDList 解析逗号分隔的影片 ID 列表，空串返回 nil
func ParseIDList(field, raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, apperrors.NewValidation(field, "ids must be comma separated integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
