package handler

import (
	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/interfaces/http/dto"
	apperrors "mudi-match-api/pkg/errors"
)

// WatchedHandler 已看列表处理器
type WatchedHandler struct {
	store feed.WatchedStore
}

// NewWatchedHandler 创建已看列表处理器
func NewWatchedHandler(store feed.WatchedStore) *WatchedHandler {
	return &WatchedHandler{store: store}
}

// WatchedResponse 已看影片 ID
type WatchedResponse struct {
	MovieIDs []int64 `json:"movie_ids"`
}

// List 已看影片 ID 列表
func (h *WatchedHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	ids, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, "failed to list watched movies", apperrors.NewDependency(apperrors.CodeCacheError, "failed to list watched movies", err))
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	dto.Success(c, WatchedResponse{MovieIDs: ids})
}
