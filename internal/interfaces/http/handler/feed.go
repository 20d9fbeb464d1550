package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/interfaces/http/dto"
	"mudi-match-api/pkg/logger"
)

// FeedService 推荐流操作（由 feed.Manager 实现）
type FeedService interface {
	Start(ctx context.Context, req recommend.Request) (*feed.State, error)
	Get(ctx context.Context, feedID, userID string) (*feed.State, error)
	Reject(ctx context.Context, feedID, userID string, movieID int64) (*feed.ActionResult, error)
	Accept(ctx context.Context, feedID, userID string, movieID int64) (*feed.ActionResult, error)
	ToggleWatched(ctx context.Context, feedID, userID string, movieID int64) (*feed.ActionResult, error)
}

// FeedHandler 推荐流处理器
type FeedHandler struct {
	feeds FeedService
}

// NewFeedHandler 创建推荐流处理器
func NewFeedHandler(feeds FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// Start 创建推荐流
// @Summary 创建推荐流
// @Tags Feeds
// @Accept json
// @Produce json
// @Param body body dto.StartFeedRequest true "推荐参数"
// @Success 201 {object} dto.Response[dto.FeedResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/feeds [post]
func (h *FeedHandler) Start(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.StartFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "body", "invalid request body: "+err.Error())
		return
	}

	state, err := h.feeds.Start(c.Request.Context(), req.ToRequest(userID))
	if err != nil {
		fail(c, "failed to start feed", err)
		return
	}
	dto.Created(c, dto.ToFeedResponse(state))
}

// Get 读取推荐流
// @Summary 读取推荐流
// @Tags Feeds
// @Produce json
// @Param fid path string true "推荐流 ID"
// @Success 200 {object} dto.Response[dto.FeedResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/feeds/{fid} [get]
func (h *FeedHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	state, err := h.feeds.Get(c.Request.Context(), dto.BindFeedID(c), userID)
	if err != nil {
		fail(c, "failed to load feed", err)
		return
	}
	dto.Success(c, dto.ToFeedResponse(state))
}

// Reject 拒绝并补位
func (h *FeedHandler) Reject(c *gin.Context) {
	h.action(c, "reject", h.feeds.Reject)
}

// Accept 收藏并补位
func (h *FeedHandler) Accept(c *gin.Context) {
	h.action(c, "accept", h.feeds.Accept)
}

// ToggleWatched 切换已看
func (h *FeedHandler) ToggleWatched(c *gin.Context) {
	h.action(c, "watched", h.feeds.ToggleWatched)
}

type feedAction func(ctx context.Context, feedID, userID string, movieID int64) (*feed.ActionResult, error)

func (h *FeedHandler) action(c *gin.Context, name string, fn feedAction) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	movieID, err := dto.BindMovieID(c)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	feedID := dto.BindFeedID(c)
	ctx := logger.WithContext(c.Request.Context(), logger.FeedIDKey, feedID)

	result, err := fn(ctx, feedID, userID, movieID)
	if err != nil {
		fail(c, "feed "+name+" failed", err)
		return
	}
	dto.Success(c, result)
}
