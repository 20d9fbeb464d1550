package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/interfaces/http/dto"
)

// Recommender 无状态推荐
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// RecommendationHandler 推荐查询处理器
type RecommendationHandler struct {
	svc Recommender
}

// NewRecommendationHandler 创建推荐查询处理器
func NewRecommendationHandler(svc Recommender) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Recommend 按情绪推荐影片
// @Summary 情绪推荐
// @Description 按当前情绪与意图返回相似度排序的影片，检索为空时返回 404 no_match
// @Tags Movies
// @Produce json
// @Param mood query string true "情绪"
// @Param intention query string false "sit | shift"
// @Param reason query string false "情绪原因"
// @Param limit query int false "返回数量 1-50"
// @Param threshold query number false "相似度阈值 (0.01-1.0]"
// @Param exclude query string false "逗号分隔的排除影片 ID"
// @Param region query string false "观看渠道地区"
// @Success 200 {object} dto.Response[dto.RecommendationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/movies/recommendations [get]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	q, err := dto.BindRecommendationQuery(c)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	res, err := h.svc.Recommend(c.Request.Context(), q.ToRequest(userID))
	if err != nil {
		fail(c, "failed to recommend movies", err)
		return
	}
	dto.Success(c, dto.ToRecommendationResponse(res))
}
