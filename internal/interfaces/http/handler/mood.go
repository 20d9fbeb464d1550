package handler

import (
	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/interfaces/http/dto"
)

// MoodHandler 情绪参考数据
type MoodHandler struct {
	moods []dto.MoodResponse
}

// NewMoodHandler 创建情绪参考数据处理器
func NewMoodHandler() *MoodHandler {
	return &MoodHandler{moods: dto.ToMoodListResponse()}
}

// List 全部情绪、象限、转向目标与常见原因
// @Summary 情绪列表
// @Tags Moods
// @Produce json
// @Success 200 {object} dto.Response[[]dto.MoodResponse]
// @Router /v1/moods [get]
func (h *MoodHandler) List(c *gin.Context) {
	dto.Success(c, h.moods)
}
