package handler

import (
	"github.com/gin-gonic/gin"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/repository"
	"mudi-match-api/internal/interfaces/http/dto"
	apperrors "mudi-match-api/pkg/errors"
)

// SavedHandler 收藏处理器
type SavedHandler struct {
	repo repository.SavedMovieRepository
}

// NewSavedHandler 创建收藏处理器
func NewSavedHandler(repo repository.SavedMovieRepository) *SavedHandler {
	return &SavedHandler{repo: repo}
}

// List 收藏列表，按收藏时间倒序
// @Summary 收藏列表
// @Tags Saved
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]entity.SavedMovie]
// @Router /v1/saved [get]
func (h *SavedHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page := dto.BindPage(c)

	result, err := h.repo.ListByUser(c.Request.Context(), userID, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		fail(c, "failed to list saved movies", apperrors.NewDependency(apperrors.CodeDatabaseError, "failed to list saved movies", err))
		return
	}
	items := result.Items
	if items == nil {
		items = []*entity.SavedMovie{}
	}
	dto.SuccessWithPage(c, items, dto.NewPageMeta(result.Page, result.PageSize, result.Total, result.TotalPages))
}

// Delete 取消收藏，不存在时同样返回 204
func (h *SavedHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	movieID, err := dto.BindMovieID(c)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, movieID); err != nil {
		fail(c, "failed to delete saved movie", apperrors.NewDependency(apperrors.CodeDatabaseError, "failed to delete saved movie", err))
		return
	}
	dto.NoContent(c)
}
