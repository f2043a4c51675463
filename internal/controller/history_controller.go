package controller

import (
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	HistoryService *service.QuizHistoryService
}

func NewHistoryController(historyService *service.QuizHistoryService) *HistoryController {
	return &HistoryController{HistoryService: historyService}
}

// GetHistory godoc
// @Summary 获取测验历史当前页
// @Description 首次访问时加载历史记录，之后按当前查看状态在本地过滤、排序、分页
// @Tags 测验历史
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Failure 401 {object} util.Response "会话已过期"
// @Router /api/history [get]
func (c *HistoryController) GetHistory(ctx *gin.Context) {
	view, err := c.HistoryService.View(ctx.Request.Context(), viewerFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UpdateView godoc
// @Summary 修改测验历史查看状态
// @Description 搜索、分类、标记、排序变化时回到第 1 页；同一请求中显式给出的 page 优先
// @Tags 测验历史
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body collection.ViewInput true "查看状态变化"
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/history/view [patch]
func (c *HistoryController) UpdateView(ctx *gin.Context) {
	var in collection.ViewInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		bindError(ctx, err)
		return
	}

	view, err := c.HistoryService.Update(ctx.Request.Context(), viewerFrom(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Refresh godoc
// @Summary 重新拉取测验历史
// @Description 失败时返回旧数据并在 error 字段中说明
// @Tags 测验历史
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Router /api/history/refresh [post]
func (c *HistoryController) Refresh(ctx *gin.Context) {
	view, err := c.HistoryService.Refresh(ctx.Request.Context(), viewerFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ToggleFavorite godoc
// @Summary 收藏或取消收藏
// @Tags 测验历史
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验记录ID"
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/history/{id}/favorite [post]
func (c *HistoryController) ToggleFavorite(ctx *gin.Context) {
	view, err := c.HistoryService.ToggleFavorite(ctx.Request.Context(), viewerFrom(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Remove godoc
// @Summary 删除一条测验记录
// @Tags 测验历史
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验记录ID"
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/history/{id} [delete]
func (c *HistoryController) Remove(ctx *gin.Context) {
	view, err := c.HistoryService.Remove(ctx.Request.Context(), viewerFrom(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Import godoc
// @Summary 导入测验历史
// @Description 整体替换当前用户保存的历史记录
// @Tags 测验历史
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body []object true "原始记录数组"
// @Success 200 {object} util.Response{data=service.HistoryView}
// @Router /api/history/import [post]
func (c *HistoryController) Import(ctx *gin.Context) {
	var raws []model.RawRecord
	if err := ctx.ShouldBindJSON(&raws); err != nil {
		util.BadRequest(ctx, "request body must be an array of records")
		return
	}

	view, err := c.HistoryService.Import(ctx.Request.Context(), viewerFrom(ctx), raws)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Stats godoc
// @Summary 测验历史统计
// @Tags 测验历史
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuizHistoryStats}
// @Router /api/history/stats [get]
func (c *HistoryController) Stats(ctx *gin.Context) {
	stats, err := c.HistoryService.Stats(ctx.Request.Context(), viewerFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
