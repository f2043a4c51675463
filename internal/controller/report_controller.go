package controller

import (
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// GetReports godoc
// @Summary 获取题目举报列表
// @Description 过滤、排序、分页在上游完成，分类对应模块，filter 对应处理状态
// @Tags 管理员
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReportView}
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/reports [get]
func (c *ReportController) GetReports(ctx *gin.Context) {
	view, err := c.ReportService.View(ctx.Request.Context(), viewerFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UpdateView godoc
// @Summary 修改举报列表查看状态
// @Tags 管理员
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.RemoteInput true "查看状态变化"
// @Success 200 {object} util.Response{data=service.ReportView}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/admin/reports/view [patch]
func (c *ReportController) UpdateView(ctx *gin.Context) {
	var in service.RemoteInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		bindError(ctx, err)
		return
	}

	view, err := c.ReportService.Update(ctx.Request.Context(), viewerFrom(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

type ResolveReportRequest struct {
	Status model.ReportStatus `json:"status" binding:"required,oneof=pending resolved dismissed"`
}

// Resolve godoc
// @Summary 处理题目举报
// @Tags 管理员
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "举报ID"
// @Param   body body ResolveReportRequest true "新状态"
// @Success 200 {object} util.Response{data=service.ReportView}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "举报不存在"
// @Router /api/admin/reports/{id} [patch]
func (c *ReportController) Resolve(ctx *gin.Context) {
	var req ResolveReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	view, err := c.ReportService.Resolve(ctx.Request.Context(), viewerFrom(ctx), ctx.Param("id"), req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
