package controller

import (
	"toothquest_portal/internal/middleware"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

func sessionID(ctx *gin.Context) string {
	if sess := middleware.SessionFrom(ctx); sess != nil {
		return sess.ID
	}
	return ""
}

// List godoc
// @Summary 获取未过期的提示
// @Tags 提示
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	util.Success(ctx, c.NotificationService.List(sessionID(ctx)))
}

// Dismiss godoc
// @Summary 关闭提示
// @Tags 提示
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "提示ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "提示不存在"
// @Router /api/notifications/{id} [delete]
func (c *NotificationController) Dismiss(ctx *gin.Context) {
	if err := c.NotificationService.Dismiss(sessionID(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
