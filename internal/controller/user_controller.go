package controller

import (
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 分类对应角色，过滤、排序、分页在上游完成
// @Tags 管理员
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserListView}
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	view, err := c.UserService.View(ctx.Request.Context(), viewerFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UpdateView godoc
// @Summary 修改用户列表查看状态
// @Tags 管理员
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.RemoteInput true "查看状态变化"
// @Success 200 {object} util.Response{data=service.UserListView}
// @Router /api/admin/users/view [patch]
func (c *UserController) UpdateView(ctx *gin.Context) {
	var in service.RemoteInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		bindError(ctx, err)
		return
	}

	view, err := c.UserService.Update(ctx.Request.Context(), viewerFrom(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
