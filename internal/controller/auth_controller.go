package controller

import (
	"net/http"
	"time"
	"toothquest_portal/internal/middleware"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	CookieName  string
	IsRelease   bool // 生产环境下 Cookie 仅通过 HTTPS 发送
}

func NewAuthController(authService *service.AuthService, cookieName string, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		CookieName:  cookieName,
		IsRelease:   isRelease,
	}
}

// Login godoc
// @Summary 登录
// @Description 使用邮箱和密码登录，成功后返回会话 ID 并写入 Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=service.LoginResult} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Failure 502 {object} util.Response "上游服务不可用"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, res.SessionID, maxAge, "/", "", c.IsRelease, true)
	util.Success(ctx, res)
}

// Register godoc
// @Summary 注册新用户
// @Description 校验表单后转发到上游注册接口
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "注册信息"
// @Success 201 {object} util.Response "创建成功"
// @Failure 400 {object} util.Response "表单校验失败"
// @Failure 502 {object} util.Response "上游服务不可用"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	if err := c.AuthService.Register(ctx.Request.Context(), req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"email": req.Email})
}

type AccessCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateAccessCode godoc
// @Summary 校验访问码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body AccessCodeRequest true "访问码"
// @Success 200 {object} util.Response{data=service.AccessCodeResult}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/auth/access-code/validate [post]
func (c *AuthController) ValidateAccessCode(ctx *gin.Context) {
	var req AccessCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	res, err := c.AuthService.ValidateAccessCode(ctx.Request.Context(), req.Code)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	if sess != nil {
		if err := c.AuthService.Logout(ctx.Request.Context(), sess.ID); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, nil)
}
