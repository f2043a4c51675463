package controller

import (
	"strconv"
	"toothquest_portal/internal/middleware"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 把自定义校验标签注册到 gin 的绑定引擎
func RegisterValidators() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return util.RegisterValidators(v)
	}
	return nil
}

// viewerFrom 本地持久化按用户区分；令牌没有载荷时退化为按会话区分
func viewerFrom(ctx *gin.Context) service.Viewer {
	sess := middleware.SessionFrom(ctx)
	v := service.Viewer{Session: sess}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		switch {
		case claims.UserID != 0:
			v.UserKey = "user:" + strconv.FormatUint(uint64(claims.UserID), 10)
		case claims.Email != "":
			v.UserKey = "email:" + claims.Email
		}
	}
	if v.UserKey == "" && sess != nil && sess.ID != "" {
		v.UserKey = "session:" + sess.ID
	}
	return v
}

func bindError(ctx *gin.Context, err error) {
	util.BadRequest(ctx, util.ValidationMessage(err))
}
