package util

import (
	"regexp"
	"toothquest_portal/internal/collection"

	"github.com/go-playground/validator/v10"
)

var accessCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]{6,32}$`)

// RegisterValidators 注册自定义校验标签，gin 绑定和服务层共用
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		return collection.ValidSortKey(collection.SortKey(fl.Field().String()))
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("flagmode", func(fl validator.FieldLevel) bool {
		return collection.ValidFlagMode(collection.FlagMode(fl.Field().String()))
	}); err != nil {
		return err
	}
	return v.RegisterValidation("accesscode", func(fl validator.FieldLevel) bool {
		return accessCodePattern.MatchString(fl.Field().String())
	})
}

// NewValidator 使用与 gin 相同的 binding 标签
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

// ValidationMessage 取第一条字段错误，转成面向用户的提示
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "Passwords do not match"
	case "accesscode":
		return "Access code format is invalid"
	case "sortkey":
		return "Unknown sort key"
	case "flagmode":
		return "Unknown filter mode"
	}
	return fe.Field() + " is invalid"
}
