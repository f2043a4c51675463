package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/normalize"
	"toothquest_portal/internal/session"
	"toothquest_portal/internal/util"
	"toothquest_portal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FullName        string `json:"fullName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	AccessCode      string `json:"accessCode" binding:"omitempty,accesscode"`
}

type LoginResult struct {
	SessionID string         `json:"sessionId"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *model.UserRow `json:"user,omitempty"`
}

type AccessCodeResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// AuthService 登录注册由上游完成，这里只保存令牌并维护会话
type AuthService struct {
	api      Upstream
	store    session.Store
	ttl      time.Duration
	validate *validator.Validate
	onLogout []func(sessionID string)
	now      func() time.Time
}

func NewAuthService(api Upstream, store session.Store, ttl time.Duration) *AuthService {
	return &AuthService{
		api:      api,
		store:    store,
		ttl:      ttl,
		validate: util.NewValidator(),
		now:      time.Now,
	}
}

// OnLogout 注册会话结束时的清理回调
func (s *AuthService) OnLogout(fn func(sessionID string)) {
	s.onLogout = append(s.onLogout, fn)
}

func (s *AuthService) Session(id string) *session.Context {
	return session.NewContext(s.store, id, s.ttl)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidForm, util.ValidationMessage(err))
	}

	var out model.RawRecord
	err := s.api.Do(ctx, nil, http.MethodPost, LoginPath, nil, req, &out)
	if apiclient.IsStatus(err, http.StatusBadRequest) || apiclient.IsStatus(err, http.StatusUnauthorized) {
		return nil, util.ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}

	token := normalize.String(out["token"])
	if token == "" {
		token = normalize.String(out["access"])
	}
	if token == "" {
		return nil, fmt.Errorf("%w: login response has no token", util.ErrUpstream)
	}

	sess := s.Session(model.GenerateUUID())
	if err := sess.SetToken(ctx, token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	result := &LoginResult{
		SessionID: sess.ID,
		ExpiresAt: s.now().Add(session.TTLFor(token, s.ttl, s.now())),
	}
	if u, ok := out["user"].(map[string]interface{}); ok {
		row := normalize.User(model.RawRecord(u))
		result.User = &row
	}
	logger.Log.Info("User logged in", zap.String("session", sess.ID))
	return result, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.AccessCode = strings.TrimSpace(req.AccessCode)
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", util.ErrInvalidForm, util.ValidationMessage(err))
	}

	body := map[string]string{
		"full_name": req.FullName,
		"email":     req.Email,
		"password":  req.Password,
	}
	if req.AccessCode != "" {
		body["access_code"] = req.AccessCode
	}
	err := s.api.Do(ctx, nil, http.MethodPost, RegisterPath, nil, body, nil)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", util.ErrInvalidForm, apiErr.Message)
	}
	return err
}

func (s *AuthService) ValidateAccessCode(ctx context.Context, code string) (*AccessCodeResult, error) {
	code = strings.TrimSpace(code)
	if err := s.validate.Var(code, "required,accesscode"); err != nil {
		return &AccessCodeResult{Valid: false, Message: util.ErrInvalidAccess.Error()}, nil
	}

	var out model.RawRecord
	err := s.api.Do(ctx, nil, http.MethodPost, AccessCodeCheckPath, nil, map[string]string{"code": code}, &out)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound) {
		return &AccessCodeResult{Valid: false, Message: apiErr.Message}, nil
	}
	if err != nil {
		return nil, err
	}

	valid := true
	if v, ok := out["valid"]; ok {
		valid = normalize.Bool(v)
	}
	result := &AccessCodeResult{Valid: valid, Message: normalize.String(out["message"])}
	if !valid && result.Message == "" {
		result.Message = util.ErrInvalidAccess.Error()
	}
	return result, nil
}

// Logout 清除令牌并释放该会话的所有页面
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	for _, fn := range s.onLogout {
		fn(sessionID)
	}
	logger.Log.Info("User logged out", zap.String("session", sessionID))
	return nil
}
