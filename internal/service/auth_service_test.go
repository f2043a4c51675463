package service

import (
	"context"
	"net/http"
	"testing"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/session"
	"toothquest_portal/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	api := &fakeUpstream{doFn: func(method, path string, body interface{}) (interface{}, error) {
		return map[string]interface{}{
			"access": "opaque-token",
			"user":   map[string]interface{}{"id": 5, "email": "a@b.co", "role": "admin"},
		}, nil
	}}
	store := session.NewMemoryStore()
	svc := NewAuthService(api, store, time.Hour)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: " a@b.co ", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	require.NotNil(t, res.User)
	assert.Equal(t, model.Admin, res.User.Role)
	assert.Equal(t, LoginPath, api.calls[0].Path)

	token, err := store.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := &fakeUpstream{doFn: func(string, string, interface{}) (interface{}, error) {
		return nil, &apiclient.APIError{StatusCode: http.StatusUnauthorized, Message: "No active account"}
	}}
	svc := NewAuthService(api, session.NewMemoryStore(), time.Hour)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidLogin)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, util.ErrInvalidForm)
}

func TestLogin_MissingToken(t *testing.T) {
	api := &fakeUpstream{doFn: func(string, string, interface{}) (interface{}, error) {
		return map[string]interface{}{"detail": "ok"}, nil
	}}
	svc := NewAuthService(api, session.NewMemoryStore(), time.Hour)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, util.ErrUpstream)
}

func TestRegister_ValidatesBeforeCallingUpstream(t *testing.T) {
	api := &fakeUpstream{}
	svc := NewAuthService(api, session.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	err := svc.Register(ctx, RegisterRequest{
		FullName: "Sam", Email: "sam@example.com", Password: "longenough", ConfirmPassword: "different",
	})
	assert.ErrorIs(t, err, util.ErrInvalidForm)
	assert.Contains(t, err.Error(), "Passwords do not match")
	assert.Empty(t, api.calls)

	err = svc.Register(ctx, RegisterRequest{
		FullName: "Sam", Email: "sam@example.com", Password: "longenough", ConfirmPassword: "longenough", AccessCode: "TQ-2024-01",
	})
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	body := api.calls[0].Body.(map[string]string)
	assert.Equal(t, "TQ-2024-01", body["access_code"])
	assert.Equal(t, "Sam", body["full_name"])
}

func TestRegister_UpstreamRejection(t *testing.T) {
	api := &fakeUpstream{doFn: func(string, string, interface{}) (interface{}, error) {
		return nil, &apiclient.APIError{StatusCode: http.StatusBadRequest, Message: "Email already registered"}
	}}
	svc := NewAuthService(api, session.NewMemoryStore(), time.Hour)

	err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Sam", Email: "sam@example.com", Password: "longenough", ConfirmPassword: "longenough",
	})
	assert.ErrorIs(t, err, util.ErrInvalidForm)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestValidateAccessCode(t *testing.T) {
	api := &fakeUpstream{doFn: func(_ string, _ string, body interface{}) (interface{}, error) {
		if body.(map[string]string)["code"] == "USED-CODE-1" {
			return map[string]interface{}{"valid": false}, nil
		}
		return map[string]interface{}{"valid": true, "message": "Welcome"}, nil
	}}
	svc := NewAuthService(api, session.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	res, err := svc.ValidateAccessCode(ctx, "GOOD-CODE-1")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "Welcome", res.Message)

	res, err = svc.ValidateAccessCode(ctx, "USED-CODE-1")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, util.ErrInvalidAccess.Error(), res.Message)

	res, err = svc.ValidateAccessCode(ctx, "x")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, api.calls, 2)
}

func TestLogout_ClearsSessionAndScreens(t *testing.T) {
	store := session.NewMemoryStore()
	svc := NewAuthService(&fakeUpstream{}, store, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "sid", "tok", 0))

	var dropped []string
	svc.OnLogout(func(id string) { dropped = append(dropped, id) })

	require.NoError(t, svc.Logout(ctx, "sid"))
	_, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, []string{"sid"}, dropped)
}
