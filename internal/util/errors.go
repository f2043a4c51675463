package util

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired, please log in again")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidViewInput = errors.New("invalid view input")
	ErrInvalidForm      = errors.New("invalid form")
	ErrUpstream         = errors.New("upstream request failed")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrInvalidAccess    = errors.New("access code is invalid or already used")
)
