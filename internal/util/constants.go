package util

const (
	ContextKeySession = "session"
	ContextKeyUser    = "user"
)

const HeaderSessionID = "X-Session-ID"
