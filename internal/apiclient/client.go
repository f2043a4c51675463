// Package apiclient ToothQuest 上游 REST API 客户端。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"toothquest_portal/internal/config"
	"toothquest_portal/internal/util"
	"toothquest_portal/pkg/logger"
	"toothquest_portal/pkg/monitoring"
	"toothquest_portal/pkg/tracing"

	"go.uber.org/zap"
)

// TokenSource 会话令牌来源，由 session.Context 实现
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func New(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: tracing.Transport(nil),
		},
		now: time.Now,
	}
}

// APIError 上游返回的非 2xx 响应（401 除外）
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return util.ErrPermissionDenied
	case http.StatusNotFound:
		return util.ErrRecordNotFound
	}
	return util.ErrUpstream
}

// Do 发送一次请求。sess 为 nil 表示匿名请求（登录、注册）。
// 已登录请求收到 401 时清除会话令牌并返回 util.ErrSessionExpired。
func (c *Client) Do(ctx context.Context, sess TokenSource, method, path string, query url.Values, body, out interface{}) error {
	token := ""
	if sess != nil {
		t, err := sess.Token(ctx)
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
		token = t
		if token != "" && util.TokenExpired(token, c.now()) {
			c.expire(ctx, sess, path)
			return util.ErrSessionExpired
		}
	}

	req, err := c.newRequest(ctx, method, path, query, token, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.ObserveUpstream(method, route(path), 0, time.Since(start))
		logger.Named("apiclient").Warn("Upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", util.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()
	monitoring.ObserveUpstream(method, route(path), resp.StatusCode, time.Since(start))

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", util.ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		c.expire(ctx, sess, path)
		return util.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(payload, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := decode(payload, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", util.ErrUpstream, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, token string, body interface{}) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) expire(ctx context.Context, sess TokenSource, path string) {
	if err := sess.Clear(ctx); err != nil {
		logger.Named("apiclient").Error("Failed to clear expired session", zap.Error(err))
	}
	logger.Named("apiclient").Info("Upstream session expired", zap.String("path", path))
}

// decode 数字保留为 json.Number，交给规范化层处理
func decode(payload []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	return dec.Decode(out)
}

func errorMessage(payload []byte, status int) string {
	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
			if msg := messageOf(body[key]); msg != "" {
				return msg
			}
		}
	}
	return http.StatusText(status)
}

func messageOf(v interface{}) string {
	switch m := v.(type) {
	case string:
		return m
	case []interface{}:
		if len(m) > 0 {
			return messageOf(m[0])
		}
	}
	return ""
}

var idSegment = regexp.MustCompile(`/[0-9a-fA-F-]*[0-9][0-9a-fA-F-]*(/|$)`)

// route 把路径中的 ID 段折叠为 :id，控制指标标签基数
func route(path string) string {
	return idSegment.ReplaceAllString(path, "/:id$1")
}

// IsStatus 判断 err 是否为指定状态码的 APIError
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
