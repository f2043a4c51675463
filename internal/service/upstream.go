package service

import (
	"context"
	"errors"
	"net/url"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/util"
	"toothquest_portal/pkg/logger"
	"toothquest_portal/pkg/monitoring"

	"go.uber.org/zap"
)

// 上游 API 路径
const (
	HistoryPath         = "/quiz/history/"
	ReportsPath         = "/admin/reports/"
	UsersPath           = "/admin/users/"
	LoginPath           = "/auth/login/"
	RegisterPath        = "/auth/register/"
	AccessCodeCheckPath = "/auth/access-code/validate/"
)

// Upstream 由 *apiclient.Client 实现
type Upstream interface {
	Do(ctx context.Context, sess apiclient.TokenSource, method, path string, query url.Values, body, out interface{}) error
	List(ctx context.Context, sess apiclient.TokenSource, path string, q apiclient.ListQuery) (apiclient.ListResult, error)
}

// HistoryStore 测验历史的本地持久化，由 *repository.HistoryRepository 实现
type HistoryStore interface {
	FindByUserKey(ctx context.Context, userKey string) ([]model.RawRecord, error)
	Upsert(ctx context.Context, userKey string, records []model.RawRecord) error
}

// tokenSource 避免把 nil *session.Context 包装成非 nil 接口
func tokenSource(v Viewer) apiclient.TokenSource {
	if v.Session == nil {
		return nil
	}
	return v.Session
}

// recoverable 网络类失败保留旧数据并提示；会话过期需要交给调用方
func recoverable(err error) bool {
	return !errors.Is(err, util.ErrSessionExpired)
}

func discardStale(screenName string) {
	monitoring.StaleResponses.WithLabelValues(screenName).Inc()
	logger.Named(screenName).Debug("Discarded stale upstream response", zap.String("screen", screenName))
}
