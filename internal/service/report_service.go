package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/normalize"
	"toothquest_portal/internal/util"
)

type ReportView = RemoteView[model.QuestionReport]

// ReportService 管理端题目举报列表，分类对应模块，Filter 对应处理状态
type ReportService struct {
	list *remoteList[model.QuestionReport]
	api  Upstream
}

func NewReportService(api Upstream, notes *NotificationService, pageSize int) *ReportService {
	return &ReportService{
		api: api,
		list: newRemoteList("reports", ReportsPath, "Could not load question reports", api, notes, pageSize,
			normalize.ReportList,
			func(v collection.ViewState, filter string) apiclient.ListQuery {
				return apiclient.ListQuery{
					Search:   strings.TrimSpace(v.Search),
					Ordering: ordering(reportOrdering, v),
					Status:   filter,
					Module:   categoryFilter(v),
				}
			}),
	}
}

func (s *ReportService) SetPageSize(n int) {
	s.list.setPageSize(n)
}

func (s *ReportService) View(ctx context.Context, v Viewer) (*ReportView, error) {
	return s.list.load(ctx, v, nil)
}

func (s *ReportService) Update(ctx context.Context, v Viewer, in RemoteInput) (*ReportView, error) {
	if in.Filter != nil && !validStatusFilter(*in.Filter) {
		return nil, fmt.Errorf("report status %q: %w", *in.Filter, util.ErrInvalidViewInput)
	}
	return s.list.load(ctx, v, func(st *remoteState[model.QuestionReport]) {
		applyInput(st, in, statusFilter)
	})
}

// Resolve 修改举报状态，成功后原地更新当前页中的该行
func (s *ReportService) Resolve(ctx context.Context, v Viewer, id string, status model.ReportStatus) (*ReportView, error) {
	switch status {
	case model.ReportPending, model.ReportResolved, model.ReportDismissed:
	default:
		return nil, fmt.Errorf("report status %q: %w", status, util.ErrInvalidViewInput)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("report id: %w", util.ErrInvalidViewInput)
	}

	var out model.RawRecord
	path := ReportsPath + id + "/"
	if err := s.api.Do(ctx, tokenSource(v), http.MethodPatch, path, nil, map[string]string{"status": string(status)}, &out); err != nil {
		return nil, err
	}

	view, _ := s.list.patch(v,
		func(r model.QuestionReport) bool { return r.ID == id },
		func(r *model.QuestionReport) { r.Status = status })
	return view, nil
}

func (s *ReportService) Drop(sessionID string) {
	s.list.drop(sessionID)
}

func (s *ReportService) EvictIdle(maxIdle time.Duration) int {
	return s.list.evictIdle(maxIdle)
}

func validStatusFilter(f string) bool {
	switch statusFilter(f) {
	case "", string(model.ReportPending), string(model.ReportResolved), string(model.ReportDismissed):
		return true
	}
	return false
}

// statusFilter "all" 与空值都表示不过滤
func statusFilter(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "all" {
		return ""
	}
	return f
}
