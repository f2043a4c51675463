package service

import (
	"context"
	"sync/atomic"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/pkg/logger"

	"go.uber.org/zap"
)

type remoteState[T any] struct {
	view   collection.ViewState
	filter string
	seq    collection.Sequencer
	page   collection.Page[T]
}

// RemoteView 服务端分页列表的当前显示内容
type RemoteView[T any] struct {
	collection.Page[T]
	View   collection.ViewState `json:"view"`
	Filter string               `json:"filter,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// RemoteInput 列表输入；Filter 的含义由具体页面决定
type RemoteInput struct {
	collection.ViewInput
	Filter *string `json:"filter"`
}

// remoteList 服务端过滤排序分页：查看状态映射为查询参数，
// 上游返回的 count 决定分页信息
type remoteList[T any] struct {
	name      string
	path      string
	failMsg   string
	api       Upstream
	notes     *NotificationService
	screens   *registry[*remoteState[T]]
	pageSize  atomic.Int64
	normalize func([]model.RawRecord) []T
	query     func(v collection.ViewState, filter string) apiclient.ListQuery
}

func newRemoteList[T any](name, path, failMsg string, api Upstream, notes *NotificationService, pageSize int,
	normalize func([]model.RawRecord) []T, query func(collection.ViewState, string) apiclient.ListQuery) *remoteList[T] {
	l := &remoteList[T]{
		name:    name,
		path:    path,
		failMsg: failMsg,
		api:     api,
		notes:   notes,
		screens: newRegistry(func() *remoteState[T] {
			return &remoteState[T]{view: collection.DefaultViewState()}
		}),
		normalize: normalize,
		query:     query,
	}
	l.setPageSize(pageSize)
	return l
}

func (l *remoteList[T]) setPageSize(n int) {
	if n <= 0 {
		n = collection.DefaultPageSize
	}
	l.pageSize.Store(int64(n))
}

// load 在锁内修改查看状态并分配序号，请求期间不持有锁。
// 请求失败时查看状态回到修改前，与仍在显示的旧数据保持一致
func (l *remoteList[T]) load(ctx context.Context, v Viewer, change func(st *remoteState[T])) (*RemoteView[T], error) {
	size := int(l.pageSize.Load())
	scr := l.screens.get(v.sessionID())

	scr.mu.Lock()
	st := scr.state
	prevView, prevFilter := st.view, st.filter
	if change != nil {
		change(st)
	}
	n := st.seq.Next()
	q := l.query(st.view, st.filter)
	q.Page = st.view.Page
	q.PageSize = size
	scr.mu.Unlock()

	res, err := l.api.List(ctx, tokenSource(v), l.path, q)

	scr.mu.Lock()
	defer scr.mu.Unlock()
	if !st.seq.IsLatest(n) {
		discardStale(l.name)
		return l.render(st, ""), nil
	}
	if err != nil {
		if !recoverable(err) {
			return nil, err
		}
		logger.Named(l.name).Warn(l.failMsg, zap.String("session", v.sessionID()), zap.Error(err))
		st.view, st.filter = prevView, prevFilter
		l.notes.Push(v.sessionID(), model.NotifyError, l.failMsg)
		return l.render(st, l.failMsg), nil
	}
	st.page = collection.ServerPage(l.normalize(res.Records), st.view.Page, size, res.Count)
	return l.render(st, ""), nil
}

// patch 在当前页中原地修改一行，找不到时返回 false
func (l *remoteList[T]) patch(v Viewer, match func(T) bool, fn func(*T)) (*RemoteView[T], bool) {
	scr := l.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()
	st := scr.state
	found := false
	for i := range st.page.Items {
		if match(st.page.Items[i]) {
			fn(&st.page.Items[i])
			found = true
		}
	}
	return l.render(st, ""), found
}

func (l *remoteList[T]) render(st *remoteState[T], errMsg string) *RemoteView[T] {
	page := st.page
	if page.Items == nil {
		page = collection.ServerPage[T](nil, st.view.Page, int(l.pageSize.Load()), 0)
	}
	items := make([]T, len(page.Items))
	copy(items, page.Items)
	page.Items = items
	return &RemoteView[T]{Page: page, View: st.view, Filter: st.filter, Error: errMsg}
}

func (l *remoteList[T]) drop(sessionID string) {
	l.screens.drop(sessionID)
}

func (l *remoteList[T]) evictIdle(maxIdle time.Duration) int {
	return l.screens.evictIdle(maxIdle)
}

// applyInput 应用列表输入；过滤条件变化时回到第 1 页，显式页码优先
func applyInput[T any](st *remoteState[T], in RemoteInput, normalizeFilter func(string) string) {
	page := in.Page
	in.Page = nil
	st.view.Apply(in.ViewInput)
	if in.Filter != nil {
		f := normalizeFilter(*in.Filter)
		if f != st.filter {
			st.filter = f
			st.view.ResetPage()
		}
	}
	if page != nil {
		st.view.SetPage(*page)
	}
}

func categoryFilter(v collection.ViewState) string {
	if v.Category == collection.AllCategories {
		return ""
	}
	return v.Category
}
