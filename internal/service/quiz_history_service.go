package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/normalize"
	"toothquest_portal/internal/util"
	"toothquest_portal/pkg/logger"

	"go.uber.org/zap"
)

const historyScreen = "history"

type historyState struct {
	base    []model.QuizHistoryEntry
	view    collection.ViewState
	seq     collection.Sequencer
	mounted bool
}

// HistoryView 测验历史页当前显示内容
type HistoryView struct {
	collection.Page[model.QuizHistoryEntry]
	View       collection.ViewState `json:"view"`
	Categories []string             `json:"categories"`
	Error      string               `json:"error,omitempty"`
}

// QuizHistoryService 测验历史页：整表取回后在本地过滤、排序、分页
type QuizHistoryService struct {
	api      Upstream
	store    HistoryStore
	notes    *NotificationService
	screens  *registry[*historyState]
	pageSize atomic.Int64
}

// NewQuizHistoryService store 可以为 nil，此时只从上游读取
func NewQuizHistoryService(api Upstream, store HistoryStore, notes *NotificationService, pageSize int) *QuizHistoryService {
	s := &QuizHistoryService{
		api:   api,
		store: store,
		notes: notes,
		screens: newRegistry(func() *historyState {
			return &historyState{view: collection.DefaultViewState()}
		}),
	}
	s.SetPageSize(pageSize)
	return s
}

func (s *QuizHistoryService) SetPageSize(n int) {
	if n <= 0 {
		n = collection.DefaultPageSize
	}
	s.pageSize.Store(int64(n))
}

func (s *QuizHistoryService) pipeline() collection.Pipeline[model.QuizHistoryEntry] {
	return collection.NewPipeline(historyAccessors, int(s.pageSize.Load()))
}

// View 首次访问时挂载页面，之后只在本地重新计算
func (s *QuizHistoryService) View(ctx context.Context, v Viewer) (*HistoryView, error) {
	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()

	msg, err := s.mount(ctx, v, scr.state)
	if err != nil {
		return nil, err
	}
	return s.render(scr.state, msg), nil
}

func (s *QuizHistoryService) Update(ctx context.Context, v Viewer, in collection.ViewInput) (*HistoryView, error) {
	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()

	msg, err := s.mount(ctx, v, scr.state)
	if err != nil {
		return nil, err
	}
	scr.state.view.Apply(in)
	return s.render(scr.state, msg), nil
}

// Refresh 重新拉取基础集合。成功时替换集合并回到第 1 页；
// 失败时保留旧集合和查看状态；被更新请求取代的响应直接丢弃。
func (s *QuizHistoryService) Refresh(ctx context.Context, v Viewer) (*HistoryView, error) {
	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	n := scr.state.seq.Next()
	scr.mu.Unlock()

	res, err := s.api.List(ctx, tokenSource(v), HistoryPath, apiclient.ListQuery{})

	scr.mu.Lock()
	defer scr.mu.Unlock()
	st := scr.state
	if !st.seq.IsLatest(n) {
		discardStale(historyScreen)
		return s.render(st, ""), nil
	}
	if err != nil {
		if !recoverable(err) {
			return nil, err
		}
		return s.render(st, s.fail(v, "Could not refresh quiz history", err)), nil
	}

	st.base = normalize.QuizHistoryList(res.Records)
	st.mounted = true
	st.view.ResetPage()
	return s.render(st, ""), nil
}

func (s *QuizHistoryService) ToggleFavorite(ctx context.Context, v Viewer, id string) (*HistoryView, error) {
	return s.mutate(ctx, v, id, func(st *historyState, i int) {
		st.base[i].Favorite = !st.base[i].Favorite
	})
}

func (s *QuizHistoryService) Remove(ctx context.Context, v Viewer, id string) (*HistoryView, error) {
	return s.mutate(ctx, v, id, func(st *historyState, i int) {
		st.base = append(st.base[:i:i], st.base[i+1:]...)
	})
}

func (s *QuizHistoryService) mutate(ctx context.Context, v Viewer, id string, fn func(st *historyState, i int)) (*HistoryView, error) {
	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()

	msg, err := s.mount(ctx, v, scr.state)
	if err != nil {
		return nil, err
	}
	st := scr.state
	idx := -1
	for i := range st.base {
		if st.base[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("quiz history %q: %w", id, util.ErrRecordNotFound)
	}
	fn(st, idx)
	s.persist(ctx, v, st.base)
	return s.render(st, msg), nil
}

// Import 整体写入用户的历史记录，并替换当前会话页面的基础集合
func (s *QuizHistoryService) Import(ctx context.Context, v Viewer, raws []model.RawRecord) (*HistoryView, error) {
	if s.store == nil {
		return nil, errors.New("history store is not configured")
	}
	if v.UserKey == "" {
		return nil, util.ErrSessionNotFound
	}
	if raws == nil {
		raws = []model.RawRecord{}
	}
	if err := s.store.Upsert(ctx, v.UserKey, raws); err != nil {
		return nil, fmt.Errorf("save quiz history: %w", err)
	}

	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()
	st := scr.state
	st.seq.Next()
	st.base = normalize.QuizHistoryList(raws)
	st.mounted = true
	st.view.ResetPage()
	return s.render(st, ""), nil
}

// Stats 基于完整集合统计，不受当前过滤条件影响
func (s *QuizHistoryService) Stats(ctx context.Context, v Viewer) (*model.QuizHistoryStats, error) {
	scr := s.screens.get(v.sessionID())
	scr.mu.Lock()
	defer scr.mu.Unlock()

	if _, err := s.mount(ctx, v, scr.state); err != nil {
		return nil, err
	}
	stats := Summarize(scr.state.base)
	return &stats, nil
}

func Summarize(entries []model.QuizHistoryEntry) model.QuizHistoryStats {
	stats := model.QuizHistoryStats{Total: len(entries), ByModule: map[string]int{}}
	var sum float64
	for i, e := range entries {
		sum += e.Score
		if i == 0 || e.Score > stats.BestScore {
			stats.BestScore = e.Score
		}
		if e.Favorite {
			stats.Favorites++
		}
		stats.TotalMinutes += e.DurationMinutes
		for _, m := range e.Modules {
			stats.ByModule[m]++
		}
	}
	if len(entries) > 0 {
		stats.AverageScore = sum / float64(len(entries))
	}
	return stats
}

// Drop 会话结束时释放页面
func (s *QuizHistoryService) Drop(sessionID string) {
	s.screens.drop(sessionID)
}

func (s *QuizHistoryService) EvictIdle(maxIdle time.Duration) int {
	return s.screens.evictIdle(maxIdle)
}

// mount 只执行一次：优先读取本地持久化记录，没有时从上游拉取
func (s *QuizHistoryService) mount(ctx context.Context, v Viewer, st *historyState) (string, error) {
	if st.mounted {
		return "", nil
	}

	if s.store != nil && v.UserKey != "" {
		raws, err := s.store.FindByUserKey(ctx, v.UserKey)
		if err != nil {
			logger.Log.Warn("Failed to read persisted quiz history", zap.String("user", v.UserKey), zap.Error(err))
		} else if raws != nil {
			st.base = normalize.QuizHistoryList(raws)
			st.mounted = true
			return "", nil
		}
	}

	st.seq.Next()
	res, err := s.api.List(ctx, tokenSource(v), HistoryPath, apiclient.ListQuery{})
	if err != nil {
		if !recoverable(err) {
			return "", err
		}
		return s.fail(v, "Could not load quiz history", err), nil
	}
	st.base = normalize.QuizHistoryList(res.Records)
	st.mounted = true
	return "", nil
}

func (s *QuizHistoryService) persist(ctx context.Context, v Viewer, entries []model.QuizHistoryEntry) {
	if s.store == nil || v.UserKey == "" {
		return
	}
	if err := s.store.Upsert(ctx, v.UserKey, historyRecords(entries)); err != nil {
		logger.Log.Warn("Failed to persist quiz history", zap.String("user", v.UserKey), zap.Error(err))
	}
}

func (s *QuizHistoryService) fail(v Viewer, message string, err error) string {
	logger.Log.Warn(message, zap.String("session", v.sessionID()), zap.Error(err))
	s.notes.Push(v.sessionID(), model.NotifyError, message)
	return message
}

func (s *QuizHistoryService) render(st *historyState, errMsg string) *HistoryView {
	return &HistoryView{
		Page:       s.pipeline().Run(st.base, st.view),
		View:       st.view,
		Categories: categories(st.base),
		Error:      errMsg,
	}
}

// categories 集合中出现过的分类，"All" 在首位
func categories(entries []model.QuizHistoryEntry) []string {
	seen := map[string]bool{}
	var tags []string
	for _, e := range entries {
		for _, m := range e.Modules {
			if !seen[m] {
				seen[m] = true
				tags = append(tags, m)
			}
		}
	}
	sort.Strings(tags)
	return append([]string{collection.AllCategories}, tags...)
}

func historyRecords(entries []model.QuizHistoryEntry) []model.RawRecord {
	out := make([]model.RawRecord, 0, len(entries))
	for _, e := range entries {
		modules := make([]interface{}, len(e.Modules))
		for i, m := range e.Modules {
			modules[i] = m
		}
		out = append(out, model.RawRecord{
			"id":              e.ID,
			"title":           e.Title,
			"date":            e.Date,
			"modules":         modules,
			"score":           e.Score,
			"totalQuestions":  e.TotalQuestions,
			"correctAnswers":  e.CorrectAnswers,
			"durationMinutes": e.DurationMinutes,
			"favorite":        e.Favorite,
			"recent":          e.Recent,
		})
	}
	return out
}
