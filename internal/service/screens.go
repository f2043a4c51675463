package service

import (
	"sync"
	"time"
	"toothquest_portal/internal/session"
)

// Viewer 一次请求的调用方：会话用于访问上游，UserKey 用于本地持久化
type Viewer struct {
	Session *session.Context
	UserKey string
}

func (v Viewer) sessionID() string {
	if v.Session == nil {
		return ""
	}
	return v.Session.ID
}

// screen 单个会话独占的页面实例，state 只能在持有 mu 时访问
type screen[S any] struct {
	mu       sync.Mutex
	state    S
	lastUsed time.Time
}

// registry 按会话 ID 管理页面实例，空闲超时后回收
type registry[S any] struct {
	mu      sync.Mutex
	screens map[string]*screen[S]
	init    func() S
	now     func() time.Time
}

func newRegistry[S any](init func() S) *registry[S] {
	return &registry[S]{
		screens: make(map[string]*screen[S]),
		init:    init,
		now:     time.Now,
	}
}

func (r *registry[S]) get(id string) *screen[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	scr, ok := r.screens[id]
	if !ok {
		scr = &screen[S]{state: r.init()}
		r.screens[id] = scr
	}
	scr.lastUsed = r.now()
	return scr
}

func (r *registry[S]) drop(id string) {
	r.mu.Lock()
	delete(r.screens, id)
	r.mu.Unlock()
}

func (r *registry[S]) evictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, scr := range r.screens {
		if scr.lastUsed.Before(cutoff) {
			delete(r.screens, id)
			evicted++
		}
	}
	return evicted
}

func (r *registry[S]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}
