package service

import (
	"sync"
	"time"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/util"
)

const maxNotificationsPerSession = 20

// NotificationService 会话内的短暂提示，不持久化
type NotificationService struct {
	mu    sync.Mutex
	queue map[string][]model.Notification
	ttl   time.Duration
	now   func() time.Time
}

func NewNotificationService(ttl time.Duration) *NotificationService {
	if ttl <= 0 {
		ttl = 8 * time.Second
	}
	return &NotificationService{
		queue: make(map[string][]model.Notification),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *NotificationService) Push(sessionID string, level model.NotificationLevel, message string) model.Notification {
	now := s.now()
	n := model.Notification{
		ID:        model.GenerateUUID(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if sessionID == "" {
		return n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q := append(live(s.queue[sessionID], now), n)
	if len(q) > maxNotificationsPerSession {
		q = q[len(q)-maxNotificationsPerSession:]
	}
	s.queue[sessionID] = q
	return n
}

// List 返回未过期的提示，按创建顺序
func (s *NotificationService) List(sessionID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := live(s.queue[sessionID], s.now())
	if len(q) == 0 {
		delete(s.queue, sessionID)
		return []model.Notification{}
	}
	s.queue[sessionID] = q
	out := make([]model.Notification, len(q))
	copy(out, q)
	return out
}

func (s *NotificationService) Dismiss(sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue[sessionID]
	for i, n := range q {
		if n.ID == id {
			s.queue[sessionID] = append(q[:i:i], q[i+1:]...)
			return nil
		}
	}
	return util.ErrRecordNotFound
}

func (s *NotificationService) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.queue, sessionID)
	s.mu.Unlock()
}

// Sweep 清理全部会话中的过期提示
func (s *NotificationService) Sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.queue {
		if q = live(q, now); len(q) == 0 {
			delete(s.queue, id)
		} else {
			s.queue[id] = q
		}
	}
}

func live(q []model.Notification, now time.Time) []model.Notification {
	out := q[:0:0]
	for _, n := range q {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}
