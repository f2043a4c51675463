package service

import (
	"context"
	"strings"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/normalize"
)

type UserListView = RemoteView[model.UserRow]

// UserService 管理端用户列表，分类对应角色
type UserService struct {
	list *remoteList[model.UserRow]
}

func NewUserService(api Upstream, notes *NotificationService, pageSize int) *UserService {
	return &UserService{
		list: newRemoteList("users", UsersPath, "Could not load users", api, notes, pageSize,
			normalize.UserList,
			func(v collection.ViewState, _ string) apiclient.ListQuery {
				return apiclient.ListQuery{
					Search:   strings.TrimSpace(v.Search),
					Ordering: ordering(userOrdering, v),
					Role:     strings.ToLower(categoryFilter(v)),
				}
			}),
	}
}

func (s *UserService) SetPageSize(n int) {
	s.list.setPageSize(n)
}

func (s *UserService) View(ctx context.Context, v Viewer) (*UserListView, error) {
	return s.list.load(ctx, v, nil)
}

// Update 用户列表没有额外过滤条件，Filter 被忽略
func (s *UserService) Update(ctx context.Context, v Viewer, in RemoteInput) (*UserListView, error) {
	in.Filter = nil
	return s.list.load(ctx, v, func(st *remoteState[model.UserRow]) {
		applyInput(st, in, strings.TrimSpace)
	})
}

func (s *UserService) Drop(sessionID string) {
	s.list.drop(sessionID)
}

func (s *UserService) EvictIdle(maxIdle time.Duration) int {
	return s.list.evictIdle(maxIdle)
}
