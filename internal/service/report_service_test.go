package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportPage(n, count int) apiclient.ListResult {
	records := make([]model.RawRecord, n)
	for i := range records {
		records[i] = model.RawRecord{
			"id":          i + 1,
			"question":    "Which nerve innervates the maxillary molars?",
			"module":      "Anatomy",
			"status":      "pending",
			"reported_by": map[string]interface{}{"username": "student1"},
		}
	}
	return apiclient.ListResult{Records: records, Count: count}
}

func TestReports_QueryMirrorsViewState(t *testing.T) {
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		return reportPage(10, 42), nil
	}
	svc := NewReportService(api, NewNotificationService(time.Minute), 10)
	ctx := context.Background()
	v := newViewer("admin")

	view, err := svc.View(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalPages)
	assert.Equal(t, 42, view.TotalCount)
	assert.Equal(t, "student1", view.Items[0].ReportedBy)
	assert.Equal(t, apiclient.ListQuery{Page: 1, PageSize: 10, Ordering: "-created_at"}, api.lastQuery())

	_, err = svc.Update(ctx, v, RemoteInput{
		ViewInput: collection.ViewInput{
			Search:   ptr(" molar "),
			Category: ptr("Anatomy"),
			Sort:     ptr(collection.SortByScore),
		},
		Filter: ptr("Pending"),
	})
	require.NoError(t, err)
	assert.Equal(t, apiclient.ListQuery{
		Page: 1, PageSize: 10, Search: "molar", Ordering: "-report_count", Status: "pending", Module: "Anatomy",
	}, api.lastQuery())

	view, err = svc.Update(ctx, v, RemoteInput{ViewInput: collection.ViewInput{Page: ptr(3)}, Filter: ptr("all")})
	require.NoError(t, err)
	assert.Equal(t, 3, api.lastQuery().Page)
	assert.Empty(t, api.lastQuery().Status)
	assert.Equal(t, 3, view.View.Page)
}

func TestReports_InvalidStatusFilter(t *testing.T) {
	svc := NewReportService(&fakeUpstream{}, NewNotificationService(time.Minute), 10)
	_, err := svc.Update(context.Background(), newViewer("admin"), RemoteInput{Filter: ptr("archived")})
	assert.ErrorIs(t, err, util.ErrInvalidViewInput)
}

func TestReports_NetworkErrorKeepsPage(t *testing.T) {
	fail := false
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		if fail {
			return apiclient.ListResult{}, util.ErrUpstream
		}
		return reportPage(10, 42), nil
	}
	notes := NewNotificationService(time.Minute)
	svc := NewReportService(api, notes, 10)
	ctx := context.Background()
	v := newViewer("admin")

	_, err := svc.View(ctx, v)
	require.NoError(t, err)

	fail = true
	view, err := svc.Update(ctx, v, RemoteInput{ViewInput: collection.ViewInput{Page: ptr(2)}})
	require.NoError(t, err)
	assert.NotEmpty(t, view.Error)
	assert.Len(t, view.Items, 10)
	assert.Len(t, notes.List(v.Session.ID), 1)
}

func TestReports_FailedUpdateKeepsViewState(t *testing.T) {
	fail := false
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		if fail {
			return apiclient.ListResult{}, util.ErrUpstream
		}
		return reportPage(10, 42), nil
	}
	svc := NewReportService(api, NewNotificationService(time.Minute), 10)
	ctx := context.Background()
	v := newViewer("admin")

	_, err := svc.View(ctx, v)
	require.NoError(t, err)

	fail = true
	view, err := svc.Update(ctx, v, RemoteInput{
		ViewInput: collection.ViewInput{Search: ptr("molar"), Page: ptr(3)},
		Filter:    ptr("resolved"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, view.Error)
	assert.Empty(t, view.View.Search)
	assert.Equal(t, 1, view.View.Page)
	assert.Empty(t, view.Filter)
	assert.Equal(t, 1, view.Page.Page)
	assert.Equal(t, 42, view.TotalCount)

	fail = false
	_, err = svc.View(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, apiclient.ListQuery{Page: 1, PageSize: 10, Ordering: "-created_at"}, api.lastQuery())
}

func TestReports_StaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeUpstream{}
	api.listFn = func(call int, _ string, q apiclient.ListQuery) (apiclient.ListResult, error) {
		if call == 1 {
			close(started)
			<-release
			return reportPage(1, 1), nil
		}
		return reportPage(10, 30), nil
	}
	svc := NewReportService(api, NewNotificationService(time.Minute), 10)
	ctx := context.Background()
	v := newViewer("admin")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Update(ctx, v, RemoteInput{ViewInput: collection.ViewInput{Search: ptr("old")}})
	}()
	<-started

	_, err := svc.Update(ctx, v, RemoteInput{ViewInput: collection.ViewInput{Search: ptr("new")}})
	require.NoError(t, err)
	close(release)
	wg.Wait()

	view, err := svc.Update(ctx, v, RemoteInput{})
	require.NoError(t, err)
	assert.Equal(t, "new", view.View.Search)
	assert.Equal(t, 30, view.TotalCount)
}

func TestReports_Resolve(t *testing.T) {
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		return reportPage(3, 3), nil
	}
	api.doFn = func(method, path string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"id": 2, "status": "resolved"}, nil
	}
	svc := NewReportService(api, NewNotificationService(time.Minute), 10)
	ctx := context.Background()
	v := newViewer("admin")

	_, err := svc.View(ctx, v)
	require.NoError(t, err)

	view, err := svc.Resolve(ctx, v, "2", model.ReportResolved)
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.Equal(t, http.MethodPatch, api.calls[0].Method)
	assert.Equal(t, "/admin/reports/2/", api.calls[0].Path)
	assert.Equal(t, model.ReportResolved, view.Items[1].Status)
	assert.Equal(t, model.ReportPending, view.Items[0].Status)

	_, err = svc.Resolve(ctx, v, "2", model.ReportStatus("archived"))
	assert.ErrorIs(t, err, util.ErrInvalidViewInput)
}

func TestUsers_RoleCategory(t *testing.T) {
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		return apiclient.ListResult{Records: []model.RawRecord{
			{"id": 1, "full_name": "Dr. Ada", "email": "ada@example.com", "is_staff": true},
			{"id": 2, "username": "sam", "role": "student"},
		}}, nil
	}
	svc := NewUserService(api, NewNotificationService(time.Minute), 10)
	ctx := context.Background()
	v := newViewer("admin")

	view, err := svc.Update(ctx, v, RemoteInput{ViewInput: collection.ViewInput{
		Category: ptr("Admin"),
		Sort:     ptr(collection.SortByTitle),
	}})
	require.NoError(t, err)
	assert.Equal(t, apiclient.ListQuery{Page: 1, PageSize: 10, Ordering: "-full_name", Role: "admin"}, api.lastQuery())
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, model.Admin, view.Items[0].Role)
	assert.Equal(t, "sam", view.Items[1].Name)
}
