package service

import (
	"context"
	"errors"
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

func newHistoryService(api *fakeUpstream, store HistoryStore) (*QuizHistoryService, *NotificationService) {
	notes := NewNotificationService(time.Minute)
	return NewQuizHistoryService(api, store, notes, 10), notes
}

func ptr[T any](v T) *T { return &v }

func TestHistory_FavoritesFilter(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	svc, _ := newHistoryService(api, nil)
	v := newViewer("s1")

	view, err := svc.Update(context.Background(), v, collection.ViewInput{Flag: ptr(collection.FlagFavorites)})
	require.NoError(t, err)

	assert.Equal(t, []string{"1001", "1003", "1005"}, historyIDs(view))
	assert.Equal(t, 1, view.TotalPages)
}

func TestHistory_SearchIsCaseInsensitive(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	svc, _ := newHistoryService(api, nil)

	view, err := svc.Update(context.Background(), newViewer("s1"), collection.ViewInput{Search: ptr("endodontics")})
	require.NoError(t, err)
	assert.Equal(t, []string{"1003"}, historyIDs(view))
}

func TestHistory_ScoreSortToggle(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	svc, _ := newHistoryService(api, nil)
	ctx := context.Background()
	v := newViewer("s1")

	view, err := svc.Update(ctx, v, collection.ViewInput{Sort: ptr(collection.SortByScore)})
	require.NoError(t, err)
	assert.Equal(t, collection.Descending, view.View.Direction)
	assert.Equal(t, "1003", view.Items[0].ID)

	view, err = svc.Update(ctx, v, collection.ViewInput{Sort: ptr(collection.SortByScore)})
	require.NoError(t, err)
	assert.Equal(t, collection.Ascending, view.View.Direction)
	require.Len(t, view.Items, 8)
	assert.Equal(t, "1004", view.Items[0].ID)
	assert.Equal(t, "1003", view.Items[7].ID)
}

func TestHistory_UnparseableScoreSortsLast(t *testing.T) {
	records := append(model.SampleQuizHistory(), model.RawRecord{"id": 2001, "title": "Broken", "score": "N/A"})
	api := &fakeUpstream{listFn: listOf(records)}
	svc, _ := newHistoryService(api, nil)

	view, err := svc.Update(context.Background(), newViewer("s1"), collection.ViewInput{Sort: ptr(collection.SortByScore)})
	require.NoError(t, err)
	require.Len(t, view.Items, 9)
	last := view.Items[8]
	assert.Equal(t, "2001", last.ID)
	assert.Equal(t, float64(0), last.Score)
	assert.Equal(t, []string{model.DefaultCategory}, last.Modules)
}

func TestHistory_Pagination(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(manyHistory(25))}
	svc, _ := newHistoryService(api, nil)
	ctx := context.Background()
	v := newViewer("s1")

	view, err := svc.Update(ctx, v, collection.ViewInput{Page: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, 25, view.TotalCount)
	assert.Len(t, view.Items, 5)

	view, err = svc.Update(ctx, v, collection.ViewInput{Category: ptr("Anatomy")})
	require.NoError(t, err)
	assert.Equal(t, 1, view.View.Page)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)

	view, err = svc.Update(ctx, v, collection.ViewInput{Category: ptr(collection.AllCategories), Page: ptr(9)})
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestHistory_MountReadsPersistedBlobOnce(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(manyHistory(3))}
	store := newFakeHistoryStore()
	v := newViewer("s1")
	store.blobs[v.UserKey] = model.SampleQuizHistory()
	svc, _ := newHistoryService(api, store)
	ctx := context.Background()

	view, err := svc.View(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalCount)

	_, err = svc.View(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads)
	assert.Equal(t, 0, api.listCalls())
	assert.Equal(t, []string{"All", "Anatomy", "Endodontics", "General", "Materials", "Orthodontics", "Pathology", "Pediatrics", "Periodontics", "Prosthodontics"}, view.Categories)
}

func TestHistory_MountFallsBackToUpstream(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	store := newFakeHistoryStore()
	store.readErr = errors.New("db down")
	svc, _ := newHistoryService(api, store)

	view, err := svc.View(context.Background(), newViewer("s1"))
	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalCount)
	assert.Equal(t, 1, api.listCalls())
}

func TestHistory_RefreshFailureKeepsStaleState(t *testing.T) {
	fail := false
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		if fail {
			return apiclient.ListResult{}, util.ErrUpstream
		}
		return apiclient.ListResult{Records: manyHistory(25), Count: 25}, nil
	}
	svc, notes := newHistoryService(api, nil)
	ctx := context.Background()
	v := newViewer("s1")

	_, err := svc.Update(ctx, v, collection.ViewInput{Page: ptr(2)})
	require.NoError(t, err)

	fail = true
	view, err := svc.Refresh(ctx, v)
	require.NoError(t, err)
	assert.NotEmpty(t, view.Error)
	assert.Equal(t, 2, view.View.Page)
	assert.Equal(t, 25, view.TotalCount)

	list := notes.List(v.Session.ID)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotifyError, list[0].Level)
}

func TestHistory_RefreshReplacesBaseAndResetsPage(t *testing.T) {
	api := &fakeUpstream{}
	api.listFn = func(call int, _ string, _ apiclient.ListQuery) (apiclient.ListResult, error) {
		if call == 1 {
			return apiclient.ListResult{Records: manyHistory(25)}, nil
		}
		return apiclient.ListResult{Records: manyHistory(12)}, nil
	}
	svc, _ := newHistoryService(api, nil)
	ctx := context.Background()
	v := newViewer("s1")

	_, err := svc.Update(ctx, v, collection.ViewInput{Page: ptr(3)})
	require.NoError(t, err)

	view, err := svc.Refresh(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 1, view.View.Page)
	assert.Equal(t, 12, view.TotalCount)
}

func TestHistory_StaleRefreshIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeUpstream{}
	api.listFn = func(call int, _ string, _ apiclient.ListQuery) (apiclient.ListResult, error) {
		if call == 1 {
			close(started)
			<-release
			return apiclient.ListResult{Records: manyHistory(3)}, nil
		}
		return apiclient.ListResult{Records: manyHistory(7)}, nil
	}
	svc, _ := newHistoryService(api, nil)
	ctx := context.Background()
	v := newViewer("s1")

	var wg sync.WaitGroup
	var slow *HistoryView
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow, _ = svc.Refresh(ctx, v)
	}()
	<-started

	fast, err := svc.Refresh(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 7, fast.TotalCount)

	close(release)
	wg.Wait()
	require.NotNil(t, slow)
	assert.Equal(t, 7, slow.TotalCount, "older response must not overwrite newer data")

	view, err := svc.View(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 7, view.TotalCount)
}

func TestHistory_SessionExpiredPropagates(t *testing.T) {
	api := &fakeUpstream{}
	api.listFn = func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		return apiclient.ListResult{}, util.ErrSessionExpired
	}
	svc, notes := newHistoryService(api, nil)
	v := newViewer("s1")

	_, err := svc.View(context.Background(), v)
	assert.ErrorIs(t, err, util.ErrSessionExpired)
	assert.Empty(t, notes.List(v.Session.ID))
}

func TestHistory_ToggleFavoriteAndRemove(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	store := newFakeHistoryStore()
	svc, _ := newHistoryService(api, store)
	ctx := context.Background()
	v := newViewer("s1")

	view, err := svc.ToggleFavorite(ctx, v, "1002")
	require.NoError(t, err)
	assert.Equal(t, 1, store.writes)
	for _, e := range view.Items {
		if e.ID == "1002" {
			assert.True(t, e.Favorite)
		}
	}

	view, err = svc.Remove(ctx, v, "1004")
	require.NoError(t, err)
	assert.Equal(t, 7, view.TotalCount)
	assert.Len(t, store.blobs[v.UserKey], 7)

	_, err = svc.Remove(ctx, v, "9999")
	assert.ErrorIs(t, err, util.ErrRecordNotFound)
}

func TestHistory_ImportReplacesBase(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(manyHistory(2))}
	store := newFakeHistoryStore()
	svc, _ := newHistoryService(api, store)
	ctx := context.Background()
	v := newViewer("s1")

	view, err := svc.Import(ctx, v, model.SampleQuizHistory())
	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalCount)
	assert.Len(t, store.blobs[v.UserKey], 8)
	assert.Equal(t, 0, api.listCalls())

	_, err = NewQuizHistoryService(api, nil, NewNotificationService(0), 10).Import(ctx, v, nil)
	assert.Error(t, err)
}

func TestHistory_Stats(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	svc, _ := newHistoryService(api, nil)

	stats, err := svc.Stats(context.Background(), newViewer("s1"))
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 3, stats.Favorites)
	assert.Equal(t, float64(92), stats.BestScore)
	assert.InDelta(t, 82.125, stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.ByModule["General"])
	assert.Equal(t, float64(237), stats.TotalMinutes)
}

func TestHistory_ScreensAreIsolatedPerSession(t *testing.T) {
	api := &fakeUpstream{listFn: listOf(model.SampleQuizHistory())}
	svc, _ := newHistoryService(api, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, newViewer("a"), collection.ViewInput{Search: ptr("endo")})
	require.NoError(t, err)

	view, err := svc.View(ctx, newViewer("b"))
	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalCount)

	svc.Drop("a")
	assert.Equal(t, 1, svc.screens.len())
}
