package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/session"
)

type doCall struct {
	Method string
	Path   string
	Body   interface{}
}

// fakeUpstream 记录调用并返回预设结果
type fakeUpstream struct {
	mu      sync.Mutex
	listFn  func(call int, path string, q apiclient.ListQuery) (apiclient.ListResult, error)
	doFn    func(method, path string, body interface{}) (interface{}, error)
	queries []apiclient.ListQuery
	calls   []doCall
}

func (f *fakeUpstream) List(_ context.Context, _ apiclient.TokenSource, path string, q apiclient.ListQuery) (apiclient.ListResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	call := len(f.queries)
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return apiclient.ListResult{Records: []model.RawRecord{}}, nil
	}
	return fn(call, path, q)
}

func (f *fakeUpstream) Do(_ context.Context, _ apiclient.TokenSource, method, path string, _ url.Values, body, out interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, doCall{Method: method, Path: path, Body: body})
	fn := f.doFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	resp, err := fn(method, path, body)
	if err != nil || out == nil || resp == nil {
		return err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeUpstream) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeUpstream) lastQuery() apiclient.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func listOf(records []model.RawRecord) func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
	return func(int, string, apiclient.ListQuery) (apiclient.ListResult, error) {
		return apiclient.ListResult{Records: records, Count: len(records)}, nil
	}
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]model.RawRecord
	reads   int
	writes  int
	readErr error
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{blobs: map[string][]model.RawRecord{}}
}

func (f *fakeHistoryStore) FindByUserKey(_ context.Context, userKey string) ([]model.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.blobs[userKey], nil
}

func (f *fakeHistoryStore) Upsert(_ context.Context, userKey string, records []model.RawRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.blobs[userKey] = records
	return nil
}

func newViewer(id string) Viewer {
	return Viewer{
		Session: session.NewContext(session.NewMemoryStore(), id, time.Hour),
		UserKey: "user-" + id,
	}
}

func manyHistory(n int) []model.RawRecord {
	out := make([]model.RawRecord, n)
	for i := range out {
		out[i] = model.RawRecord{
			"id":    i + 1,
			"title": fmt.Sprintf("Quiz %02d", i+1),
			"date":  fmt.Sprintf("2024-01-%02d", i+1),
			"score": 50 + i,
		}
	}
	return out
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func historyIDs(v *HistoryView) []string {
	return ids(v.Items, func(e model.QuizHistoryEntry) string { return e.ID })
}
