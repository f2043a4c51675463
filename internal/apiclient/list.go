package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/util"
)

// ListQuery 服务端过滤排序分页参数，零值字段不发送
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
	Status   string
	Module   string
	Role     string
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("ordering", q.Ordering)
	set("status", q.Status)
	set("module", q.Module)
	set("role", q.Role)
	return v
}

// ListResult 列表响应；裸数组响应的 Count 等于记录数
type ListResult struct {
	Records []model.RawRecord
	Count   int
}

type envelope struct {
	Results []interface{} `json:"results"`
	Data    []interface{} `json:"data"`
	Count   json.Number   `json:"count"`
}

// List 兼容裸数组和 {results, count} 两种列表响应
func (c *Client) List(ctx context.Context, sess TokenSource, path string, q ListQuery) (ListResult, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, sess, http.MethodGet, path, q.Values(), nil, &raw); err != nil {
		return ListResult{}, err
	}
	return parseList(raw)
}

func parseList(raw json.RawMessage) (ListResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ListResult{Records: []model.RawRecord{}}, nil
	}

	switch trimmed[0] {
	case '[':
		var records []interface{}
		if err := decode(trimmed, &records); err != nil {
			return ListResult{}, fmt.Errorf("%w: decode list: %v", util.ErrUpstream, err)
		}
		return ListResult{Records: compact(records), Count: len(records)}, nil
	case '{':
		var env envelope
		if err := decode(trimmed, &env); err != nil {
			return ListResult{}, fmt.Errorf("%w: decode envelope: %v", util.ErrUpstream, err)
		}
		items := env.Results
		if items == nil {
			items = env.Data
		}
		records := compact(items)
		count := len(records)
		if n, err := env.Count.Int64(); err == nil && int(n) > count {
			count = int(n)
		}
		return ListResult{Records: records, Count: count}, nil
	}
	return ListResult{}, fmt.Errorf("%w: unexpected list payload", util.ErrUpstream)
}

// compact 非对象元素替换为空记录，由规范化层补齐默认值
func compact(items []interface{}) []model.RawRecord {
	out := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			obj = map[string]interface{}{}
		}
		out = append(out, model.RawRecord(obj))
	}
	return out
}
