package collection

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var epoch = time.Unix(0, 0).UTC()

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate 解析时间戳，无法解析时返回 Unix 纪元（排序时最早）
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return epoch
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}

// Sort 返回排序后的新切片，排序稳定，相等键保持输入顺序。
// 未知排序键按原顺序返回副本。
func Sort[T any](items []T, acc Accessors[T], key SortKey, dir Direction) []T {
	out := make([]T, len(items))

	cmp := comparator(items, acc, key)
	if cmp == nil {
		copy(out, items)
		return out
	}

	// 对下标排序，预先计算的键始终按原下标访问
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	if dir == Ascending {
		sort.SliceStable(order, func(a, b int) bool { return cmp(order[a], order[b]) < 0 })
	} else {
		sort.SliceStable(order, func(a, b int) bool { return cmp(order[b], order[a]) < 0 })
	}

	for i, idx := range order {
		out[i] = items[idx]
	}
	return out
}

// comparator 预先计算排序键，避免在比较中重复解析时间戳
func comparator[T any](items []T, acc Accessors[T], key SortKey) func(i, j int) int {
	switch key {
	case SortByDate:
		if acc.Date == nil {
			return nil
		}
		keys := make([]int64, len(items))
		for i, item := range items {
			keys[i] = ParseDate(acc.Date(item)).UnixNano()
		}
		return indexed(keys, func(a, b int64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		})
	case SortByScore:
		if acc.Score == nil {
			return nil
		}
		keys := make([]float64, len(items))
		for i, item := range items {
			keys[i] = acc.Score(item)
		}
		return indexed(keys, func(a, b float64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		})
	case SortByTitle:
		if acc.Title == nil {
			return nil
		}
		keys := make([]string, len(items))
		for i, item := range items {
			keys[i] = acc.Title(item)
		}
		col := collate.New(language.English, collate.IgnoreCase)
		return indexed(keys, col.CompareString)
	}
	return nil
}

// indexed 按原始下标比较预先计算的键
func indexed[K any](keys []K, cmp func(a, b K) int) func(i, j int) int {
	return func(i, j int) int { return cmp(keys[i], keys[j]) }
}
