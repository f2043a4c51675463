package collection

import "strings"

// Filter 返回满足全部启用条件的记录（新切片）。
// 条件按开销从低到高依次判断：标记、分类、标题文本。
func Filter[T any](items []T, acc Accessors[T], c Criteria) []T {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	category := strings.TrimSpace(c.Category)
	categoryActive := category != "" && category != AllCategories

	var flag func(T) bool
	if c.Flag != "" && c.Flag != FlagAll {
		flag = acc.Flags[c.Flag]
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if flag != nil && !flag(item) {
			continue
		}
		if categoryActive && !hasTag(acc, item, category) {
			continue
		}
		if search != "" && !titleMatches(acc, item, search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func hasTag[T any](acc Accessors[T], item T, category string) bool {
	if acc.Tags == nil {
		return false
	}
	for _, tag := range acc.Tags(item) {
		if tag == category {
			return true
		}
	}
	return false
}

// titleMatches 标题缺失视为不匹配
func titleMatches[T any](acc Accessors[T], item T, search string) bool {
	if acc.Title == nil {
		return false
	}
	title := acc.Title(item)
	if title == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), search)
}
