// Package normalize 把形态不可信的原始记录转换为规范结构。
// 任何输入都不会返回错误：缺失或类型错误的字段退化为默认值。
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"toothquest_portal/internal/model"
)

// Number 数值字段：无法解析或非有限值一律为 0
func Number(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Bool 按真值规则转换：nil、false、0、NaN、空串为 false，其余为 true
func Bool(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case float64:
		return b != 0 && !math.IsNaN(b)
	case float32:
		return b != 0 && !math.IsNaN(float64(b))
	case int:
		return b != 0
	case int64:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	default:
		return true
	}
}

// String 标量转字符串，对象和 nil 返回空串
func String(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint:
		return strconv.FormatUint(uint64(s), 10)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Tags 分类标签，结果保证非空
func Tags(v interface{}) []string {
	var tags []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s := String(item); s != "" {
				tags = append(tags, s)
			}
		}
	case []string:
		for _, item := range t {
			if s := strings.TrimSpace(item); s != "" {
				tags = append(tags, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			tags = []string{s}
		}
	}
	if len(tags) == 0 {
		return []string{model.DefaultCategory}
	}
	return tags
}

// first 返回第一个存在且非 nil 的字段
func first(raw model.RawRecord, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
