package model

// RawRecord 上游返回或本地持久化的原始记录，字段形态不可信
type RawRecord map[string]interface{}

// DefaultCategory 缺失分类标签时的默认分类
const DefaultCategory = "General"

type RecordKind string

const (
	KindQuizHistory RecordKind = "quiz_history"
	KindReport      RecordKind = "report"
	KindUser        RecordKind = "user"
)
