package service

import (
	"toothquest_portal/internal/collection"
	"toothquest_portal/internal/model"
)

var historyAccessors = collection.Accessors[model.QuizHistoryEntry]{
	Title: func(e model.QuizHistoryEntry) string { return e.Title },
	Date:  func(e model.QuizHistoryEntry) string { return e.Date },
	Tags:  func(e model.QuizHistoryEntry) []string { return e.Modules },
	Score: func(e model.QuizHistoryEntry) float64 { return e.Score },
	Flags: map[collection.FlagMode]func(model.QuizHistoryEntry) bool{
		collection.FlagRecent:    func(e model.QuizHistoryEntry) bool { return e.Recent },
		collection.FlagFavorites: func(e model.QuizHistoryEntry) bool { return e.Favorite },
	},
}

// 服务端排序字段
var reportOrdering = map[collection.SortKey]string{
	collection.SortByDate:  "created_at",
	collection.SortByScore: "report_count",
	collection.SortByTitle: "question",
}

var userOrdering = map[collection.SortKey]string{
	collection.SortByDate:  "date_joined",
	collection.SortByScore: "average_score",
	collection.SortByTitle: "full_name",
}

func ordering(fields map[collection.SortKey]string, v collection.ViewState) string {
	field, ok := fields[v.SortKey]
	if !ok {
		return ""
	}
	if v.Direction == collection.Descending {
		return "-" + field
	}
	return field
}
