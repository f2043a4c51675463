package normalize

import (
	"fmt"
	"strings"
	"toothquest_portal/internal/model"
)

func QuizHistory(raw model.RawRecord) model.QuizHistoryEntry {
	return model.QuizHistoryEntry{
		ID:              String(first(raw, "id", "quiz_id", "quizId")),
		Title:           String(first(raw, "title", "quiz_title", "name")),
		Date:            String(first(raw, "date", "completed_at", "completedAt", "created_at")),
		Modules:         Tags(first(raw, "modules", "module")),
		Score:           Number(first(raw, "score", "percentage")),
		TotalQuestions:  Number(first(raw, "totalQuestions", "total_questions")),
		CorrectAnswers:  Number(first(raw, "correctAnswers", "correct_answers")),
		DurationMinutes: Number(first(raw, "duration", "durationMinutes", "duration_minutes")),
		Favorite:        Bool(first(raw, "favorite", "is_favorite", "isFavorite")),
		Recent:          Bool(first(raw, "recent", "is_recent", "isRecent")),
	}
}

func Report(raw model.RawRecord) model.QuestionReport {
	status := model.ReportStatus(strings.ToLower(String(first(raw, "status"))))
	if status == "" {
		status = model.ReportPending
	}
	return model.QuestionReport{
		ID:          String(first(raw, "id")),
		QuestionID:  String(first(raw, "question_id", "questionId")),
		Question:    String(first(raw, "question", "question_text", "questionText", "title")),
		Modules:     Tags(first(raw, "modules", "module")),
		Reason:      String(first(raw, "reason", "description")),
		Status:      status,
		ReportedBy:  reporter(first(raw, "reported_by", "reportedBy", "user")),
		ReportCount: Number(first(raw, "report_count", "reportCount")),
		CreatedAt:   String(first(raw, "created_at", "createdAt", "date")),
	}
}

// reporter 举报人可能是用户名，也可能是嵌套的用户对象
func reporter(v interface{}) string {
	if obj, ok := v.(map[string]interface{}); ok {
		return String(first(model.RawRecord(obj), "username", "full_name", "name", "email"))
	}
	return String(v)
}

func User(raw model.RawRecord) model.UserRow {
	role := model.UserRole(strings.ToLower(String(first(raw, "role"))))
	if role == "" {
		if Bool(first(raw, "is_staff", "isStaff")) {
			role = model.Admin
		} else {
			role = model.Student
		}
	}
	return model.UserRow{
		ID:           String(first(raw, "id")),
		Name:         String(first(raw, "full_name", "fullName", "name", "username")),
		Email:        String(first(raw, "email")),
		Role:         role,
		IsActive:     Bool(first(raw, "is_active", "isActive")),
		Subscription: String(first(raw, "subscription_status", "subscription")),
		AverageScore: Number(first(raw, "average_score", "averageScore")),
		QuizzesTaken: Number(first(raw, "quizzes_taken", "quizzesTaken")),
		DateJoined:   String(first(raw, "date_joined", "dateJoined", "created_at")),
	}
}

// list 逐条规范化，缺失 ID 的记录使用位置 ID，保证集合内唯一
func list[T any](raws []model.RawRecord, kind model.RecordKind, fn func(model.RawRecord) T, id func(*T) *string) []T {
	out := make([]T, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		rec := fn(raw)
		key := id(&rec)
		if *key == "" || seen[*key] {
			*key = fallbackID(kind, i+1, seen)
		}
		seen[*key] = true
		out = append(out, rec)
	}
	return out
}

// fallbackID 位置 ID 与已有 ID 冲突时追加序号
func fallbackID(kind model.RecordKind, pos int, seen map[string]bool) string {
	id := fmt.Sprintf("%s-%d", kind, pos)
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s-%d-%d", kind, pos, n)
	}
	return id
}

func QuizHistoryList(raws []model.RawRecord) []model.QuizHistoryEntry {
	return list(raws, model.KindQuizHistory, QuizHistory, func(r *model.QuizHistoryEntry) *string { return &r.ID })
}

func ReportList(raws []model.RawRecord) []model.QuestionReport {
	return list(raws, model.KindReport, Report, func(r *model.QuestionReport) *string { return &r.ID })
}

func UserList(raws []model.RawRecord) []model.UserRow {
	return list(raws, model.KindUser, User, func(r *model.UserRow) *string { return &r.ID })
}
