package model

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// swagger:model QuestionReport
// QuestionReport 学生对题目的举报
type QuestionReport struct {
	ID          string       `json:"id"`
	QuestionID  string       `json:"questionId"`
	Question    string       `json:"question"`
	Modules     []string     `json:"modules"`
	Reason      string       `json:"reason"`
	Status      ReportStatus `json:"status"`
	ReportedBy  string       `json:"reportedBy"`
	ReportCount float64      `json:"reportCount"`
	CreatedAt   string       `json:"createdAt"`
}
