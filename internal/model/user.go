package model

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model UserRow
// UserRow 管理端用户列表中的一行
type UserRow struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"isActive"`
	Subscription string   `json:"subscription"`
	AverageScore float64  `json:"averageScore"`
	QuizzesTaken float64  `json:"quizzesTaken"`
	DateJoined   string   `json:"dateJoined"`
}
