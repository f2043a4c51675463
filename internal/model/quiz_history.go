package model

// swagger:model QuizHistoryEntry
type QuizHistoryEntry struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	Modules         []string `json:"modules"`
	Score           float64  `json:"score"`
	TotalQuestions  float64  `json:"totalQuestions"`
	CorrectAnswers  float64  `json:"correctAnswers"`
	DurationMinutes float64  `json:"durationMinutes"`
	Favorite        bool     `json:"favorite"`
	Recent          bool     `json:"recent"`
}

// QuizHistoryStats 学习统计面板
type QuizHistoryStats struct {
	Total        int            `json:"total"`
	Favorites    int            `json:"favorites"`
	AverageScore float64        `json:"averageScore"`
	BestScore    float64        `json:"bestScore"`
	TotalMinutes float64        `json:"totalMinutes"`
	ByModule     map[string]int `json:"byModule"`
}

// SampleQuizHistory 演示账户的测验历史种子数据
func SampleQuizHistory() []RawRecord {
	return []RawRecord{
		{"id": 1001, "title": "Dental Anatomy Fundamentals", "date": "2024-03-18", "modules": []interface{}{"Anatomy"}, "score": 85, "totalQuestions": 20, "correctAnswers": 17, "duration": 24, "favorite": true, "recent": true},
		{"id": 1002, "title": "Periodontology Review", "date": "2024-03-16", "modules": []interface{}{"Periodontics"}, "score": 78, "totalQuestions": 25, "correctAnswers": 19, "duration": 31, "favorite": false, "recent": true},
		{"id": 1003, "title": "Endodontics Practice", "date": "2024-03-14", "modules": []interface{}{"Endodontics"}, "score": 92, "totalQuestions": 25, "correctAnswers": 23, "duration": 28, "favorite": true, "recent": true},
		{"id": 1004, "title": "Oral Pathology Quiz", "date": "2024-03-10", "modules": []interface{}{"Pathology"}, "score": 73, "totalQuestions": 30, "correctAnswers": 22, "duration": 40, "favorite": false, "recent": false},
		{"id": 1005, "title": "Prosthodontics Essentials", "date": "2024-03-08", "modules": []interface{}{"Prosthodontics"}, "score": 88, "totalQuestions": 25, "correctAnswers": 22, "duration": 27, "favorite": true, "recent": false},
		{"id": 1006, "title": "Orthodontic Principles", "date": "2024-03-05", "modules": []interface{}{"Orthodontics"}, "score": 81, "totalQuestions": 20, "correctAnswers": 16, "duration": 22, "favorite": false, "recent": false},
		{"id": 1007, "title": "Dental Materials Science", "date": "2024-03-02", "modules": []interface{}{"Materials", "General"}, "score": 76, "totalQuestions": 25, "correctAnswers": 19, "duration": 35, "favorite": false, "recent": false},
		{"id": 1008, "title": "Pediatric Dentistry Cases", "date": "2024-02-27", "modules": []interface{}{"Pediatrics"}, "score": 84, "totalQuestions": 25, "correctAnswers": 21, "duration": 30, "favorite": false, "recent": false},
	}
}
