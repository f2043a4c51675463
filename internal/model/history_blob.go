package model

import "gorm.io/datatypes"

// HistoryBlob 按用户持久化的测验历史 JSON，页面挂载时只读取一次
type HistoryBlob struct {
	BaseModel
	UserKey string         `gorm:"size:191;uniqueIndex;not null" json:"userKey"`
	Records datatypes.JSON `gorm:"type:json" json:"records"`
}

func (HistoryBlob) TableName() string {
	return "quiz_history_blobs"
}
