package repository

import (
	"context"
	"encoding/json"
	"errors"
	"toothquest_portal/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

// FindByUserKey 没有持久化记录时返回 nil, nil
func (r *HistoryRepository) FindByUserKey(ctx context.Context, userKey string) ([]model.RawRecord, error) {
	var blob model.HistoryBlob
	err := r.DB.WithContext(ctx).Where("user_key = ?", userKey).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeRecords(blob.Records), nil
}

// Upsert 整体替换该用户的历史记录
func (r *HistoryRepository) Upsert(ctx context.Context, userKey string, records []model.RawRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	blob := model.HistoryBlob{UserKey: userKey, Records: datatypes.JSON(raw)}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"records", "updated_at"}),
	}).Create(&blob).Error
}

// DecodeRecords 持久化内容损坏时按空集合处理，单条非对象元素替换为空记录
func DecodeRecords(raw datatypes.JSON) []model.RawRecord {
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []model.RawRecord{}
	}
	out := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			obj = map[string]interface{}{}
		}
		out = append(out, model.RawRecord(obj))
	}
	return out
}
