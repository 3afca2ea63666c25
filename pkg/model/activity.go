package model

import "time"

// ActivityLog rows are append-only; only Note is ever updated.
type ActivityLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        *int64    `gorm:"index" json:"user_id"`
	Action        string    `gorm:"type:varchar(64);not null;index" json:"action"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	TableModified *string   `gorm:"type:varchar(64)" json:"table_modified"`
	RecordID      *int64    `gorm:"index" json:"record_id"`
	FieldModified *string   `gorm:"type:varchar(64)" json:"field_modified"`
	OldValue      *string   `gorm:"type:text" json:"old_value"`
	NewValue      *string   `gorm:"type:text" json:"new_value"`
	Note          *string   `gorm:"type:text" json:"note"`
	Timestamp     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (*ActivityLog) TableName() string { return "activity_logs" }
