package model

import (
	"time"

	"github.com/scienceol/chemtrack/pkg/common/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();uniqueIndex;not null" json:"uuid"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	b.Touch()
	return nil
}

func (b *BaseModel) BeforeUpdate(*gorm.DB) error {
	b.UpdatedAt = time.Now()
	return nil
}

// Touch fills the generated columns; the in-memory store calls it directly.
func (b *BaseModel) Touch() {
	now := time.Now()
	if b.UUID.IsNil() {
		b.UUID = uuid.NewV4()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func (b BaseModel) GetID() int64 {
	return b.ID
}
