package db_models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mibe/pkg/utils"
)

// BaseModel holds the columns every billing table shares. Timestamps are unix
// seconds; the dashboard buckets them in the caller's timezone.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt int64          `gorm:"autoCreateTime"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate keeps a caller supplied id and creation time, which lets
// imported rows retain their original values.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := utils.NowUnixSeconds()
	if b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

func (b *BaseModel) BeforeUpdate(*gorm.DB) error {
	b.UpdatedAt = utils.NowUnixSeconds()
	return nil
}

// Key is the text form stored in company_id and plan_id columns.
func (b BaseModel) Key() string {
	return b.ID.String()
}
