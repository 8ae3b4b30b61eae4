package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// Setting is a key/value configuration row. Value is stored as text and
// decoded according to Type.
type Setting struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Key         string            `gorm:"column:key;not null;uniqueIndex"`
	Value       *string           `gorm:"column:value"`
	Type        enums.SettingType `gorm:"column:type;type:setting_type;not null"`
	Description *string           `gorm:"column:description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Setting) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
