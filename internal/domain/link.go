package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackedLink связывает постоянный slug с адресом назначения. Адрес можно
// менять, не теряя историю кликов.
type TrackedLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:255;not null;uniqueIndex" json:"slug"`
	TargetURL *string   `gorm:"column:target_url;size:2048" json:"target_url,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (TrackedLink) TableName() string {
	return "tracked_links"
}

// BeforeCreate assigns a random UUID when the caller left it empty.
func (l *TrackedLink) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Destination returns the target URL, or an empty string when none is set.
func (l *TrackedLink) Destination() string {
	if l.TargetURL == nil {
		return ""
	}
	return *l.TargetURL
}

func (l *TrackedLink) String() string {
	return l.Name
}
