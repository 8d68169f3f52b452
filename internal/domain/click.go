package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClickEvent представляет один клик по отслеживаемой ссылке. Запись
// создается один раз и больше не изменяется.
type ClickEvent struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	LinkID     uuid.UUID `gorm:"type:uuid;column:link_id;not null;index" json:"link_id"`
	IPAddress  string    `gorm:"column:ip_address;size:45;not null" json:"ip_address"`
	UserAgent  string    `gorm:"column:user_agent;type:text;not null" json:"user_agent"`
	Timestamp  time.Time `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
	Country    *string   `gorm:"column:country;size:100" json:"country,omitempty"`
	City       *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	Ref        *string   `gorm:"column:ref;type:text" json:"ref,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`

	// Relationships; clicks go away with their link
	Link *TrackedLink `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"link,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (ClickEvent) TableName() string {
	return "click_events"
}

func (c *ClickEvent) String() string {
	name := c.LinkID.String()
	if c.Link != nil {
		name = c.Link.Name
	}
	return fmt.Sprintf("Click on %s at %s", name, c.Timestamp.Format(time.RFC3339))
}
