package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event types recorded in the analytics log.
const (
	EventGenerate = "generate"
	EventView     = "view"
	EventCopy     = "copy"
)

// Column limits for client metadata.
const (
	MaxIPAddressLength = 45
	MaxUserAgentLength = 500
)

// AnalyticsEvent is an append-only analytics log entry.
type AnalyticsEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	EventType string            `gorm:"size:50;not null;index" json:"event_type"`
	ContentID *uint             `gorm:"index" json:"content_id"`
	ConceptID *uint             `gorm:"index" json:"concept_id"`
	EventData datatypes.JSONMap `json:"event_data"`
	IPAddress string            `gorm:"size:45" json:"ip_address"`
	UserAgent string            `gorm:"type:text" json:"user_agent"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by existing deployments.
func (AnalyticsEvent) TableName() string { return "analytics_event" }

// ClientMeta identifies the requesting client on analytics events.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}
