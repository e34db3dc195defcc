package models

import "time"

// Concept is a unique creative concept and its aggregated usage.
type Concept struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Text        string    `gorm:"size:500;not null;uniqueIndex:uni_concept_text" json:"text"`
	UsageCount  int64     `gorm:"not null;default:1" json:"usage_count"`
	FirstUsed   time.Time `gorm:"not null" json:"first_used"`
	LastUsed    time.Time `gorm:"not null;index" json:"last_used"`
	TotalViews  int64     `gorm:"not null;default:0" json:"total_views"`
	TotalCopies int64     `gorm:"not null;default:0" json:"total_copies"`
}

// TableName keeps the table name used by existing deployments.
func (Concept) TableName() string { return "concept" }
