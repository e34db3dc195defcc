package models

import (
	"time"

	"gorm.io/datatypes"
)

// GeneratedContent stores one generation request's output. Content fields
// never change after insert; only the counters and their timestamps do.
type GeneratedContent struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	Concept            string                      `gorm:"type:text;not null" json:"concept"` // denormalized concept text
	ConceptID          *uint                       `gorm:"index" json:"concept_id"`
	ImagePrompts       datatypes.JSONSlice[string] `gorm:"not null" json:"image_prompts"`
	ListingTitles      datatypes.JSONSlice[string] `gorm:"not null" json:"listing_titles"`
	ListingTags        datatypes.JSONSlice[string] `gorm:"not null" json:"listing_tags"`
	ListingDescription string                      `gorm:"type:text;not null" json:"listing_description"`
	SocialCaption      string                      `gorm:"type:text;not null" json:"social_caption"`
	CreatedAt          time.Time                   `gorm:"index" json:"created_at"`
	ViewCount          int64                       `gorm:"not null;default:0" json:"view_count"`
	LastViewed         *time.Time                  `json:"last_viewed"`
	CopyCount          int64                       `gorm:"not null;default:0" json:"copy_count"`
	LastCopied         *time.Time                  `json:"last_copied"`
}

// TableName keeps the table name used by existing deployments.
func (GeneratedContent) TableName() string { return "generated_content" }

// ContentDict is the public JSON shape of a generated content row.
type ContentDict struct {
	ID                 uint     `json:"id"`
	Concept            string   `json:"concept"`
	ImagePrompts       []string `json:"image_prompts"`
	ListingTitles      []string `json:"listing_titles"`
	ListingTags        []string `json:"listing_tags"`
	ListingDescription string   `json:"listing_description"`
	SocialCaption      string   `json:"social_caption"`
	CreatedAt          string   `json:"created_at"`
}

// ToDict converts the row for JSON serialization.
func (g *GeneratedContent) ToDict() ContentDict {
	return ContentDict{
		ID:                 g.ID,
		Concept:            g.Concept,
		ImagePrompts:       g.ImagePrompts,
		ListingTitles:      g.ListingTitles,
		ListingTags:        g.ListingTags,
		ListingDescription: g.ListingDescription,
		SocialCaption:      g.SocialCaption,
		CreatedAt:          g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ContentSummary is the compact row used by top-N and recent-activity lists.
type ContentSummary struct {
	ID        uint      `json:"id"`
	Concept   string    `json:"concept"`
	ViewCount int64     `json:"view_count"`
	CopyCount int64     `json:"copy_count"`
	CreatedAt time.Time `json:"created_at"`
}
