package models

import "time"

// CustomCategory groups sources under a user-defined analysis prompt,
// used in place of an industry bucket.
type CustomCategory struct {
	ID           string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name         string    `json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	CustomPrompt string    `gorm:"type:text" json:"custom_prompt"`
	Enabled      bool      `gorm:"default:true" json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	SourceIDs StringList `gorm:"-" json:"source_ids"`
}

// CategorySource is the category<->source join row.
type CategorySource struct {
	CategoryID string `gorm:"type:varchar(64);uniqueIndex:idx_category_source" json:"category_id"`
	SourceID   string `gorm:"type:varchar(64);uniqueIndex:idx_category_source" json:"source_id"`
}

func (CategorySource) TableName() string {
	return "category_sources"
}
