package models

import "time"

// Credential holds one encrypted API secret per LLM backend.
type Credential struct {
	Backend   string    `gorm:"type:varchar(32);primaryKey" json:"backend"`
	Secret    string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
