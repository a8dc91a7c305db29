package models

import "time"

// Source types understood by the crawler.
const (
	SourceTypeRSS = "rss"
	SourceTypeWeb = "web"
	SourceTypeAPI = "api"
)

// Source defines a feed to ingest. Every source belongs to exactly one
// industry bucket; custom category membership is kept in CategorySource.
type Source struct {
	ID            string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name          string     `json:"name"`
	URL           string     `gorm:"uniqueIndex" json:"url"`
	Type          string     `gorm:"default:rss" json:"type"`
	Industry      string     `gorm:"index" json:"industry"`
	Enabled       bool       `gorm:"default:true" json:"enabled"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	ErrorCount    int        `gorm:"default:0" json:"error_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
