package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a normalized feed item. The ID is a stable hash of the
// canonical URL (or the title when the item carries no link), so
// re-ingesting the same item always lands on the same row.
type Article struct {
	ID          string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title       string     `json:"title"`
	URL         string     `gorm:"uniqueIndex" json:"url"`
	Content     string     `gorm:"type:text" json:"content"`
	PublishedAt time.Time  `gorm:"index" json:"published_at"`
	SourceName  string     `gorm:"index" json:"source_name"`
	Industry    string     `gorm:"index" json:"industry"`
	Archived    bool       `gorm:"default:false;index" json:"archived"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ArticleID derives the deterministic article id from the canonical link,
// falling back to the title for items without one.
func ArticleID(link, title string) string {
	key := link
	if key == "" {
		key = title
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
