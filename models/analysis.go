package models

import "time"

// Analysis types.
const (
	AnalysisTypeComprehensive = "comprehensive"
	AnalysisTypeBrief         = "brief"
)

// Analysis is one intelligence report. Rows are immutable once created.
type Analysis struct {
	ID             string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	ExecutiveBrief string     `gorm:"type:text" json:"executive_brief"`
	MarkdownReport string     `gorm:"type:text" json:"markdown_report"`
	ArticleIDs     StringList `gorm:"type:text" json:"article_ids"`
	Industry       string     `gorm:"index" json:"industry"`
	CreatedAt      time.Time  `json:"created_at"`
	AnalysisType   string     `json:"analysis_type"`
	LLMBackend     string     `json:"llm_backend"`
	LLMModel       string     `json:"llm_model"`
}

func (Analysis) TableName() string {
	return "analyses"
}
