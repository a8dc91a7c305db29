package models

import "time"

// TrendInsight is a meta-analysis across several stored reports,
// identifying trends, recurring themes and inflection points over the
// covered period. Rows are immutable once created.
type TrendInsight struct {
	ID                string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	SourceAnalysisIDs StringList `gorm:"type:text" json:"source_analysis_ids"`
	Industry          string     `gorm:"index" json:"industry"`
	DateRangeStart    time.Time  `json:"date_range_start"`
	DateRangeEnd      time.Time  `json:"date_range_end"`
	ExecutiveSummary  string     `gorm:"type:text" json:"executive_summary"`
	MarkdownReport    string     `gorm:"type:text" json:"markdown_report"`
	LLMBackend        string     `json:"llm_backend"`
	LLMModel          string     `json:"llm_model"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (TrendInsight) TableName() string {
	return "trend_insights"
}
