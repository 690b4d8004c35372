package models

import (
	"time"
	"unicode/utf8"
)

const (
	JobDescriptionPreviewLen = 100
	ResultPreviewLen         = 200
	TruncationMarker         = "..."
)

// Analysis is one persisted submission. Rows are never updated after insert.
type Analysis struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id,omitempty"`
	JobDescription string    `gorm:"type:text;not null" json:"job_description"`
	AnalysisType   string    `gorm:"type:varchar(32);not null" json:"analysis_type"`
	Result         string    `gorm:"type:text" json:"result"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// AnalysisSummary is the list-view projection of an Analysis.
type AnalysisSummary struct {
	ID             uint      `json:"id"`
	JobDescription string    `json:"job_description"`
	AnalysisType   string    `json:"analysis_type"`
	Result         string    `json:"result"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *Analysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:             a.ID,
		JobDescription: Truncate(a.JobDescription, JobDescriptionPreviewLen),
		AnalysisType:   a.AnalysisType,
		Result:         Truncate(a.Result, ResultPreviewLen),
		CreatedAt:      a.CreatedAt,
	}
}

// Truncate keeps the first limit characters of s and appends TruncationMarker
// when anything was cut.
func Truncate(s string, limit int) string {
	if limit < 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + TruncationMarker
}

func Summaries(analyses []Analysis) []AnalysisSummary {
	out := make([]AnalysisSummary, 0, len(analyses))
	for i := range analyses {
		out = append(out, analyses[i].Summary())
	}
	return out
}

type AnalysisStats struct {
	Total      int64            `json:"total"`
	ByType     map[string]int64 `json:"by_type"`
	Recent     int64            `json:"recent"`
	WindowDays int              `json:"window_days"`
}
