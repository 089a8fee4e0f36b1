package models

import "time"

// AnalysisResult is the outcome of one successful pipeline run.
type AnalysisResult struct {
	Analysis      string        `json:"analysis"`
	Model         string        `json:"-"`
	PromptVersion string        `json:"-"`
	Documents     int           `json:"-"`
	TextChars     int           `json:"-"`
	Duration      time.Duration `json:"-"`
}

// TimelineEvent is one dated entry of the "Case Timeline" section.
type TimelineEvent struct {
	Date    string `json:"date" msgpack:"date"`
	Title   string `json:"title" msgpack:"title"`
	Details string `json:"details" msgpack:"details"`
}

// AnalysisResponse is the wire shape of POST /analyze-pdf/.
// Only Analysis is always present; the rest are opt-in views.
type AnalysisResponse struct {
	Analysis      string          `json:"analysis" msgpack:"analysis"`
	HTML          string          `json:"html,omitempty" msgpack:"html,omitempty"`
	Timeline      []TimelineEvent `json:"timeline,omitempty" msgpack:"timeline,omitempty"`
	Score         string          `json:"score,omitempty" msgpack:"score,omitempty"`
	Justification string          `json:"justification,omitempty" msgpack:"justification,omitempty"`
}
