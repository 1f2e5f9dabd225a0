package model

import "time"

// Submission kinds. A row carries text, a doodle image, or both.
const (
	KindText   = "text"
	KindDoodle = "doodle"
	KindBoth   = "both"
)

type Submission struct {
	ID             int64     `json:"id"`
	TextContent    string    `json:"text_content,omitempty"`
	DoodleFilename string    `json:"doodle_filename,omitempty"`
	Kind           string    `json:"submission_type"`
	CreatedAt      time.Time `json:"timestamp"`
}

type SubmitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID int64  `json:"submission_id"`
}

type ScryResponse struct {
	Success    bool        `json:"success"`
	Submission *Submission `json:"submission,omitempty"`
	Message    string      `json:"message,omitempty"`
}

type StatsResponse struct {
	TotalSubmissions int `json:"total_submissions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
