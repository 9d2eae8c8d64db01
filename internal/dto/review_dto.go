package dto

import "github.com/noah-isme/gema-review-api/pkg/ai"

// ReviewUpload is a decoded upload handed to the submission pipeline.
type ReviewUpload struct {
	FileName string         `validate:"max=255"`
	Kind     ai.ContentKind `validate:"required,oneof=text image"`
	MIME     string
	Content  []byte
}

// ReviewResponse reports the outcome of one pipeline run.
type ReviewResponse struct {
	State      string   `json:"state"`
	Trail      []string `json:"trail"`
	Kind       string   `json:"kind,omitempty"`
	Score      int      `json:"score"`
	ScoreFound bool     `json:"score_found"`
	Feedback   string   `json:"feedback,omitempty"`
	Model      string   `json:"model,omitempty"`
	Warning    string   `json:"warning,omitempty"`
	DailyUsage int      `json:"daily_usage"`
	Remaining  int      `json:"remaining"`
}
