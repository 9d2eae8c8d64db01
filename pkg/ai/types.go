package ai

import (
	"context"
	"errors"
)

// ContentKind distinguishes inline text submissions from image submissions.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

var (
	// ErrEmptyResponse indicates the model replied without any feedback text.
	ErrEmptyResponse = errors.New("model returned no feedback")
	// ErrRateLimited indicates the provider rejected the request because of rate limits.
	ErrRateLimited = errors.New("feedback service rate limited")
	// ErrInvalidInput indicates the review request carried no usable content.
	ErrInvalidInput = errors.New("review input has no content")
)

// ReviewInput is the single exchange sent to the feedback model.
// Exactly one of Text or Image is used, selected by Kind.
type ReviewInput struct {
	Kind      ContentKind
	FileName  string
	Text      string
	Image     []byte
	ImageMIME string
}

// ReviewResult is the model's natural-language feedback.
type ReviewResult struct {
	Feedback         string `json:"feedback"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Reviewer describes a language model able to review a student's assignment.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput) (ReviewResult, error)
}
