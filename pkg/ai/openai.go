package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SystemInstruction sets the reviewer's tone and pins the trailing score token format.
const SystemInstruction = "You are an encouraging, beginner-friendly Python teacher. " +
	"Review the student's assignment, point out what works, and correct mistakes gently with short examples. " +
	"Always end your reply with a final line in the exact format \"Score: X/10\" where X is a whole number from 0 to 10."

var (
	reviewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "review",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of feedback requests sent to the language model",
	}, []string{"model", "kind"})

	reviewFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "review",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed feedback requests",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI reviewer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIReviewer implements Reviewer against the OpenAI chat completion API.
type OpenAIReviewer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIReviewer builds a reviewer using the provided configuration.
func NewOpenAIReviewer(cfg OpenAIConfig) (*OpenAIReviewer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIReviewer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-review-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_reviewer").Logger(),
	}, nil
}

// Review sends one system+user exchange to OpenAI and returns the feedback text.
func (r *OpenAIReviewer) Review(parent context.Context, input ReviewInput) (ReviewResult, error) {
	kind := string(input.Kind)
	ctx, span := r.tracer.Start(parent, "openai.review", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
		attribute.String("review.kind", kind),
	))
	defer span.End()

	userMessage, err := buildUserMessage(input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ReviewResult{}, err
	}

	request := openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemInstruction,
			},
			userMessage,
		},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, request)
	reviewDuration.WithLabelValues(r.cfg.Model, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		return ReviewResult{}, r.fail(span, kind, classifyError(err))
	}

	if len(resp.Choices) == 0 {
		return ReviewResult{}, r.fail(span, kind, ErrEmptyResponse)
	}

	feedback := strings.TrimSpace(resp.Choices[0].Message.Content)
	if feedback == "" {
		return ReviewResult{}, r.fail(span, kind, ErrEmptyResponse)
	}

	r.logger.Debug().
		Str("kind", kind).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("feedback received")

	return ReviewResult{
		Feedback:         feedback,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (r *OpenAIReviewer) fail(span trace.Span, kind string, err error) error {
	reviewFailures.WithLabelValues(r.cfg.Model, kind).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("openai review: %w", err)
}

func buildUserMessage(input ReviewInput) (openai.ChatCompletionMessage, error) {
	switch input.Kind {
	case ContentImage:
		if len(input.Image) == 0 {
			return openai.ChatCompletionMessage{}, ErrInvalidInput
		}
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: "Check this Python assignment from the attached image.",
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    imageDataURL(input.ImageMIME, input.Image),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		}, nil
	default:
		if strings.TrimSpace(input.Text) == "" {
			return openai.ChatCompletionMessage{}, ErrInvalidInput
		}
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Check this Python assignment:\n" + input.Text,
		}, nil
	}
}

func imageDataURL(mime string, payload []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, reqErr.Err)
	}
	return err
}
