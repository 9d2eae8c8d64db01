package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/observability"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/internal/session"
	"github.com/noah-isme/gema-review-api/pkg/ai"
	"github.com/noah-isme/gema-review-api/pkg/notify"
	"github.com/noah-isme/gema-review-api/pkg/plagiarism"
	"github.com/noah-isme/gema-review-api/pkg/scoring"
)

// DefaultDailyLimit is the number of completed reviews allowed per session.
const DefaultDailyLimit = 5

var (
	// ErrDailyLimitReached indicates the session used up its daily allowance.
	ErrDailyLimitReached = errors.New("daily review limit reached")
	// ErrDuplicateSubmission indicates the text is too similar to an earlier submission.
	ErrDuplicateSubmission = errors.New("submission is too similar to an earlier submission")
	// ErrFeedbackFailed wraps any failure of the feedback request.
	ErrFeedbackFailed = errors.New("feedback request failed")
	// ErrMissingIdentity indicates the session carries no username.
	ErrMissingIdentity = errors.New("a logged-in username is required")
	// ErrEmptyUpload indicates the uploaded file has no content.
	ErrEmptyUpload = errors.New("uploaded file is empty")
	// ErrUnsupportedUpload indicates the upload is neither readable text nor an image.
	ErrUnsupportedUpload = errors.New("unsupported upload")
	// ErrUploadTooLarge indicates the upload exceeds the configured size limit.
	ErrUploadTooLarge = errors.New("uploaded file is too large")
)

// PipelineState names a stage of the submission pipeline.
type PipelineState string

// Pipeline stages in the order a successful text submission visits them.
const (
	StateIdle           PipelineState = "idle"
	StateUploaded       PipelineState = "uploaded"
	StateDuplicateCheck PipelineState = "duplicate_check"
	StateRequesting     PipelineState = "requesting"
	StateScoring        PipelineState = "scoring"
	StatePersisting     PipelineState = "persisting"
	StateNotifying      PipelineState = "notifying"
	StateDone           PipelineState = "done"
	StateAborted        PipelineState = "aborted"
)

// ReviewConfig tunes the submission pipeline.
type ReviewConfig struct {
	DailyLimit int
	Recipient  string
}

// ReviewDependencies lists the collaborators of the submission pipeline.
type ReviewDependencies struct {
	Repositories repository.Repositories
	Reviewer     ai.Reviewer
	Notifier     notify.Notifier
	Sessions     session.Store
	Checker      plagiarism.Checker
	Validator    *validator.Validate
}

// ReviewService runs uploads through duplicate detection, feedback, scoring and persistence.
type ReviewService interface {
	Submit(ctx context.Context, sess models.Session, upload dto.ReviewUpload) (dto.ReviewResponse, error)
}

type reviewService struct {
	deps   ReviewDependencies
	config ReviewConfig
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewReviewService constructs the submission pipeline.
func NewReviewService(deps ReviewDependencies, cfg ReviewConfig, logger zerolog.Logger) ReviewService {
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = DefaultDailyLimit
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &reviewService{
		deps:   deps,
		config: cfg,
		logger: logger.With().Str("component", "review_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/gema-review-api/internal/service/review"),
	}
}

// pipelineRun records the states one submission passes through.
type pipelineRun struct {
	response dto.ReviewResponse
	span     trace.Span
}

func (r *pipelineRun) enter(state PipelineState) {
	r.response.State = string(state)
	r.response.Trail = append(r.response.Trail, string(state))
	r.span.AddEvent(string(state))
}

func (r *pipelineRun) abort(err error, reason string) (dto.ReviewResponse, error) {
	r.enter(StateAborted)
	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, reason)
	kind := r.response.Kind
	if kind == "" {
		kind = "unknown"
	}
	observability.ReviewOutcomes().WithLabelValues(reason, kind).Inc()
	return r.response, err
}

func (s *reviewService) Submit(ctx context.Context, sess models.Session, upload dto.ReviewUpload) (dto.ReviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.submit")
	defer span.End()

	run := &pipelineRun{span: span}
	run.response.DailyUsage = sess.DailyUsage
	run.response.Remaining = s.remaining(sess.DailyUsage)
	run.enter(StateIdle)

	logger := s.logger.With().Str("username", sess.Username).Str("file", upload.FileName).Logger()

	if sess.DailyUsage >= s.config.DailyLimit {
		logger.Info().Int("usage", sess.DailyUsage).Msg("daily limit reached")
		return run.abort(ErrDailyLimitReached, "limit_reached")
	}

	username := strings.TrimSpace(sess.Username)
	if username == "" {
		return run.abort(ErrMissingIdentity, "invalid")
	}
	if len(upload.Content) == 0 {
		return run.abort(ErrEmptyUpload, "invalid")
	}
	if upload.Kind == ai.ContentText && strings.TrimSpace(string(upload.Content)) == "" {
		return run.abort(ErrEmptyUpload, "invalid")
	}
	if err := s.deps.Validator.Struct(upload); err != nil {
		return run.abort(fmt.Errorf("%w: %v", ErrUnsupportedUpload, err), "invalid")
	}
	if upload.Kind == ai.ContentText && !utf8.Valid(upload.Content) {
		return run.abort(fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedUpload), "invalid")
	}

	run.response.Kind = string(upload.Kind)
	span.SetAttributes(
		attribute.String("review.kind", string(upload.Kind)),
		attribute.Int("review.bytes", len(upload.Content)),
	)
	run.enter(StateUploaded)

	input := ai.ReviewInput{Kind: upload.Kind, FileName: upload.FileName}
	if upload.Kind == ai.ContentText {
		input.Text = string(upload.Content)

		run.enter(StateDuplicateCheck)
		duplicate, err := s.checkDuplicate(ctx, input.Text, logger)
		if err != nil {
			return run.abort(err, "error")
		}
		if duplicate {
			return run.abort(ErrDuplicateSubmission, "duplicate")
		}
	} else {
		input.Image = upload.Content
		input.ImageMIME = upload.MIME
	}

	run.enter(StateRequesting)
	result, err := s.deps.Reviewer.Review(ctx, input)
	if err != nil {
		logger.Error().Err(err).Msg("feedback request failed")
		return run.abort(fmt.Errorf("%w: %w", ErrFeedbackFailed, err), "feedback_failed")
	}
	run.response.Feedback = result.Feedback
	run.response.Model = result.Model

	run.enter(StateScoring)
	score, found := scoring.ExtractWithFound(result.Feedback)
	run.response.Score = score
	run.response.ScoreFound = found
	if !found {
		logger.Warn().Int("score", score).Msg("no score token in feedback, using fallback")
	}

	run.enter(StatePersisting)
	if err := s.persist(ctx, username, score, input); err != nil {
		logger.Error().Err(err).Msg("failed to persist review")
		return run.abort(err, "error")
	}
	observability.ReviewScores().Observe(float64(score))

	run.enter(StateNotifying)
	if err := s.sendNotification(ctx, username, upload.FileName, score, result.Feedback); err != nil {
		observability.NotificationFailures().Inc()
		logger.Warn().Err(err).Msg("result notification failed")
		run.response.Warning = fmt.Sprintf("review saved but the notification could not be sent: %v", err)
	}

	usage, err := s.deps.Sessions.IncrementUsage(ctx, sess.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record session usage")
		usage = sess.DailyUsage + 1
	}
	run.response.DailyUsage = usage
	run.response.Remaining = s.remaining(usage)
	run.enter(StateDone)

	span.SetAttributes(attribute.Int("review.score", score))
	observability.ReviewOutcomes().WithLabelValues("done", run.response.Kind).Inc()
	logger.Info().Int("score", score).Bool("score_found", found).Int("usage", usage).Msg("review completed")

	return run.response, nil
}

func (s *reviewService) checkDuplicate(ctx context.Context, text string, logger zerolog.Logger) (bool, error) {
	submissions, err := s.deps.Repositories.Submissions.List(ctx)
	if err != nil {
		return false, fmt.Errorf("load submissions: %w", err)
	}

	corpus := make([]string, len(submissions))
	for i, submission := range submissions {
		corpus[i] = submission.Code
	}

	match, ok := s.deps.Checker.FirstMatch(text, corpus)
	if !ok {
		return false, nil
	}
	logger.Info().
		Str("matched_username", submissions[match.Index].Username).
		Float64("ratio", match.Ratio).
		Msg("duplicate submission rejected")
	return true, nil
}

func (s *reviewService) persist(ctx context.Context, username string, score int, input ai.ReviewInput) error {
	if err := s.deps.Repositories.Leaderboard.Append(ctx, &models.LeaderboardEntry{Name: username, Score: score}); err != nil {
		return fmt.Errorf("append leaderboard entry: %w", err)
	}
	// Images never enter the duplicate corpus.
	if input.Kind != ai.ContentText {
		return nil
	}
	if err := s.deps.Repositories.Submissions.Append(ctx, &models.Submission{Username: username, Code: input.Text}); err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}

func (s *reviewService) sendNotification(ctx context.Context, username, fileName string, score int, feedback string) error {
	if s.deps.Notifier == nil {
		return nil
	}
	if strings.TrimSpace(s.config.Recipient) == "" {
		s.logger.Debug().Msg("no notification recipient configured")
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Student: %s\n", username)
	if fileName != "" {
		fmt.Fprintf(&body, "File: %s\n", fileName)
	}
	fmt.Fprintf(&body, "Score: %d/%d\n\n", score, scoring.MaxScore)
	body.WriteString(feedback)

	return s.deps.Notifier.Send(ctx, notify.Message{
		To:      s.config.Recipient,
		Subject: fmt.Sprintf("Assignment review for %s: %d/%d", username, score, scoring.MaxScore),
		Body:    body.String(),
	})
}

func (s *reviewService) remaining(usage int) int {
	remaining := s.config.DailyLimit - usage
	if remaining < 0 {
		return 0
	}
	return remaining
}
