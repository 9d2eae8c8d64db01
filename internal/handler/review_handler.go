package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/middleware"
	"github.com/noah-isme/gema-review-api/internal/service"
	"github.com/noah-isme/gema-review-api/internal/utils"
)

// ReviewHandler accepts assignment uploads and runs them through the review pipeline.
type ReviewHandler struct {
	service        service.ReviewService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(service service.ReviewService, maxUploadBytes int64, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.submit, middleware.AuthOptions{RequireUser: true}))
}

func (h *ReviewHandler) submit(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	upload, err := decodeUpload(file, h.maxUploadBytes)
	if err != nil {
		return h.handleError(c, dto.ReviewResponse{}, err)
	}

	resp, err := h.service.Submit(c.UserContext(), sess, upload)
	if err != nil {
		return h.handleError(c, resp, err)
	}

	message := "review completed"
	if resp.Warning != "" {
		message = "review completed with warnings"
	}
	return utils.SendSuccess(c, message, resp)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, resp dto.ReviewResponse, err error) error {
	var details interface{}
	if resp.State != "" {
		details = resp
	}

	switch {
	case errors.Is(err, service.ErrDailyLimitReached):
		return utils.Fail(c, fiber.StatusTooManyRequests, "daily review limit reached, come back tomorrow", details)
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), details)
	case errors.Is(err, service.ErrFeedbackFailed):
		requestLogger(h.logger, c).Warn().Err(err).Msg("feedback request failed")
		return utils.Fail(c, fiber.StatusBadGateway, err.Error(), details)
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrMissingIdentity),
		errors.Is(err, service.ErrEmptyUpload),
		errors.Is(err, service.ErrUnsupportedUpload):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), details)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("review failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "review failed")
	}
}
