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

// AuthHandler exposes login, logout and session inspection.
type AuthHandler struct {
	service    service.AuthService
	dailyLimit int
	logger     zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, dailyLimit int, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		dailyLimit: dailyLimit,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth routes. protect must load the caller's session; limiter guards login.
func (h *AuthHandler) Register(router fiber.Router, protect, limiter fiber.Handler) {
	if protect == nil {
		protect = noop
	}
	if limiter == nil {
		limiter = noop
	}
	router.Post("/login", limiter, h.login)
	router.Post("/logout", protect, middleware.WithAuth(h.logout, middleware.AuthOptions{RequireUser: true}))
	router.Get("/me", protect, middleware.WithAuth(h.me, middleware.AuthOptions{RequireUser: true}))
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid login payload")
	}

	resp, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", resp)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Logout(c.UserContext(), sess.ID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	return utils.SendSuccess(c, "session retrieved", service.DescribeSession(sess, h.dailyLimit))
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "username and password are required", validationDetails(err))
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("auth request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
