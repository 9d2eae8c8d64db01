package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/middleware"
	"github.com/noah-isme/gema-review-api/internal/service"
	"github.com/noah-isme/gema-review-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHandler serves the leaderboard and teacher dashboard.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs a leaderboard handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the leaderboard routes.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{RequireUser: true}))
}

// RegisterDashboard attaches the teacher-only dashboard routes.
func (h *LeaderboardHandler) RegisterDashboard(router fiber.Router) {
	teacherOnly := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}
	router.Get("", middleware.WithAuth(h.dashboard, teacherOnly))
	router.Get("/leaderboard.xlsx", middleware.WithAuth(h.export, teacherOnly))
}

func (h *LeaderboardHandler) list(c *fiber.Ctx) error {
	query := dto.LeaderboardQuery{Sort: c.Query("sort"), Order: c.Query("order")}

	resp, err := h.service.List(c.UserContext(), query)
	if err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "invalid sort options", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load leaderboard")
	}

	return utils.OK(c, resp, "leaderboard retrieved", fiber.Map{"count": len(resp.Entries)})
}

func (h *LeaderboardHandler) dashboard(c *fiber.Ctx) error {
	resp, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", resp)
}

func (h *LeaderboardHandler) export(c *fiber.Ctx) error {
	payload, err := h.service.ExportXLSX(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export leaderboard")
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(payload)
}
