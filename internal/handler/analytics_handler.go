package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/service"
	"github.com/campusface/attendance-api/internal/utils"
)

// AnalyticsHandler serves aggregated attendance figures.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics endpoints to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/subjects", h.subjects)
	router.Get("/low-attendance", h.lowAttendance)
}

func (h *AnalyticsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "attendance summary retrieved", summary)
}

func (h *AnalyticsHandler) subjects(c *fiber.Ctx) error {
	rates, err := h.service.SubjectRates(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "subject rates retrieved", rates)
}

func (h *AnalyticsHandler) lowAttendance(c *fiber.Ctx) error {
	result, err := h.service.LowAttendance(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "low attendance students retrieved", result)
}

func (h *AnalyticsHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
