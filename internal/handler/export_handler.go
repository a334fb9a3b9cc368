package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/service"
	"github.com/campusface/attendance-api/internal/utils"
)

// ExportHandler serves closed-session exports to the reporting collaborator.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register attaches export endpoints to the router group.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/sessions", h.sessions)
}

func (h *ExportHandler) sessions(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	exports, err := h.service.ClosedSessions(c.Context(), page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("export listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "closed sessions exported", exports)
}
